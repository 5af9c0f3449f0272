package saved

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// JobsKey is the storage key of the saved-jobs set.
const JobsKey = "homi_saved_jobs"

// Jobs is the saved-jobs set.
type Jobs struct {
	store  Storage
	logger zerolog.Logger

	mu    sync.Mutex
	ids   []string
	index map[string]struct{}
}

// NewJobs creates an empty set persisted to store. Call Load to read the
// stored ids.
func NewJobs(store Storage, logger zerolog.Logger) *Jobs {
	return &Jobs{
		store:  store,
		logger: logger.With().Str("component", "saved-jobs").Logger(),
		index:  make(map[string]struct{}),
	}
}

// Load reads the stored ids, replacing the in-memory set. Unreadable data
// is logged and treated as an empty set.
func (j *Jobs) Load(ctx context.Context) error {
	raw, ok, err := j.store.Get(ctx, JobsKey)
	if err != nil {
		return fmt.Errorf("load saved jobs: %w", err)
	}

	var ids []string
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			j.logger.Warn().Err(err).Msg("Saved jobs unreadable, starting empty")
			ids = nil
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.ids = j.ids[:0]
	j.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := j.index[id]; dup || id == "" {
			continue
		}
		j.index[id] = struct{}{}
		j.ids = append(j.ids, id)
	}
	return nil
}

// Toggle adds id if absent and removes it otherwise, then persists the set.
// It reports whether id is saved afterwards. Toggling the same id twice
// restores the original set. The in-memory set only changes once the store
// accepted the write; on error the set and the result are unchanged.
func (j *Jobs) Toggle(ctx context.Context, id string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, wasSaved := j.index[id]
	next := make([]string, 0, len(j.ids)+1)
	for _, v := range j.ids {
		if v != id {
			next = append(next, v)
		}
	}
	if !wasSaved {
		next = append(next, id)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return wasSaved, fmt.Errorf("encode saved jobs: %w", err)
	}
	if err := j.store.Set(ctx, JobsKey, string(data)); err != nil {
		return wasSaved, fmt.Errorf("store saved jobs: %w", err)
	}

	j.ids = next
	if wasSaved {
		delete(j.index, id)
	} else {
		j.index[id] = struct{}{}
	}

	j.logger.Debug().Str("job_id", id).Bool("saved", !wasSaved).Msg("Saved job toggled")
	return !wasSaved, nil
}

// Has reports whether id is saved.
func (j *Jobs) Has(id string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.index[id]
	return ok
}

// IDs returns the saved ids in insertion order.
func (j *Jobs) IDs() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.idsLocked()
}

// Len returns the number of saved ids.
func (j *Jobs) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.ids)
}

func (j *Jobs) idsLocked() []string {
	return append(make([]string, 0, len(j.ids)), j.ids...)
}

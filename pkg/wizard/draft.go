package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/homi-client/pkg/saved"
)

// DraftKeyPrefix prefixes the storage key of a wizard draft.
const DraftKeyPrefix = "homi_wizard_draft_"

type draft struct {
	Current   int                        `json:"current"`
	Visited   []int                      `json:"visited"`
	Completed []int                      `json:"completed"`
	Payloads  map[string]json.RawMessage `json:"payloads,omitempty"`
}

// DraftKey returns the storage key of the wizard's draft.
func (w *Wizard) DraftKey() string {
	return DraftKeyPrefix + w.name
}

// Draft saves the position, the visited and completed steps and every step
// payload to store.
func (w *Wizard) Draft(ctx context.Context, store saved.Storage) error {
	d := draft{
		Current:  w.current,
		Payloads: make(map[string]json.RawMessage),
	}
	for i, s := range w.steps {
		if w.visited[i] {
			d.Visited = append(d.Visited, i)
		}
		if w.completed[i] {
			d.Completed = append(d.Completed, i)
		}
		if s.Payload == nil {
			continue
		}
		raw, err := json.Marshal(s.Payload)
		if err != nil {
			return fmt.Errorf("encode step %q: %w", s.Name, err)
		}
		d.Payloads[s.Name] = raw
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := store.Set(ctx, w.DraftKey(), string(data)); err != nil {
		return fmt.Errorf("save draft %s: %w", w.name, err)
	}
	return nil
}

// Restore loads a draft saved by Draft, decoding payloads into the step
// payload pointers. It reports false when no draft exists. A draft that
// does not fit the wizard's steps is rejected and leaves the wizard
// unchanged.
func (w *Wizard) Restore(ctx context.Context, store saved.Storage) (bool, error) {
	raw, ok, err := store.Get(ctx, w.DraftKey())
	if err != nil {
		return false, fmt.Errorf("load draft %s: %w", w.name, err)
	}
	if !ok || raw == "" {
		return false, nil
	}

	var d draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return false, fmt.Errorf("decode draft %s: %w", w.name, err)
	}

	inRange := func(i int) bool { return i >= 0 && i < len(w.steps) }
	if !inRange(d.Current) {
		return false, fmt.Errorf("draft %s: step %d out of range", w.name, d.Current)
	}
	visited := make([]bool, len(w.steps))
	completed := make([]bool, len(w.steps))
	for _, i := range d.Visited {
		if !inRange(i) {
			return false, fmt.Errorf("draft %s: step %d out of range", w.name, i)
		}
		visited[i] = true
	}
	for _, i := range d.Completed {
		if !inRange(i) {
			return false, fmt.Errorf("draft %s: step %d out of range", w.name, i)
		}
		completed[i] = true
	}
	visited[d.Current] = true

	for _, s := range w.steps {
		data, ok := d.Payloads[s.Name]
		if !ok || s.Payload == nil {
			continue
		}
		if err := json.Unmarshal(data, s.Payload); err != nil {
			return false, fmt.Errorf("decode step %q: %w", s.Name, err)
		}
	}

	w.current = d.Current
	w.visited = visited
	w.completed = completed
	return true, nil
}

package listing

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPage_HasMore(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		page  Page[Professional]
		limit int
		want  bool
	}{
		{name: "server says more", page: Page[Professional]{Data: make([]Professional, 3), Pagination: &PageInfo{HasMore: &yes}}, limit: 12, want: true},
		{name: "server says done on full page", page: Page[Professional]{Data: make([]Professional, 12), Pagination: &PageInfo{HasMore: &no}}, limit: 12, want: false},
		{name: "full page without metadata", page: Page[Professional]{Data: make([]Professional, 12)}, limit: 12, want: true},
		{name: "short page without metadata", page: Page[Professional]{Data: make([]Professional, 5)}, limit: 12, want: false},
		{name: "total only falls back to length", page: Page[Professional]{Data: make([]Professional, 12), Pagination: &PageInfo{}}, limit: 12, want: true},
		{name: "empty", page: Page[Professional]{}, limit: 12, want: false},
		{name: "zero limit", page: Page[Professional]{}, limit: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.HasMore(tt.limit); got != tt.want {
				t.Errorf("HasMore(%d) = %v, want %v", tt.limit, got, tt.want)
			}
		})
	}
}

func TestPage_DecodeOptionalMetadata(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTotal int
		wantOK    bool
		wantMore  bool
	}{
		{name: "full metadata", body: `{"data":[{"id":"job-1"}],"pagination":{"hasMore":true,"total":40}}`, wantTotal: 40, wantOK: true, wantMore: true},
		{name: "hasMore only", body: `{"data":[{"id":"job-1"}],"pagination":{"hasMore":false}}`},
		{name: "no pagination", body: `{"data":[{"id":"job-1"}]}`, wantMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page Page[Job]
			if err := json.Unmarshal([]byte(tt.body), &page); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			total, ok := page.Total()
			if total != tt.wantTotal || ok != tt.wantOK {
				t.Errorf("Total() = %d, %v, want %d, %v", total, ok, tt.wantTotal, tt.wantOK)
			}
			if got := page.HasMore(1); got != tt.wantMore {
				t.Errorf("HasMore(1) = %v, want %v", got, tt.wantMore)
			}
		})
	}
}

func TestNewView(t *testing.T) {
	items := []Job{{ID: "job-1"}}

	tests := []struct {
		name        string
		items       []Job
		loading     bool
		loadingMore bool
		err         error
		want        RenderState
	}{
		{name: "first load", loading: true, want: RenderSkeleton},
		{name: "reset with stale items shows skeleton", items: items, loading: true, want: RenderSkeleton},
		{name: "no results", want: RenderEmpty},
		{name: "failed with no items", err: errors.New("502"), want: RenderEmpty},
		{name: "items", items: items, want: RenderItems},
		{name: "items while loading more", items: items, loadingMore: true, want: RenderItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(tt.items, tt.loading, tt.loadingMore, false, tt.err)
			if v.State != tt.want {
				t.Errorf("State = %s, want %s", v.State, tt.want)
			}
			if v.Failed != (tt.err != nil) {
				t.Errorf("Failed = %v", v.Failed)
			}
			if v.LoadingMore != tt.loadingMore {
				t.Errorf("LoadingMore = %v", v.LoadingMore)
			}
		})
	}
}

func TestItemHelpers(t *testing.T) {
	p := Professional{ID: "pro-1", Available: true}
	j := Job{ID: "job-1", Status: JobStatusClosed}

	var items []Item = []Item{p, j}
	if items[0].ItemID() != "pro-1" || items[1].ItemID() != "job-1" {
		t.Error("ItemID mismatch")
	}
	if !p.IsAvailable() {
		t.Error("IsAvailable() = false")
	}
	if j.IsOpen() {
		t.Error("closed job reported open")
	}
}

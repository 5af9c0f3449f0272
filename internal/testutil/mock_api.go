// Package testutil provides a mock Homi browse API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/homi-client/pkg/listing"
)

// MockResponse overrides the response of a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable in-process browse API. By default it serves
// Total generated professionals and jobs, paged by the page and limit query
// parameters, with pagination metadata.
type MockAPI struct {
	server *httptest.Server

	mu        sync.RWMutex
	handlers  map[string]http.HandlerFunc
	total     int
	omitMeta  bool
	delays    map[int]time.Duration
	failPages map[int]int
	etag      string

	requestCount     int
	conditionalCount int
	queries          []url.Values
	lastHeader       http.Header
}

// NewMockAPI starts a mock API serving total items per resource.
func NewMockAPI(total int) *MockAPI {
	m := &MockAPI{
		handlers:  make(map[string]http.HandlerFunc),
		total:     total,
		delays:    make(map[int]time.Duration),
		failPages: make(map[int]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestCount++
		m.lastHeader = r.Header.Clone()
		m.queries = append(m.queries, r.URL.Query())
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			m.conditionalCount++
		}
		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}
		m.serveList(w, r)
	}))

	return m
}

// URL returns the base URL of the mock server.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetHandler overrides the handler of a path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse overrides a path with a fixed response.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetTotal changes the number of items served per resource.
func (m *MockAPI) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// OmitPagination drops the pagination object from list responses.
func (m *MockAPI) OmitPagination(omit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.omitMeta = omit
}

// DelayPage delays responses for the given page number.
func (m *MockAPI) DelayPage(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[page] = d
}

// FailPage makes requests for page answer with status.
func (m *MockAPI) FailPage(page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPages[page] = status
}

// SetETag makes list responses carry etag and answer matching conditional
// requests with 304.
func (m *MockAPI) SetETag(etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etag = etag
}

// RequestCount returns the number of requests received.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of conditional requests received.
func (m *MockAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// Queries returns the query parameters of every request, in arrival order.
func (m *MockAPI) Queries() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]url.Values, len(m.queries))
	copy(out, m.queries)
	return out
}

// LastHeader returns the headers of the most recent request.
func (m *MockAPI) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// Reset clears the request tracking.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.queries = nil
	m.lastHeader = nil
}

func (m *MockAPI) serveList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 12)

	m.mu.RLock()
	total, omitMeta, etag := m.total, m.omitMeta, m.etag
	delay := m.delays[page]
	failStatus := m.failPages[page]
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-RateLimit-Remaining", "100")
	w.Header().Set("X-RateLimit-Reset", "60")

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		fmt.Fprintf(w, `{"error":"page %d unavailable"}`, page)
		return
	}

	if etag != "" {
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	var data interface{}
	switch r.URL.Path {
	case listing.ResourceJobs:
		data = Jobs(start, end, q.Get("category"))
	default:
		data = Professionals(start, end, q.Get("category"))
	}

	body := map[string]interface{}{"data": data}
	if !omitMeta {
		body["pagination"] = map[string]interface{}{
			"hasMore": end < total,
			"total":   total,
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// Professionals generates professionals numbered start+1..end.
func Professionals(start, end int, category string) []listing.Professional {
	if category == "" {
		category = "general"
	}
	out := make([]listing.Professional, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, listing.Professional{
			ID:          fmt.Sprintf("pro-%d", i+1),
			Name:        fmt.Sprintf("Professional %d", i+1),
			Category:    category,
			City:        "Leeds",
			HourlyRate:  float64(30 + i%40),
			Rating:      4.0 + float64(i%10)/10,
			ReviewCount: i * 3,
			Available:   i%2 == 0,
		})
	}
	return out
}

// Jobs generates jobs numbered start+1..end.
func Jobs(start, end int, category string) []listing.Job {
	if category == "" {
		category = "general"
	}
	out := make([]listing.Job, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, listing.Job{
			ID:        fmt.Sprintf("job-%d", i+1),
			Title:     fmt.Sprintf("Job %d", i+1),
			Category:  category,
			City:      "Leeds",
			BudgetMin: 100,
			BudgetMax: 500,
			Status:    listing.JobStatusOpen,
			PostedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

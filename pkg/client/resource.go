package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/Sternrassler/homi-client/pkg/listing"
)

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 512

// Resource is a typed browse endpoint returning listing.Page[T].
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a typed list endpoint to the client.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

// Professionals returns the professionals browse endpoint.
func Professionals(c *Client) *Resource[listing.Professional] {
	return NewResource[listing.Professional](c, listing.ResourceProfessionals)
}

// Jobs returns the jobs browse endpoint.
func Jobs(c *Client) *Resource[listing.Job] {
	return NewResource[listing.Job](c, listing.ResourceJobs)
}

// Path returns the endpoint path.
func (r *Resource[T]) Path() string {
	return r.path
}

// FetchPage performs GET <path>?<query> and decodes the page envelope.
// Any non-2xx status is returned as *APIError.
func (r *Resource[T]) FetchPage(ctx context.Context, query url.Values) (listing.Page[T], error) {
	var page listing.Page[T]

	resp, err := r.client.Get(ctx, r.path, query)
	if err != nil {
		return page, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := resp.Status
		if len(body) > 0 {
			msg = fmt.Sprintf("%s: %s", resp.Status, body)
		}
		class := classifyStatus(resp.StatusCode)
		if class == "" {
			class = ErrorClassClient
		}
		return page, &APIError{StatusCode: resp.StatusCode, Class: class, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return page, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    "decode list response",
			Err:        err,
		}
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

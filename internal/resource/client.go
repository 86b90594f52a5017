// Package resource is the boundary to the Resource API collaborator: thin
// HTTP GETs returning JSON collections with loosely standardized shapes.
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/record"
)

// FetchError is a typed fetch failure carrying enough context for the
// diagnostics list: which resource, which key (empty for collections) and
// the underlying cause.
type FetchError struct {
	Resource string
	Key      string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("fetch %s/%s: %v", e.Resource, e.Key, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher is the read interface the aggregation layer consumes. Paths are
// resource endpoints relative to the API base, e.g. "/bookings".
type Fetcher interface {
	Collection(ctx context.Context, path string) ([]record.RawRecord, error)
	Record(ctx context.Context, path, id string) (record.RawRecord, error)
}

// Client fetches resource collections over HTTP. Timeouts live here, at
// the transport boundary; the layers above never enforce their own.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Collection fetches all records of one resource type.
func (c *Client) Collection(ctx context.Context, path string) ([]record.RawRecord, error) {
	body, err := c.get(ctx, c.baseURL+path)
	if err != nil {
		return nil, &FetchError{Resource: path, Err: err}
	}
	return DecodeCollection(body), nil
}

// Record fetches a single record by identifier.
func (c *Client) Record(ctx context.Context, path, id string) (record.RawRecord, error) {
	body, err := c.get(ctx, c.baseURL+path+"/"+url.PathEscape(id))
	if err != nil {
		return nil, &FetchError{Resource: path, Key: id, Err: err}
	}
	r, err := DecodeRecord(body)
	if err != nil {
		return nil, &FetchError{Resource: path, Key: id, Err: err}
	}
	return r, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// envelope is the alternate collection shape some endpoints return.
type envelope struct {
	Result json.RawMessage `json:"result"`
}

// DecodeCollection accepts either a bare JSON array of records or an
// envelope object with a "result" array. Any other shape decodes as an
// empty collection — malformed payloads are not an error at this boundary.
func DecodeCollection(data []byte) []record.RawRecord {
	var bare []record.RawRecord
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Result) > 0 {
		var wrapped []record.RawRecord
		if err := json.Unmarshal(env.Result, &wrapped); err == nil {
			return wrapped
		}
	}
	return nil
}

// DecodeRecord accepts a bare JSON object or a {"result": {...}} envelope.
func DecodeRecord(data []byte) (record.RawRecord, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Result) > 0 {
		var wrapped record.RawRecord
		if err := json.Unmarshal(env.Result, &wrapped); err == nil {
			return wrapped, nil
		}
	}

	var bare record.RawRecord
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return bare, nil
}

package api

import (
	"context"
	"fmt"

	"github.com/memolish/memolish/internal/memo"
)

// memoBody is the request body for create and update.
type memoBody struct {
	Content   string  `json:"content"`
	SourceURL *string `json:"source_url,omitempty"`
}

type statusBody struct {
	Status memo.Status `json:"status"`
}

type parseURLBody struct {
	URL string `json:"url"`
}

// ListMemos fetches all memos for the current session, in server order
// (newest first).
func (c *Client) ListMemos(ctx context.Context) ([]memo.Memo, error) {
	var memos []memo.Memo
	if err := c.do(ctx, "GET", "/api/memos", nil, &memos); err != nil {
		return nil, err
	}
	return memos, nil
}

// CreateMemo creates a memo and returns the server representation with its
// assigned id.
func (c *Client) CreateMemo(ctx context.Context, content string, sourceURL *string) (*memo.Memo, error) {
	var m memo.Memo
	if err := c.do(ctx, "POST", "/api/memos", memoBody{Content: content, SourceURL: sourceURL}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMemo replaces a memo's content (and optionally its source URL) and
// returns the updated server representation.
func (c *Client) UpdateMemo(ctx context.Context, id int, content string, sourceURL *string) (*memo.Memo, error) {
	var m memo.Memo
	if err := c.do(ctx, "PUT", fmt.Sprintf("/api/memos/%d", id), memoBody{Content: content, SourceURL: sourceURL}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMemo permanently deletes a memo.
func (c *Client) DeleteMemo(ctx context.Context, id int) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/memos/%d", id), nil, nil)
}

// UpdateStatus changes a memo's lifecycle status and returns the updated
// server representation (other fields such as updated_at may have changed).
func (c *Client) UpdateStatus(ctx context.Context, id int, status memo.Status) (*memo.Memo, error) {
	var m memo.Memo
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/api/memos/%d/status", id), statusBody{Status: status}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseURL asks the backend to resolve url metadata and attach it to the memo.
func (c *Client) ParseURL(ctx context.Context, id int, url string) (*memo.URLMetadata, error) {
	var meta memo.URLMetadata
	if err := c.do(ctx, "POST", fmt.Sprintf("/api/memos/%d/parse-url", id), parseURLBody{URL: url}, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

package api

import (
	"context"
	"fmt"

	"github.com/memolish/memolish/internal/memo"
)

// Transform triggers the AI transform of a memo into a bilingual summary and
// English dialogue. Manual trigger only; the client never calls this
// automatically. Already-transformed memos return the cached result without
// consuming a credit.
func (c *Client) Transform(ctx context.Context, id int) (*memo.TransformResult, error) {
	var result memo.TransformResult
	if err := c.do(ctx, "POST", fmt.Sprintf("/api/ai/transform/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCredits fetches the current daily credit snapshot.
func (c *Client) GetCredits(ctx context.Context) (*memo.Credits, error) {
	var credits memo.Credits
	if err := c.do(ctx, "GET", "/api/ai/credits", nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

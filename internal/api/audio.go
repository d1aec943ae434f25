package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
)

// GenerateAudio synthesizes (or re-issues a link for) the dialogue audio of a
// transformed memo.
func (c *Client) GenerateAudio(ctx context.Context, id int) (*memo.AudioRef, error) {
	var ref memo.AudioRef
	if err := c.do(ctx, "POST", fmt.Sprintf("/api/audio/generate/%d", id), nil, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetDownloadLink fetches a time-limited download reference for a memo's audio.
func (c *Client) GetDownloadLink(ctx context.Context, id int) (*memo.DownloadLink, error) {
	var link memo.DownloadLink
	if err := c.do(ctx, "GET", fmt.Sprintf("/api/audio/download/%d", id), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Download fetches a presigned URL to a local file. The URL points at
// external storage, not the backend, so no identity header is attached.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return errors.NewInternal(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewBackend(resp.StatusCode, "", fmt.Sprintf("download failed with status %d", resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return errors.NewInternal(err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return errors.NewNetwork(err)
	}
	return nil
}

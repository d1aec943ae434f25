package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
)

// Each action performs exactly one backend call and applies one atomic state
// transition per outcome. Operations are independent; none blocks another,
// and no retry is ever automatic.

// FetchMemos replaces the entire collection with the server's list, in
// server order. On failure it sets the generic list error; the loading flag
// is always cleared on completion.
func (s *Store) FetchMemos(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	memos, err := s.backend.ListMemos(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = ErrListFetchFailed
		return
	}
	s.memos = memos
}

// CreateMemo creates a memo and prepends it to the cached collection
// (newest first, independent of server list order). Blank content is a
// caller precondition failure and never reaches the network. Failures
// propagate to the caller and set no store-level error, so unrelated UI
// stays usable.
func (s *Store) CreateMemo(ctx context.Context, content string, sourceURL *string) (*memo.Memo, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewInvalidRequest("content must not be empty")
	}

	created, err := s.backend.CreateMemo(ctx, content, sourceURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memos = append([]memo.Memo{*created}, s.memos...)
	return created, nil
}

// UpdateMemo replaces a memo's content/source URL and swaps the cached entry
// for the server's updated representation. Failures propagate to the caller.
func (s *Store) UpdateMemo(ctx context.Context, id int, content string, sourceURL *string) (*memo.Memo, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewInvalidRequest("content must not be empty")
	}

	updated, err := s.backend.UpdateMemo(ctx, id, content, sourceURL)
	if err != nil {
		return nil, err
	}

	s.replaceMemo(updated)
	return updated, nil
}

// UpdateStatus changes a memo's status. No optimistic update: the cached
// entry is only replaced with the server representation after success, so
// the board never shows a status that failed to persist.
func (s *Store) UpdateStatus(ctx context.Context, id int, status memo.Status) (*memo.Memo, error) {
	if !status.Valid() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown status %q", status))
	}

	updated, err := s.backend.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.replaceMemo(updated)
	return updated, nil
}

// DeleteMemo deletes a memo and removes it from the cache. No soft delete,
// no undo.
func (s *Store) DeleteMemo(ctx context.Context, id int) error {
	if err := s.backend.DeleteMemo(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.memos[:0:0]
	for _, m := range s.memos {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.memos = kept
	return nil
}

// ParseURL resolves url metadata server-side and merges the returned
// title/description into the cached entry. Failures propagate to the caller.
func (s *Store) ParseURL(ctx context.Context, id int, url string) (*memo.URLMetadata, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.NewInvalidRequest("url must not be empty")
	}

	meta, err := s.backend.ParseURL(ctx, id, url)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memos {
		if s.memos[i].ID == id {
			u := url
			s.memos[i].SourceURL = &u
			s.memos[i].URLTitle = meta.Title
			s.memos[i].URLDescription = meta.Description
			break
		}
	}
	return meta, nil
}

// FetchCredits refreshes the credit snapshot. Failure is silently swallowed:
// the credit display is best-effort, not critical-path, and degrades to the
// last-known snapshot rather than raising an error banner.
func (s *Store) FetchCredits(ctx context.Context) {
	credits, err := s.backend.GetCredits(ctx)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = credits
}

// TransformMemo triggers the AI transform of a memo. Any previously cached
// audio reference is cleared at the start of every attempt (stale-audio
// invalidation). On success the result becomes the current learning result,
// the credit snapshot is reconciled from the transform response (the
// response, not a separate re-fetch, is the source of truth), and the cached
// memo is marked transformed. A quota-exhausted failure sets the NO_CREDITS
// sentinel; any other failure sets the generic transform error. A duplicate
// concurrent transform for the same memo is rejected outright.
func (s *Store) TransformMemo(ctx context.Context, id int) (*memo.TransformResult, error) {
	s.mu.Lock()
	if s.transformInFlight[id] {
		s.mu.Unlock()
		return nil, errors.NewTransformInFlight(id)
	}
	s.transformInFlight[id] = true
	s.transforming = true
	s.errMsg = ""
	s.audioRef = nil
	s.mu.Unlock()

	result, err := s.backend.Transform(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transformInFlight, id)
	s.transforming = false

	if err != nil {
		if errors.Is(err, errors.ErrNoCredits) {
			s.errMsg = ErrNoCredits
		} else {
			s.errMsg = ErrTransformFailed
		}
		return nil, err
	}

	s.learningResult = result
	if s.credits != nil {
		c := *s.credits
		c.DailyCredits = result.CreditsRemaining
		s.credits = &c
	}
	for i := range s.memos {
		if s.memos[i].ID == id {
			s.memos[i].IsTransformed = true
			break
		}
	}
	return result, nil
}

// GenerateAudio synthesizes audio for a transformed memo and stores the
// playable reference in transient state.
func (s *Store) GenerateAudio(ctx context.Context, id int) (*memo.AudioRef, error) {
	s.mu.Lock()
	s.generatingAudio = true
	s.errMsg = ""
	s.mu.Unlock()

	ref, err := s.backend.GenerateAudio(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatingAudio = false
	if err != nil {
		s.errMsg = ErrAudioFailed
		return nil, err
	}
	s.audioRef = ref
	return ref, nil
}

// DownloadAudio fetches a time-limited download reference and saves the file
// as memolish_<id>.mp3 under destDir, returning the saved path. The
// reference is never cached.
func (s *Store) DownloadAudio(ctx context.Context, id int, destDir string) (string, error) {
	link, err := s.backend.GetDownloadLink(ctx, id)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, fmt.Sprintf("memolish_%d.mp3", id))
	if err := s.backend.Download(ctx, link.URL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// replaceMemo swaps the cached entry matching updated.ID for the server
// representation. Other entries are untouched.
func (s *Store) replaceMemo(updated *memo.Memo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memos {
		if s.memos[i].ID == updated.ID {
			s.memos[i] = *updated
			break
		}
	}
}

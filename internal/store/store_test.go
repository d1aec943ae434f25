package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
)

// fakeBackend is an in-memory Backend for store tests.
type fakeBackend struct {
	mu sync.Mutex

	serverMemos []memo.Memo
	nextID      int

	listErr      error
	createErr    error
	updateErr    error
	deleteErr    error
	statusErr    error
	parseErr     error
	transformErr error
	creditsErr   error
	audioErr     error
	linkErr      error
	downloadErr  error

	transformResult *memo.TransformResult
	credits         *memo.Credits
	audioRef        *memo.AudioRef
	link            *memo.DownloadLink
	parseMeta       *memo.URLMetadata

	// transformGate, when set, blocks Transform until closed. Used to hold a
	// transform in flight while a duplicate call is attempted.
	transformGate chan struct{}

	transformCalls int
	downloads      map[string]string // url -> dest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, downloads: make(map[string]string)}
}

func (f *fakeBackend) ListMemos(ctx context.Context) ([]memo.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]memo.Memo, len(f.serverMemos))
	copy(out, f.serverMemos)
	return out, nil
}

func (f *fakeBackend) CreateMemo(ctx context.Context, content string, sourceURL *string) (*memo.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	m := memo.Memo{
		ID:        f.nextID,
		UserID:    "user-1",
		Content:   content,
		SourceURL: sourceURL,
		Status:    memo.StatusNotStarted,
	}
	f.serverMemos = append([]memo.Memo{m}, f.serverMemos...)
	return &m, nil
}

func (f *fakeBackend) UpdateMemo(ctx context.Context, id int, content string, sourceURL *string) (*memo.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	m := memo.Memo{ID: id, Content: content, SourceURL: sourceURL, Status: memo.StatusNotStarted, UpdatedAt: "updated"}
	return &m, nil
}

func (f *fakeBackend) DeleteMemo(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeBackend) UpdateStatus(ctx context.Context, id int, status memo.Status) (*memo.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &memo.Memo{ID: id, Content: fmt.Sprintf("memo %d", id), Status: status, UpdatedAt: "server-updated"}, nil
}

func (f *fakeBackend) ParseURL(ctx context.Context, id int, url string) (*memo.URLMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	if f.parseMeta != nil {
		return f.parseMeta, nil
	}
	return &memo.URLMetadata{}, nil
}

func (f *fakeBackend) Transform(ctx context.Context, id int) (*memo.TransformResult, error) {
	f.mu.Lock()
	gate := f.transformGate
	f.transformCalls++
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transformErr != nil {
		return nil, f.transformErr
	}
	if f.transformResult != nil {
		return f.transformResult, nil
	}
	return &memo.TransformResult{SummaryKo: "요약", SummaryEn: "summary", CreditsRemaining: 2}, nil
}

func (f *fakeBackend) GetCredits(ctx context.Context) (*memo.Credits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	if f.credits != nil {
		return f.credits, nil
	}
	return &memo.Credits{DailyCredits: 3, MaxDailyCredits: 3}, nil
}

func (f *fakeBackend) GenerateAudio(ctx context.Context, id int) (*memo.AudioRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.audioErr != nil {
		return nil, f.audioErr
	}
	if f.audioRef != nil {
		return f.audioRef, nil
	}
	return &memo.AudioRef{URL: fmt.Sprintf("https://cdn.example/audio/%d.mp3", id)}, nil
}

func (f *fakeBackend) GetDownloadLink(ctx context.Context, id int) (*memo.DownloadLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	if f.link != nil {
		return f.link, nil
	}
	return &memo.DownloadLink{URL: fmt.Sprintf("https://cdn.example/dl/%d", id), ExpiresInSeconds: 900}, nil
}

func (f *fakeBackend) Download(ctx context.Context, url, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return f.downloadErr
	}
	f.downloads[url] = dest
	return nil
}

// seedMemos loads a store with a fixed collection, bypassing the network.
func seedMemos(s *Store, memos []memo.Memo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memos = memos
}

func sampleMemos() []memo.Memo {
	return []memo.Memo{
		{ID: 1, Content: "first", Status: memo.StatusNotStarted},
		{ID: 2, Content: "second", Status: memo.StatusInProgress},
		{ID: 3, Content: "third", Status: memo.StatusCompleted},
		{ID: 4, Content: "fourth", Status: memo.StatusNotStarted},
	}
}

var errBoom = errors.NewBackend(502, "", "boom")

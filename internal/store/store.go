// Package store holds the client-side application state for Memolish: the
// cached memo collection, the credit snapshot, transient UI state, and the
// async flags for every backend operation. It is the only place state is
// mutated; every surface (CLI, MCP, web board) reads snapshots and dispatches
// actions. Construct one Store per process (or per test) — it is an
// injectable container, not an ambient singleton.
package store

import (
	"context"
	"sync"

	"github.com/memolish/memolish/internal/memo"
)

// Backend is the adapter surface the store drives. *api.Client implements it;
// tests substitute a fake.
type Backend interface {
	ListMemos(ctx context.Context) ([]memo.Memo, error)
	CreateMemo(ctx context.Context, content string, sourceURL *string) (*memo.Memo, error)
	UpdateMemo(ctx context.Context, id int, content string, sourceURL *string) (*memo.Memo, error)
	DeleteMemo(ctx context.Context, id int) error
	UpdateStatus(ctx context.Context, id int, status memo.Status) (*memo.Memo, error)
	ParseURL(ctx context.Context, id int, url string) (*memo.URLMetadata, error)
	Transform(ctx context.Context, id int) (*memo.TransformResult, error)
	GetCredits(ctx context.Context) (*memo.Credits, error)
	GenerateAudio(ctx context.Context, id int) (*memo.AudioRef, error)
	GetDownloadLink(ctx context.Context, id int) (*memo.DownloadLink, error)
	Download(ctx context.Context, url, dest string) error
}

// Error sentinels and user-facing messages held in the store's error field.
// ErrNoCredits is distinguishable so the UI can branch to the upsell/wait
// path instead of a generic failure message.
const (
	ErrNoCredits       = "NO_CREDITS"
	ErrListFetchFailed = "failed to load memos"
	ErrTransformFailed = "AI transform failed; try again shortly"
	ErrAudioFailed     = "audio generation failed"
)

// Store is the single authoritative holder of memo/credit/UI state.
// State transitions are applied as atomic single-step updates under the
// mutex; the lock is never held across a network call.
type Store struct {
	mu      sync.Mutex
	backend Backend

	memos   []memo.Memo
	credits *memo.Credits

	activeFilter   string
	inputPanelOpen bool
	learningMemoID *int
	learningResult *memo.TransformResult
	audioRef       *memo.AudioRef

	loading         bool
	transforming    bool
	generatingAudio bool

	// transformInFlight guards against a duplicate concurrent transform of
	// the same memo, which could otherwise let a stale response overwrite a
	// newer result.
	transformInFlight map[int]bool

	errMsg string
}

// New creates a store backed by the given adapter.
func New(backend Backend) *Store {
	return &Store{
		backend:           backend,
		activeFilter:      memo.FilterAll,
		transformInFlight: make(map[int]bool),
	}
}

// Snapshot is a consistent read-only copy of the store state for rendering.
type Snapshot struct {
	Memos           []memo.Memo
	Credits         *memo.Credits
	ActiveFilter    string
	InputPanelOpen  bool
	LearningMemoID  *int
	LearningResult  *memo.TransformResult
	AudioRef        *memo.AudioRef
	Loading         bool
	Transforming    bool
	GeneratingAudio bool
	Err             string
}

// Snapshot returns a copy of the current state. The memo slice is cloned so
// renderers can iterate without racing mutations; element structs are shared
// and must be treated as read-only.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	memos := make([]memo.Memo, len(s.memos))
	copy(memos, s.memos)

	return Snapshot{
		Memos:           memos,
		Credits:         s.credits,
		ActiveFilter:    s.activeFilter,
		InputPanelOpen:  s.inputPanelOpen,
		LearningMemoID:  s.learningMemoID,
		LearningResult:  s.learningResult,
		AudioRef:        s.audioRef,
		Loading:         s.loading,
		Transforming:    s.transforming,
		GeneratingAudio: s.generatingAudio,
		Err:             s.errMsg,
	}
}

// Memo returns the cached memo with the given id, or nil.
func (s *Store) Memo(id int) *memo.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memos {
		if s.memos[i].ID == id {
			m := s.memos[i]
			return &m
		}
	}
	return nil
}

// SetActiveFilter sets the board filter ("all" or a status value).
// Invalid values are ignored so a bad query parameter can't wedge the view.
func (s *Store) SetActiveFilter(filter string) {
	if !memo.ValidFilter(filter) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeFilter = filter
}

// SetInputPanelOpen toggles the memo input panel.
func (s *Store) SetInputPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputPanelOpen = open
}

// OpenLearningModal marks a memo's learning view active and clears any
// previous transform result and audio reference.
func (s *Store) OpenLearningModal(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learningMemoID = &id
	s.learningResult = nil
	s.audioRef = nil
}

// CloseLearningModal detaches the learning view. In-flight requests are not
// cancelled; their eventual result just has nowhere to show.
func (s *Store) CloseLearningModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learningMemoID = nil
	s.learningResult = nil
	s.audioRef = nil
}

// ClearError clears the store-level error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

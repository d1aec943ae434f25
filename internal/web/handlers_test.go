package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/memolish/memolish/internal/api"
	"github.com/memolish/memolish/internal/config"
	"github.com/memolish/memolish/internal/memo"
	"github.com/memolish/memolish/internal/store"
)

func stringPtr(s string) *string { return &s }

// backendStub is a tiny in-memory Memolish backend for handler tests.
type backendStub struct {
	mu     sync.Mutex
	memos  map[int]*memo.Memo
	nextID int
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/memos", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := make([]*memo.Memo, 0, len(b.memos))
		for id := b.nextID; id > 0; id-- {
			if m, ok := b.memos[id]; ok {
				list = append(list, m)
			}
		}
		_ = json.NewEncoder(w).Encode(list)
	})

	mux.HandleFunc("POST /api/memos", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content   string  `json:"content"`
			SourceURL *string `json:"source_url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		m := &memo.Memo{ID: b.nextID, Content: body.Content, SourceURL: body.SourceURL, Status: memo.StatusNotStarted}
		b.memos[m.ID] = m
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	})

	mux.HandleFunc("PATCH /api/memos/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status memo.Status `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		m := b.memos[reqID(r)]
		m.Status = body.Status
		_ = json.NewEncoder(w).Encode(m)
	})

	mux.HandleFunc("DELETE /api/memos/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.memos, reqID(r))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/ai/transform/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		m := b.memos[reqID(r)]
		m.IsTransformed = true
		m.AISummaryKo = stringPtr("하루 요약")
		m.AISummaryEn = stringPtr("A short day summary")
		raw := `{"title":"Catching up","situation":"Two coworkers chat","exchanges":[{"speaker":"A","line":"How was your day?","korean":"오늘 어땠어?"}]}`
		m.AIDialogueRaw = &raw
		_ = json.NewEncoder(w).Encode(memo.TransformResult{
			SummaryKo:        "하루 요약",
			SummaryEn:        "A short day summary",
			Dialogue:         memo.Dialogue{Title: "Catching up"},
			CreditsRemaining: 2,
		})
	})

	mux.HandleFunc("GET /api/ai/credits", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(memo.Credits{DailyCredits: 3, MaxDailyCredits: 3})
	})

	mux.HandleFunc("POST /api/audio/generate/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(memo.AudioRef{URL: "https://cdn.example.com/audio.mp3"})
	})

	return mux
}

func reqID(r *http.Request) int {
	var id int
	_, _ = fmt.Sscanf(r.PathValue("id"), "%d", &id)
	return id
}

func setupTest(t *testing.T) *Handlers {
	t.Helper()

	stub := &backendStub{memos: make(map[int]*memo.Memo)}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "test-session")
	st := store.New(client)

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		store:    st,
		cfg:      cfg,
		renderer: renderer,
	}
}

// seedMemo creates a memo through the store and returns its ID.
func seedMemo(t *testing.T, h *Handlers, content string) int {
	t.Helper()
	created, err := h.store.CreateMemo(t.Context(), content, nil)
	if err != nil {
		t.Fatalf("seed memo %q: %v", content, err)
	}
	return created.ID
}

// --- HandleBoard ---

func TestHandleBoard_Default(t *testing.T) {
	h := setupTest(t)
	seedMemo(t, h, "practiced guitar after work")

	req := httptest.NewRequest("GET", "/board", nil)
	rec := httptest.NewRecorder()
	h.HandleBoard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "practiced guitar after work") {
		t.Error("expected memo content in response")
	}
	if !strings.Contains(body, "My memos") {
		t.Error("expected board heading in response")
	}
	if !strings.Contains(body, "3/3") {
		t.Error("expected credits counter in response")
	}
}

func TestHandleBoard_FilterExcludes(t *testing.T) {
	h := setupTest(t)
	seedMemo(t, h, "only memo")

	req := httptest.NewRequest("GET", "/board?filter=completed", nil)
	rec := httptest.NewRecorder()
	h.HandleBoard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "only memo") {
		t.Error("not_started memo should be hidden under the completed filter")
	}
}

func TestHandleBoard_InvalidFilter(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/board?filter=bogus", nil)
	rec := httptest.NewRecorder()
	h.HandleBoard(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBoard_HTMXFragment(t *testing.T) {
	h := setupTest(t)
	seedMemo(t, h, "fragment memo")

	req := httptest.NewRequest("GET", "/board", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "board")
	rec := httptest.NewRecorder()
	h.HandleBoard(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "fragment memo") {
		t.Error("expected memo in fragment")
	}
	if strings.Contains(body, "<html") {
		t.Error("fragment response should not contain the full layout")
	}
}

// --- HandleCreate ---

func TestHandleCreate_Form(t *testing.T) {
	h := setupTest(t)

	form := url.Values{"content": {"met an old friend"}}
	req := httptest.NewRequest("POST", "/memos", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/board" {
		t.Errorf("Location = %q, want /board", loc)
	}

	snap := h.store.Snapshot()
	if len(snap.Memos) != 1 || snap.Memos[0].Content != "met an old friend" {
		t.Errorf("store memos = %+v, want the created memo", snap.Memos)
	}
}

func TestHandleCreate_BlankContent(t *testing.T) {
	h := setupTest(t)

	form := url.Values{"content": {"   "}}
	req := httptest.NewRequest("POST", "/memos", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if resp.Error.Code != "INVALID_REQUEST" {
		t.Errorf("error code = %q, want INVALID_REQUEST", resp.Error.Code)
	}
}

// --- HandleDetail ---

func TestHandleDetail_Untransformed(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "watched a movie")

	req := httptest.NewRequest("GET", fmt.Sprintf("/memos/%d", id), nil)
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "watched a movie") {
		t.Error("expected memo content")
	}
	if !strings.Contains(body, "Learn English from this memo") {
		t.Error("expected transform call to action for an untransformed memo")
	}
}

func TestHandleDetail_Transformed(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "chatted with a coworker")

	if _, err := h.store.TransformMemo(t.Context(), id); err != nil {
		t.Fatalf("TransformMemo: %v", err)
	}

	req := httptest.NewRequest("GET", fmt.Sprintf("/memos/%d", id), nil)
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Catching up") {
		t.Error("expected dialogue title")
	}
	if !strings.Contains(body, "오늘 어땠어?") {
		t.Error("expected Korean gloss in dialogue")
	}
	if !strings.Contains(body, "A short day summary") {
		t.Error("expected rendered English summary")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/memos/999", nil)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDetail_BadID(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/memos/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleSetStatus ---

func TestHandleSetStatus(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "review flashcards")

	form := url.Values{"status": {"completed"}}
	req := httptest.NewRequest("POST", fmt.Sprintf("/memos/%d/status", id), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleSetStatus(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	m := h.store.Memo(id)
	if m == nil || m.Status != memo.StatusCompleted {
		t.Errorf("memo after status change = %+v, want completed", m)
	}
}

func TestHandleSetStatus_Invalid(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "memo")

	form := url.Values{"status": {"done"}}
	req := httptest.NewRequest("POST", fmt.Sprintf("/memos/%d/status", id), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleSetStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleDelete ---

func TestHandleDelete_HTMX(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "to be deleted")

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/memos/%d", id), nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/board" {
		t.Errorf("HX-Redirect = %q, want /board", got)
	}
	if m := h.store.Memo(id); m != nil {
		t.Error("memo should be gone from the store")
	}
}

// --- HandleTransform / HandleAudio ---

func TestHandleTransform_RedirectsToDetail(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "transform me")

	req := httptest.NewRequest("POST", fmt.Sprintf("/memos/%d/transform", id), nil)
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleTransform(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := fmt.Sprintf("/memos/%d", id)
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
}

func TestHandleAudio_HTMXFragment(t *testing.T) {
	h := setupTest(t)
	id := seedMemo(t, h, "audio memo")

	req := httptest.NewRequest("POST", fmt.Sprintf("/memos/%d/audio", id), nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", fmt.Sprint(id))
	rec := httptest.NewRecorder()
	h.HandleAudio(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cdn.example.com/audio.mp3") {
		t.Errorf("body = %q, want audio element with presigned URL", rec.Body.String())
	}
}

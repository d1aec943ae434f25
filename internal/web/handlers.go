package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/memolish/memolish/internal/config"
	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
	"github.com/memolish/memolish/internal/store"
)

// Handlers contains HTTP route handlers for the memo board UI.
type Handlers struct {
	store    *store.Store
	cfg      *config.Config
	renderer *Renderer
}

// HandleBoard handles GET /board — the memo board with status filtering.
func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = memo.FilterAll
	}
	if !memo.ValidFilter(filter) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("filter must be 'all' or a valid status"))
		return
	}

	h.store.FetchMemos(r.Context())
	h.store.FetchCredits(r.Context())
	h.store.SetActiveFilter(filter)

	snap := h.store.Snapshot()
	items := store.FilteredMemos(snap.Memos, filter)

	data := BoardPageData{
		PageData: PageData{
			Title:   "Memolish",
			Version: h.renderer.version,
			Nav:     "board",
		},
		Memos:   items,
		Filter:  filter,
		Filters: filterOptions(filter, snap.Memos),
		Credits: snap.Credits,
		Total:   len(snap.Memos),
		Err:     snap.Err,
	}

	// If htmx targets #board, render only the memo list fragment
	if r.Header.Get("HX-Target") == "board" {
		h.renderer.renderBlock(w, http.StatusOK, "board", "memo-list", data)
		return
	}

	h.renderer.renderPage(w, r, "board", data)
}

// HandleCreate handles POST /memos — create a memo from the board form.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	content := r.FormValue("content")
	sourceURL := ptrString(r.FormValue("source_url"))

	created, err := h.store.CreateMemo(r.Context(), content, sourceURL)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/board")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusCreated, created)
		return
	}

	http.Redirect(w, r, "/board", http.StatusFound)
}

// HandleDetail handles GET /memos/{id} — a single memo with its
// learning content (summaries and dialogue) when transformed.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.store.FetchMemos(r.Context())
	m := h.store.Memo(id)
	if m == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(fmt.Sprintf("memo %d not found", id)))
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Memo #%d", m.ID),
			Version: h.renderer.version,
			Nav:     "board",
		},
		Memo:        m,
		Transformed: m.IsTransformed,
		Credits:     h.store.Snapshot().Credits,
	}

	if d, err := m.CachedDialogue(); err == nil && d != nil {
		data.Dialogue = d
	}
	if md := summaryMarkdown(m); md != "" {
		data.SummaryHTML = renderMarkdown(md)
	}
	if snap := h.store.Snapshot(); snap.AudioRef != nil &&
		snap.LearningMemoID != nil && *snap.LearningMemoID == m.ID {
		data.AudioURL = snap.AudioRef.URL
	}

	h.renderer.renderPage(w, r, "detail", data)
}

// HandleSetStatus handles POST /memos/{id}/status — change a memo's status.
func (h *Handlers) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	status, err := memo.ParseStatus(r.FormValue("status"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}

	updated, err := h.store.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/board")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, updated)
		return
	}

	http.Redirect(w, r, "/board", http.StatusFound)
}

// HandleDelete handles DELETE /memos/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if err := h.store.DeleteMemo(r.Context(), id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/board")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
		return
	}

	http.Redirect(w, r, "/board", http.StatusFound)
}

// HandleTransform handles POST /memos/{id}/transform — run the AI
// transform and land on the memo's learning view.
func (h *Handlers) HandleTransform(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := h.store.TransformMemo(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := fmt.Sprintf("/memos/%d", id)

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// HandleAudio handles POST /memos/{id}/audio — generate dialogue audio
// and return a player fragment pointing at the presigned URL.
func (h *Handlers) HandleAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	ref, err := h.store.GenerateAudio(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<audio controls src="%s" class="dialogue-audio"></audio>`,
			template.HTMLEscapeString(ref.URL))
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, ref)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/memos/%d", id), http.StatusFound)
}

// filterOptions builds the board's filter bar entries with per-status counts.
func filterOptions(active string, memos []memo.Memo) []filterOption {
	counts := store.CountByStatus(memos)
	opts := []filterOption{{Value: memo.FilterAll, Label: "All", Count: len(memos), Active: active == memo.FilterAll}}
	for _, s := range memo.AllStatuses {
		opts = append(opts, filterOption{
			Value:  string(s),
			Label:  s.Label(),
			Count:  counts[s],
			Active: active == string(s),
		})
	}
	return opts
}

// summaryMarkdown assembles the bilingual summary as markdown.
func summaryMarkdown(m *memo.Memo) string {
	var b strings.Builder
	if m.AISummaryKo != nil && *m.AISummaryKo != "" {
		b.WriteString("**한국어 요약**\n\n")
		b.WriteString(*m.AISummaryKo)
		b.WriteString("\n")
	}
	if m.AISummaryEn != nil && *m.AISummaryEn != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**English summary**\n\n")
		b.WriteString(*m.AISummaryEn)
		b.WriteString("\n")
	}
	return b.String()
}

// pathID parses the {id} path segment as a memo id.
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("memo id must be a positive integer")
	}
	return id, nil
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

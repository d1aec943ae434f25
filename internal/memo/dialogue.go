package memo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Dialogue is the structured English dialogue produced by an AI transform:
// a title, a situation description, and an ordered sequence of exchanges.
type Dialogue struct {
	Title     string     `json:"title"`
	Situation string     `json:"situation"`
	Exchanges []Exchange `json:"exchanges"`
}

// Exchange is one speaker-tagged line with its Korean gloss.
type Exchange struct {
	Speaker string `json:"speaker"` // "A" or "B"
	Line    string `json:"line"`
	Korean  string `json:"korean"`
}

// DecodeDialogue parses the serialized dialogue payload cached on a memo.
func DecodeDialogue(raw string) (*Dialogue, error) {
	var d Dialogue
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode dialogue: %w", err)
	}
	return &d, nil
}

// CachedDialogue returns the dialogue stored on m, or nil if the memo has
// never been transformed.
func (m *Memo) CachedDialogue() (*Dialogue, error) {
	if m.AIDialogueRaw == nil || *m.AIDialogueRaw == "" {
		return nil, nil
	}
	return DecodeDialogue(*m.AIDialogueRaw)
}

// Script renders the dialogue as a plain-text study script.
func (d *Dialogue) Script() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", d.Title, d.Situation)
	for _, ex := range d.Exchanges {
		fmt.Fprintf(&b, "%s: %s\n   %s\n", ex.Speaker, ex.Line, ex.Korean)
	}
	return b.String()
}

package memo

// Memo represents a user-owned note as returned by the Memolish backend.
// The server is the source of truth; the client only caches these in memory.
type Memo struct {
	// ID is the server-assigned integer identifier, immutable once created
	ID int `json:"id"`

	// UserID is the opaque owner identifier (the OAuth subject)
	UserID string `json:"user_id"`

	// Content is the free-text body of the memo
	Content string `json:"content"`

	// SourceURL is an optional link the memo was taken from
	SourceURL *string `json:"source_url,omitempty"`

	// URLTitle is the resolved title of SourceURL (set by parse-url)
	URLTitle *string `json:"url_title,omitempty"`

	// URLDescription is the resolved description of SourceURL
	URLDescription *string `json:"url_description,omitempty"`

	// Status is the lifecycle status (see Status)
	Status Status `json:"status"`

	// StartDate is assigned by the server at creation
	StartDate string `json:"start_date"`

	// EndDate is optional
	EndDate *string `json:"end_date,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// IsTransformed is true once an AI transform has succeeded for this memo
	IsTransformed bool `json:"is_transformed"`

	// Cached AI transform fields, present server-side when IsTransformed
	AISummaryKo   *string `json:"ai_summary_ko,omitempty"`
	AISummaryEn   *string `json:"ai_summary_en,omitempty"`
	AIDialogueRaw *string `json:"ai_dialogue_json,omitempty"`

	// AudioKey is the server-side storage key of the synthesized audio
	AudioKey *string `json:"audio_s3_key,omitempty"`
}

// Credits is a per-user snapshot of the daily AI transform quota.
type Credits struct {
	DailyCredits    int  `json:"daily_credits"`
	IsPremium       bool `json:"is_premium"`
	MaxDailyCredits int  `json:"max_daily_credits"`
}

// TransformResult is the ephemeral result of one AI transform call.
// It is held only as the current learning result and replaced wholesale
// on each new transform.
type TransformResult struct {
	SummaryKo        string   `json:"summary_ko"`
	SummaryEn        string   `json:"summary_en"`
	Dialogue         Dialogue `json:"dialogue"`
	CreditsRemaining int      `json:"credits_remaining"`
}

// AudioRef is a playable reference returned by audio generation.
type AudioRef struct {
	URL    string `json:"audio_url"`
	Cached bool   `json:"cached"`
}

// DownloadLink is a time-limited audio download reference.
type DownloadLink struct {
	URL              string `json:"download_url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// URLMetadata is the resolved title/description of a parsed source URL.
type URLMetadata struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

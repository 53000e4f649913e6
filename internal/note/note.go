package note

import "time"

// UntitledDisplay is shown in list output for notes with an empty title.
// The stored title stays empty; this is presentation only.
const UntitledDisplay = "Başlıksız Not"

// Note is the persisted unit of content.
// Timestamps are epoch milliseconds; JSON field names match the stored
// blob format, so a collection round-trips byte-compatibly.
type Note struct {
	// ID is a ULID that uniquely identifies this note, immutable after creation
	ID string `json:"id"`

	// Title may be empty
	Title string `json:"title"`

	// Content may be empty
	Content string `json:"content"`

	// CreatedAt is set once at creation and never changes
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is bumped on every committed mutation
	UpdatedAt int64 `json:"updatedAt"`
}

// DisplayTitle returns the title, falling back to UntitledDisplay when empty.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledDisplay
	}
	return n.Title
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

package domain

// UserStrategy is a free-text strategy authored by the user.
// Records are immutable once created; the only mutation is deletion.
type UserStrategy struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Image       string `json:"image"` // URL or data URI
	CreatedAt   string `json:"createdAt,omitempty"`
}

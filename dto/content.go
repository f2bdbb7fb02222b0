package dto

import "time"

type CreateLinkRequest struct {
	Title     string `json:"title" validate:"required,max=120"`
	URL       string `json:"url" validate:"required,url"`
	SectionID string `json:"section_id,omitempty"`
}

type UpdateLinkRequest struct {
	Title  *string `json:"title,omitempty" validate:"omitempty,max=120"`
	URL    *string `json:"url,omitempty" validate:"omitempty,url"`
	Active *bool   `json:"active,omitempty"`
}

type LinkResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	SectionID string    `json:"section_id,omitempty"`
	Active    bool      `json:"active"`
	Clicks    int64     `json:"clicks"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSectionRequest struct {
	Title string `json:"title" validate:"required,max=120"`
}

type CreateTextBlockRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CreateImageBlockRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption,omitempty" validate:"max=300"`
	LinkURL  string `json:"link_url,omitempty" validate:"omitempty,url"`
}

type CreateVideoBlockRequest struct {
	VideoURL string `json:"video_url" validate:"required,url"`
	Title    string `json:"title,omitempty" validate:"max=120"`
}

type CreateMusicTrackRequest struct {
	TrackURL string `json:"track_url" validate:"required,url"`
	Title    string `json:"title,omitempty" validate:"max=120"`
	Artist   string `json:"artist,omitempty" validate:"max=120"`
}

type CreateSocialLinkRequest struct {
	Platform string `json:"platform" validate:"required,max=40"`
	Handle   string `json:"handle,omitempty" validate:"max=120"`
	URL      string `json:"url" validate:"required,url"`
}

type CreateEventBlockRequest struct {
	Title    string    `json:"title" validate:"required,max=120"`
	Location string    `json:"location,omitempty" validate:"max=200"`
	URL      string    `json:"url,omitempty" validate:"omitempty,url"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ReorderItem is one {id, order} pair of a reorder batch. Order must be
// non-negative; an empty batch is a no-op, not an error.
type ReorderItem struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}

type ReorderRequest struct {
	Items []ReorderItem `json:"items" validate:"dive"`
}

type ReorderResponse struct {
	Updated int `json:"updated"`
}

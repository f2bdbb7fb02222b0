package dto

import "time"

// QueuedEvent is the payload pushed onto the ingestion queue for every click
// and profile view. A batch worker outside this service drains the queue; the
// stream copy exists for live tailing only.
type QueuedEvent struct {
	Type      string    `json:"type"`
	SubjectID string    `json:"subject_id"`
	Device    string    `json:"device"`
	UserAgent string    `json:"user_agent"`
	Country   string    `json:"country"`
	Referrer  string    `json:"referrer"`
	CreatedAt time.Time `json:"created_at"`
}

type ClickCountResponse struct {
	LinkID string `json:"link_id"`
	Clicks int64  `json:"clicks"`
}

type ProfileViewResponse struct {
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	Bio         string      `json:"bio,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	Blocks      []BlockView `json:"blocks"`
	SocialLinks []BlockView `json:"social_links"`
}

// BlockView is the public, render-ready shape of a content block.
type BlockView struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Position int                    `json:"position"`
	Fields   map[string]interface{} `json:"fields"`
}

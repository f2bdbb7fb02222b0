package shared

const (
	UserID = "user_id"

	BlockTypeLink    = "link"
	BlockTypeSection = "section"
	BlockTypeText    = "text"
	BlockTypeImage   = "image"
	BlockTypeVideo   = "video"
	BlockTypeMusic   = "music"
	BlockTypeSocial  = "social"
	BlockTypeEvent   = "event"

	EventTypeClick       = "click"
	EventTypeProfileView = "profile_view"

	QrFormatPNG = "png"
)

package dto

import "time"

type BuildQrRequest struct {
	URL    string `json:"url" validate:"required,url"`
	Format string `json:"format,omitempty" validate:"omitempty,oneof=png"`
	Size   int    `json:"size,omitempty" validate:"omitempty,gte=64,lte=2048"`
}

type QrCodeResponse struct {
	Hash      string    `json:"hash"`
	URL       string    `json:"url"`
	SourceURL string    `json:"source_url"`
	Format    string    `json:"format"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type QrJobAccepted struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

type QrCodeCollectionResponse struct {
	QrCodes []QrCodeResponse `json:"qr_codes"`
	Total   int              `json:"total"`
}

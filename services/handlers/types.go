package handlers

import (
	"context"

	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/model"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (*dto.LoginResponse, error)
}

type ContentServiceInterface interface {
	CreateLink(ctx context.Context, userID string, req dto.CreateLinkRequest) (*dto.LinkResponse, error)
	UpdateLink(ctx context.Context, userID, linkID string, req dto.UpdateLinkRequest) (*dto.LinkResponse, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	ListLinks(ctx context.Context, userID string) ([]dto.LinkResponse, error)

	CreateSection(ctx context.Context, userID string, req dto.CreateSectionRequest) (*model.Section, error)
	CreateTextBlock(ctx context.Context, userID string, req dto.CreateTextBlockRequest) (*model.TextBlock, error)
	CreateImageBlock(ctx context.Context, userID string, req dto.CreateImageBlockRequest) (*model.ImageBlock, error)
	CreateVideoBlock(ctx context.Context, userID string, req dto.CreateVideoBlockRequest) (*model.VideoBlock, error)
	CreateMusicTrack(ctx context.Context, userID string, req dto.CreateMusicTrackRequest) (*model.MusicTrack, error)
	CreateSocialLink(ctx context.Context, userID string, req dto.CreateSocialLinkRequest) (*model.SocialLink, error)
	CreateEventBlock(ctx context.Context, userID string, req dto.CreateEventBlockRequest) (*model.EventBlock, error)
	DeleteBlock(ctx context.Context, userID, blockType, blockID string) error

	Reorder(ctx context.Context, userID, blockType string, items []dto.ReorderItem) (*dto.ReorderResponse, error)

	ResolveLinkClick(ctx context.Context, linkID, ip, userAgent, referrer string) (string, error)
	GetLinkClickCount(ctx context.Context, userID, linkID string) (*dto.ClickCountResponse, error)
}

type QrCodeServiceInterface interface {
	BuildAndCache(ctx context.Context, sourceURL, format string, size int, userID string) (*dto.QrCodeResponse, error)
	EnqueueJob(ctx context.Context, sourceURL, format string, size int, userID string) (*dto.QrJobAccepted, error)
	Lookup(ctx context.Context, hash, userID string) (*dto.QrCodeResponse, error)
	List(ctx context.Context, userID string) (*dto.QrCodeCollectionResponse, error)
	Delete(ctx context.Context, hash, userID string) error
}

type ProfileServiceInterface interface {
	GetPublicProfile(ctx context.Context, username string) (*dto.ProfileViewResponse, error)
}

type ProfileViewRecorder interface {
	RecordProfileView(ctx context.Context, username, ip, userAgent, referrer string) error
}

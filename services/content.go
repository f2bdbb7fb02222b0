package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/model"
	"github.com/biolink-hub/biolink_api/services/repositories"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ContentService owns the block CRUD and the reorder operation for all eight
// block types. Every mutation is scoped to the authenticated owner and
// invalidates that owner's cached public profile.
type ContentService struct {
	appContext.DefaultService

	sqlSvc     *PostgresService
	eventSvc   *EventQueueService
	profileSvc *ProfileService
}

const CONTENT_SVC = "content_svc"

func (svc ContentService) Id() string {
	return CONTENT_SVC
}

func (svc *ContentService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.eventSvc = svc.Service(EVENT_QUEUE_SVC).(*EventQueueService)
	svc.profileSvc = svc.Service(PROFILE_SVC).(*ProfileService)
	return nil
}

func (svc *ContentService) repo() *repositories.ContentRepository {
	return svc.sqlSvc.ContentRepo()
}

// ==================== LINKS ====================

func (svc *ContentService) CreateLink(ctx context.Context, userID string, req dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.Link{}, userID)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		ID:        uuid.New().String(),
		UserID:    userID,
		SectionID: req.SectionID,
		Title:     req.Title,
		URL:       req.URL,
		Active:    true,
		Position:  position,
	}
	if err := svc.repo().Create(link); err != nil {
		return nil, err
	}

	if err := svc.eventSvc.EnsureLinkClickCounter(ctx, link.ID, 0); err != nil {
		log.WithError(err).WithField("link_id", link.ID).Warn("Failed to seed click counter")
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return svc.linkResponse(ctx, link), nil
}

func (svc *ContentService) UpdateLink(ctx context.Context, userID, linkID string, req dto.UpdateLinkRequest) (*dto.LinkResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := svc.repo().UpdateScoped(&model.Link{}, linkID, userID, fields); err != nil {
			return nil, notOwnedToNotFound(err)
		}
	}

	link, err := svc.repo().GetLinkScoped(linkID, userID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, shared.NewNotFoundError("Link not found")
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return svc.linkResponse(ctx, link), nil
}

func (svc *ContentService) DeleteLink(ctx context.Context, userID, linkID string) error {
	if err := svc.repo().DeleteScoped(&model.Link{}, linkID, userID); err != nil {
		return notOwnedToNotFound(err)
	}

	if err := svc.eventSvc.ClearLinkClickCounter(ctx, linkID); err != nil {
		log.WithError(err).WithField("link_id", linkID).Warn("Failed to clear click counter")
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return nil
}

func (svc *ContentService) ListLinks(ctx context.Context, userID string) ([]dto.LinkResponse, error) {
	var links []model.Link
	if err := svc.repo().ListScoped(&links, userID); err != nil {
		return nil, err
	}

	responses := make([]dto.LinkResponse, 0, len(links))
	for i := range links {
		responses = append(responses, *svc.linkResponse(ctx, &links[i]))
	}
	return responses, nil
}

func (svc *ContentService) linkResponse(ctx context.Context, link *model.Link) *dto.LinkResponse {
	// Seed the live counter from the persisted baseline before reading it;
	// set-if-absent keeps any increments accumulated since the baseline.
	clicks := link.Clicks
	if err := svc.eventSvc.EnsureLinkClickCounter(ctx, link.ID, link.Clicks); err == nil {
		if live, err := svc.eventSvc.GetLinkClickCounter(ctx, link.ID); err == nil {
			clicks = live
		}
	}

	return &dto.LinkResponse{
		ID:        link.ID,
		Title:     link.Title,
		URL:       link.URL,
		SectionID: link.SectionID,
		Active:    link.Active,
		Clicks:    clicks,
		Position:  link.Position,
		CreatedAt: link.CreatedAt,
	}
}

// ResolveLinkClick is the public click-through path: it resolves the target
// URL, bumps the fast-path counter and enqueues the click event. Counter and
// queue failures surface to the caller; they are the record of truth for the
// analytics pipeline.
func (svc *ContentService) ResolveLinkClick(ctx context.Context, linkID, ip, userAgent, referrer string) (string, error) {
	link, err := svc.repo().GetLink(linkID)
	if err != nil {
		return "", err
	}
	if link == nil || !link.Active {
		return "", shared.NewNotFoundError("Link not found")
	}

	if err := svc.eventSvc.EnsureLinkClickCounter(ctx, link.ID, link.Clicks); err != nil {
		return "", err
	}
	if _, err := svc.eventSvc.IncrementLinkClickCounter(ctx, link.ID); err != nil {
		return "", err
	}

	event := svc.eventSvc.NewEvent(shared.EventTypeClick, link.ID, ip, userAgent, referrer)
	if err := svc.eventSvc.EnqueueClickEvent(ctx, event); err != nil {
		return "", err
	}

	return link.URL, nil
}

// GetLinkClickCount reads the live counter for one of the owner's links.
func (svc *ContentService) GetLinkClickCount(ctx context.Context, userID, linkID string) (*dto.ClickCountResponse, error) {
	link, err := svc.repo().GetLinkScoped(linkID, userID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, shared.NewNotFoundError("Link not found")
	}

	if err := svc.eventSvc.EnsureLinkClickCounter(ctx, link.ID, link.Clicks); err != nil {
		return nil, err
	}
	clicks, err := svc.eventSvc.GetLinkClickCounter(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ClickCountResponse{LinkID: link.ID, Clicks: clicks}, nil
}

// ==================== OTHER BLOCK TYPES ====================

func (svc *ContentService) CreateSection(ctx context.Context, userID string, req dto.CreateSectionRequest) (*model.Section, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.Section{}, userID)
	if err != nil {
		return nil, err
	}

	section := &model.Section{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    req.Title,
		Position: position,
	}
	if err := svc.repo().Create(section); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return section, nil
}

func (svc *ContentService) CreateTextBlock(ctx context.Context, userID string, req dto.CreateTextBlockRequest) (*model.TextBlock, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.TextBlock{}, userID)
	if err != nil {
		return nil, err
	}

	block := &model.TextBlock{
		ID:       uuid.New().String(),
		UserID:   userID,
		Content:  req.Content,
		Position: position,
	}
	if err := svc.repo().Create(block); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return block, nil
}

func (svc *ContentService) CreateImageBlock(ctx context.Context, userID string, req dto.CreateImageBlockRequest) (*model.ImageBlock, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.ImageBlock{}, userID)
	if err != nil {
		return nil, err
	}

	block := &model.ImageBlock{
		ID:       uuid.New().String(),
		UserID:   userID,
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
		LinkURL:  req.LinkURL,
		Position: position,
	}
	if err := svc.repo().Create(block); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return block, nil
}

func (svc *ContentService) CreateVideoBlock(ctx context.Context, userID string, req dto.CreateVideoBlockRequest) (*model.VideoBlock, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.VideoBlock{}, userID)
	if err != nil {
		return nil, err
	}

	block := &model.VideoBlock{
		ID:       uuid.New().String(),
		UserID:   userID,
		VideoURL: req.VideoURL,
		Title:    req.Title,
		Position: position,
	}
	if err := svc.repo().Create(block); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return block, nil
}

func (svc *ContentService) CreateMusicTrack(ctx context.Context, userID string, req dto.CreateMusicTrackRequest) (*model.MusicTrack, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.MusicTrack{}, userID)
	if err != nil {
		return nil, err
	}

	track := &model.MusicTrack{
		ID:       uuid.New().String(),
		UserID:   userID,
		TrackURL: req.TrackURL,
		Title:    req.Title,
		Artist:   req.Artist,
		Position: position,
	}
	if err := svc.repo().Create(track); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return track, nil
}

func (svc *ContentService) CreateSocialLink(ctx context.Context, userID string, req dto.CreateSocialLinkRequest) (*model.SocialLink, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.SocialLink{}, userID)
	if err != nil {
		return nil, err
	}

	social := &model.SocialLink{
		ID:       uuid.New().String(),
		UserID:   userID,
		Platform: req.Platform,
		Handle:   req.Handle,
		URL:      req.URL,
		Position: position,
	}
	if err := svc.repo().Create(social); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return social, nil
}

func (svc *ContentService) CreateEventBlock(ctx context.Context, userID string, req dto.CreateEventBlockRequest) (*model.EventBlock, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	position, err := svc.repo().NextPosition(&model.EventBlock{}, userID)
	if err != nil {
		return nil, err
	}

	event := &model.EventBlock{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    req.Title,
		Location: req.Location,
		URL:      req.URL,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Position: position,
	}
	if err := svc.repo().Create(event); err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return event, nil
}

// DeleteBlock removes one block of the given type, owner-scoped.
func (svc *ContentService) DeleteBlock(ctx context.Context, userID, blockType, blockID string) error {
	modelPtr, err := modelForBlockType(blockType)
	if err != nil {
		return err
	}

	if err := svc.repo().DeleteScoped(modelPtr, blockID, userID); err != nil {
		return notOwnedToNotFound(err)
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return nil
}

// ==================== REORDER ====================

// Reorder applies a {id, order} batch for one block type as a single
// transaction scoped to the owner. Ids belonging to another user match zero
// rows and are skipped; the response reports how many rows moved.
func (svc *ContentService) Reorder(ctx context.Context, userID, blockType string, items []dto.ReorderItem) (*dto.ReorderResponse, error) {
	modelPtr, err := modelForBlockType(blockType)
	if err != nil {
		return nil, err
	}

	if err := repositories.ValidateReorderItems(items); err != nil {
		return nil, shared.NewValidationError(err.Error(), nil)
	}

	updated, err := svc.repo().ReorderScoped(modelPtr, userID, items)
	if err != nil {
		return nil, err
	}

	svc.profileSvc.Invalidate(ctx, userID)
	return &dto.ReorderResponse{Updated: int(updated)}, nil
}

func modelForBlockType(blockType string) (interface{}, error) {
	switch blockType {
	case shared.BlockTypeLink:
		return &model.Link{}, nil
	case shared.BlockTypeSection:
		return &model.Section{}, nil
	case shared.BlockTypeText:
		return &model.TextBlock{}, nil
	case shared.BlockTypeImage:
		return &model.ImageBlock{}, nil
	case shared.BlockTypeVideo:
		return &model.VideoBlock{}, nil
	case shared.BlockTypeMusic:
		return &model.MusicTrack{}, nil
	case shared.BlockTypeSocial:
		return &model.SocialLink{}, nil
	case shared.BlockTypeEvent:
		return &model.EventBlock{}, nil
	default:
		return nil, shared.NewValidationError("Unknown block type: "+blockType, nil)
	}
}

func notOwnedToNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotOwned) {
		return shared.NewNotFoundError("Not Found")
	}
	return err
}

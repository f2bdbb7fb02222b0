package services

import (
	"context"
	"sort"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/model"
	"github.com/biolink-hub/biolink_api/shared"
	log "github.com/sirupsen/logrus"
)

// ProfileService assembles the public page for a username: profile header
// plus every block type ordered by position. Rendered views are cached with
// a short TTL; every cache key is registered in the owner's tag set so a
// content mutation can invalidate all of them at once.
type ProfileService struct {
	appContext.DefaultService

	kv     KeyValueStore
	users  userSource
	blocks blockSource

	sqlSvc   *PostgresService
	redisSvc *RedisService
	eventSvc *EventQueueService

	cacheTTL time.Duration
}

// userSource and blockSource narrow the repositories to what the view
// builder reads; tests substitute fakes.
type userSource interface {
	GetByUsername(username string) (*model.User, error)
}

type blockSource interface {
	ListScoped(dest interface{}, ownerID string) error
}

const PROFILE_SVC = "profile_svc"

const (
	profileViewPrefix = "profile:view:"
	profileTagPrefix  = "cache:tags:user:"
)

func (svc ProfileService) Id() string {
	return PROFILE_SVC
}

func (svc *ProfileService) Configure(ctx *appContext.Context) error {
	svc.cacheTTL = 5 * time.Minute
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProfileService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.eventSvc = svc.Service(EVENT_QUEUE_SVC).(*EventQueueService)
	svc.kv = svc.redisSvc
	svc.users = svc.sqlSvc.UserRepo()
	svc.blocks = svc.sqlSvc.ContentRepo()
	return nil
}

// RecordProfileView enqueues a view event for the profile owner. Queue
// failure surfaces; the list is the analytics record of truth.
func (svc *ProfileService) RecordProfileView(ctx context.Context, username, ip, userAgent, referrer string) error {
	user, err := svc.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewNotFoundError("Profile not found")
	}

	event := svc.eventSvc.NewEvent(shared.EventTypeProfileView, user.ID, ip, userAgent, referrer)
	return svc.eventSvc.EnqueueProfileViewEvent(ctx, event)
}

// GetPublicProfile returns the render-ready page for a username, from cache
// when possible. A cache read failure falls open to the database.
func (svc *ProfileService) GetPublicProfile(ctx context.Context, username string) (*dto.ProfileViewResponse, error) {
	cacheKey := profileViewPrefix + username

	var cached dto.ProfileViewResponse
	if err := svc.kv.GetJSON(ctx, cacheKey, &cached); err == nil && cached.Username != "" {
		return &cached, nil
	}

	user, err := svc.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewNotFoundError("Profile not found")
	}

	view, err := svc.buildProfileView(user)
	if err != nil {
		return nil, err
	}

	if err := svc.kv.Set(ctx, cacheKey, view, svc.cacheTTL); err != nil {
		log.WithError(err).WithField("username", username).Warn("Failed to cache profile view")
	} else if err := svc.kv.SAdd(ctx, profileTagPrefix+user.ID, cacheKey); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to tag profile cache entry")
	}

	return view, nil
}

// Invalidate drops every cached view registered in the owner's tag set.
// Failures are logged only; a stale cache entry expires on its own TTL.
func (svc *ProfileService) Invalidate(ctx context.Context, userID string) {
	tagKey := profileTagPrefix + userID

	keys, err := svc.kv.SMembers(ctx, tagKey)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to read cache tag set")
		return
	}

	keys = append(keys, tagKey)
	if err := svc.kv.Delete(ctx, keys...); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate profile cache")
	}
}

func (svc *ProfileService) buildProfileView(user *model.User) (*dto.ProfileViewResponse, error) {
	repo := svc.blocks

	view := &dto.ProfileViewResponse{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		Blocks:      []dto.BlockView{},
		SocialLinks: []dto.BlockView{},
	}

	var links []model.Link
	if err := repo.ListScoped(&links, user.ID); err != nil {
		return nil, err
	}
	for _, l := range links {
		if !l.Active {
			continue
		}
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: l.ID, Type: shared.BlockTypeLink, Position: l.Position,
			Fields: map[string]interface{}{"title": l.Title, "url": l.URL, "section_id": l.SectionID},
		})
	}

	var sections []model.Section
	if err := repo.ListScoped(&sections, user.ID); err != nil {
		return nil, err
	}
	for _, s := range sections {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: s.ID, Type: shared.BlockTypeSection, Position: s.Position,
			Fields: map[string]interface{}{"title": s.Title},
		})
	}

	var texts []model.TextBlock
	if err := repo.ListScoped(&texts, user.ID); err != nil {
		return nil, err
	}
	for _, t := range texts {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: t.ID, Type: shared.BlockTypeText, Position: t.Position,
			Fields: map[string]interface{}{"content": t.Content},
		})
	}

	var images []model.ImageBlock
	if err := repo.ListScoped(&images, user.ID); err != nil {
		return nil, err
	}
	for _, img := range images {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: img.ID, Type: shared.BlockTypeImage, Position: img.Position,
			Fields: map[string]interface{}{"image_url": img.ImageURL, "caption": img.Caption, "link_url": img.LinkURL},
		})
	}

	var videos []model.VideoBlock
	if err := repo.ListScoped(&videos, user.ID); err != nil {
		return nil, err
	}
	for _, v := range videos {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: v.ID, Type: shared.BlockTypeVideo, Position: v.Position,
			Fields: map[string]interface{}{"video_url": v.VideoURL, "title": v.Title},
		})
	}

	var tracks []model.MusicTrack
	if err := repo.ListScoped(&tracks, user.ID); err != nil {
		return nil, err
	}
	for _, m := range tracks {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: m.ID, Type: shared.BlockTypeMusic, Position: m.Position,
			Fields: map[string]interface{}{"track_url": m.TrackURL, "title": m.Title, "artist": m.Artist},
		})
	}

	var events []model.EventBlock
	if err := repo.ListScoped(&events, user.ID); err != nil {
		return nil, err
	}
	for _, e := range events {
		view.Blocks = append(view.Blocks, dto.BlockView{
			ID: e.ID, Type: shared.BlockTypeEvent, Position: e.Position,
			Fields: map[string]interface{}{
				"title": e.Title, "location": e.Location, "url": e.URL,
				"starts_at": e.StartsAt, "ends_at": e.EndsAt,
			},
		})
	}

	var socials []model.SocialLink
	if err := repo.ListScoped(&socials, user.ID); err != nil {
		return nil, err
	}
	for _, s := range socials {
		view.SocialLinks = append(view.SocialLinks, dto.BlockView{
			ID: s.ID, Type: shared.BlockTypeSocial, Position: s.Position,
			Fields: map[string]interface{}{"platform": s.Platform, "handle": s.Handle, "url": s.URL},
		})
	}

	sortBlockViews(view.Blocks)
	sortBlockViews(view.SocialLinks)

	return view, nil
}

func sortBlockViews(blocks []dto.BlockView) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Position < blocks[j].Position
	})
}

package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	log "github.com/sirupsen/logrus"
)

// EventQueueService ingests click and profile-view events. Every event is
// pushed onto a durable list consumed by the downstream aggregation worker,
// and mirrored onto a capped stream for live tailing. The list push is the
// record of truth and its failure surfaces to the caller; the stream copy is
// best-effort.
type EventQueueService struct {
	appContext.DefaultService

	kv      KeyValueStore
	country countryResolver

	redisSvc *RedisService
	geoSvc   *GeolocationService
}

// countryResolver narrows GeolocationService for ingestion; failures resolve
// to "Unknown" on the caller side.
type countryResolver interface {
	GetLocationByIP(ip string) (string, error)
}

const EVENT_QUEUE_SVC = "event_queue_svc"

const (
	eventQueueKey    = "events:queue"
	eventStreamKey   = "events:stream"
	eventStreamCap   = 10000
	clickCountPrefix = "clicks:link:"
)

func (svc EventQueueService) Id() string {
	return EVENT_QUEUE_SVC
}

func (svc *EventQueueService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.geoSvc = svc.Service(GEOLOCATION_SVC).(*GeolocationService)
	svc.kv = svc.redisSvc
	svc.country = svc.geoSvc
	return nil
}

// NewEvent assembles an event payload from request attributes. Country lookup
// is best-effort and never fails the ingestion path.
func (svc *EventQueueService) NewEvent(eventType, subjectID, ip, userAgent, referrer string) dto.QueuedEvent {
	country := "Unknown"
	if svc.country != nil {
		if resolved, err := svc.country.GetLocationByIP(ip); err == nil && resolved != "" {
			country = resolved
		}
	}

	return dto.QueuedEvent{
		Type:      eventType,
		SubjectID: subjectID,
		Device:    deviceFromUserAgent(userAgent),
		UserAgent: userAgent,
		Country:   country,
		Referrer:  referrer,
		CreatedAt: time.Now().UTC(),
	}
}

func (svc *EventQueueService) EnqueueClickEvent(ctx context.Context, event dto.QueuedEvent) error {
	event.Type = shared.EventTypeClick
	return svc.enqueue(ctx, event)
}

func (svc *EventQueueService) EnqueueProfileViewEvent(ctx context.Context, event dto.QueuedEvent) error {
	event.Type = shared.EventTypeProfileView
	return svc.enqueue(ctx, event)
}

func (svc *EventQueueService) enqueue(ctx context.Context, event dto.QueuedEvent) error {
	if err := svc.kv.LPush(ctx, eventQueueKey, event); err != nil {
		return err
	}

	// Secondary path: the live tail must never block ingestion.
	if err := svc.kv.XAdd(ctx, eventStreamKey, eventStreamCap, map[string]interface{}{
		"type":       event.Type,
		"subject_id": event.SubjectID,
		"device":     event.Device,
		"country":    event.Country,
		"referrer":   event.Referrer,
		"created_at": event.CreatedAt.Unix(),
	}); err != nil {
		log.WithError(err).WithField("type", event.Type).Warn("Event stream append failed")
	}

	eventsEnqueuedTotal.WithLabelValues(event.Type).Inc()
	return nil
}

// IncrementLinkClickCounter bumps the fast-path counter for a link and
// returns the new value.
func (svc *EventQueueService) IncrementLinkClickCounter(ctx context.Context, linkID string) (int64, error) {
	return svc.kv.Increment(ctx, clickCountPrefix+linkID)
}

// EnsureLinkClickCounter seeds the counter from a persisted baseline. The
// write is set-if-absent so a counter that has already accumulated increments
// is never clobbered.
func (svc *EventQueueService) EnsureLinkClickCounter(ctx context.Context, linkID string, base int64) error {
	_, err := svc.kv.SetNX(ctx, clickCountPrefix+linkID, strconv.FormatInt(base, 10), 0)
	return err
}

func (svc *EventQueueService) GetLinkClickCounter(ctx context.Context, linkID string) (int64, error) {
	raw, err := svc.kv.Get(ctx, clickCountPrefix+linkID)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return count, nil
}

// ClearLinkClickCounter drops the cache counter, used when the link itself is
// deleted.
func (svc *EventQueueService) ClearLinkClickCounter(ctx context.Context, linkID string) error {
	return svc.kv.Delete(ctx, clickCountPrefix+linkID)
}

func deviceFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	case ua == "":
		return "unknown"
	default:
		return "desktop"
	}
}

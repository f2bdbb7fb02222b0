package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	log "github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

// QrCodeService builds QR images for canonicalized URLs and caches them by
// content hash. Identical logical requests (same canonical URL, format and
// size) always resolve to the same hash, so the second request is a cache hit
// with no re-upload.
type QrCodeService struct {
	appContext.DefaultService

	kv    KeyValueStore
	blobs blobStore

	redisSvc *RedisService
	minioSvc *MinIOService

	workerStop chan struct{}
}

// blobStore is the durable image host. MinIOService satisfies it.
type blobStore interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	RemoveObject(ctx context.Context, objectName string) error
}

const QR_CODE_SVC = "qr_code_svc"

const (
	qrMetaPrefix    = "qr:meta:"
	qrUserSetPrefix = "qr:user:"
	qrJobQueueKey   = "qr:jobs"

	qrDefaultSize   = 512
	qrDefaultFormat = shared.QrFormatPNG
)

// qrRecord is the cached metadata for one generated code. The key-value
// records are the authoritative index; blob objects are best-effort cleaned.
type qrRecord struct {
	Hash        string    `json:"hash"`
	SourceURL   string    `json:"source_url"`
	Format      string    `json:"format"`
	Size        int       `json:"size"`
	ImageURL    string    `json:"image_url"`
	ObjectName  string    `json:"object_name"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type qrJob struct {
	SourceURL string `json:"source_url"`
	Format    string `json:"format"`
	Size      int    `json:"size"`
	UserID    string `json:"user_id"`
}

func (svc QrCodeService) Id() string {
	return QR_CODE_SVC
}

func (svc *QrCodeService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.kv = svc.redisSvc
	svc.blobs = svc.minioSvc

	svc.workerStop = make(chan struct{})
	go svc.runJobWorker()

	return nil
}

func (svc *QrCodeService) Shutdown() {
	if svc.workerStop != nil {
		close(svc.workerStop)
	}
}

// CanonicalizeUrl normalizes a URL so logically-equivalent inputs map to the
// same cache key: lowercased scheme and host, https default, sorted query
// parameters, no trailing slash, no fragment.
func CanonicalizeUrl(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid url: missing host")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	if parsed.RawQuery != "" {
		values, err := url.ParseQuery(parsed.RawQuery)
		if err == nil {
			// Encode sorts by key; values under one key keep their order.
			parsed.RawQuery = values.Encode()
		}
	}

	return parsed.String(), nil
}

// ShortHash derives the deterministic content-addressed key.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

func qrCacheHash(canonicalURL, format string, size int) string {
	return ShortHash(fmt.Sprintf("%s|%s|%d", canonicalURL, format, size))
}

func normalizeQrOptions(format string, size int) (string, int) {
	if format == "" {
		format = qrDefaultFormat
	}
	if size <= 0 {
		size = qrDefaultSize
	}
	return format, size
}

// BuildAndCache returns the cached record for (url, format, size) or
// generates, uploads and caches one. Upload failure aborts the whole build
// with no partial writes.
func (svc *QrCodeService) BuildAndCache(ctx context.Context, sourceURL, format string, size int, userID string) (*dto.QrCodeResponse, error) {
	canonical, err := CanonicalizeUrl(sourceURL)
	if err != nil {
		return nil, shared.NewValidationError(err.Error(), nil)
	}

	format, size = normalizeQrOptions(format, size)
	hash := qrCacheHash(canonical, format, size)

	if record, err := svc.getRecord(ctx, hash); err != nil {
		return nil, err
	} else if record != nil {
		qrCacheHitsTotal.Inc()
		return recordToResponse(record), nil
	}

	qrCacheMissesTotal.Inc()

	png, err := qrcode.Encode(canonical, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr image: %w", err)
	}

	objectName := fmt.Sprintf("qr/%s.%s", hash, format)
	imageURL, err := svc.blobs.UploadBytes(ctx, objectName, png, "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to upload qr image: %w", err)
	}

	record := &qrRecord{
		Hash:        hash,
		SourceURL:   canonical,
		Format:      format,
		Size:        size,
		ImageURL:    imageURL,
		ObjectName:  objectName,
		OwnerUserID: userID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := svc.kv.Set(ctx, qrMetaPrefix+hash, record, 0); err != nil {
		return nil, err
	}
	if err := svc.kv.SAdd(ctx, qrUserSetPrefix+userID, hash); err != nil {
		return nil, err
	}

	return recordToResponse(record), nil
}

// EnqueueJob defers generation to the worker and returns the precomputed
// hash; the caller re-requests to retrieve the finished image.
func (svc *QrCodeService) EnqueueJob(ctx context.Context, sourceURL, format string, size int, userID string) (*dto.QrJobAccepted, error) {
	canonical, err := CanonicalizeUrl(sourceURL)
	if err != nil {
		return nil, shared.NewValidationError(err.Error(), nil)
	}

	format, size = normalizeQrOptions(format, size)

	job := qrJob{SourceURL: canonical, Format: format, Size: size, UserID: userID}
	if err := svc.kv.LPush(ctx, qrJobQueueKey, job); err != nil {
		return nil, err
	}

	return &dto.QrJobAccepted{
		Hash:   qrCacheHash(canonical, format, size),
		Status: "queued",
	}, nil
}

// Lookup returns the cached record by hash, scoped to its owner.
func (svc *QrCodeService) Lookup(ctx context.Context, hash, userID string) (*dto.QrCodeResponse, error) {
	record, err := svc.getRecord(ctx, hash)
	if err != nil {
		return nil, err
	}
	if record == nil || record.OwnerUserID != userID {
		return nil, shared.NewNotFoundError("QR code not found")
	}
	return recordToResponse(record), nil
}

// List returns all codes registered in the owner's set. Hashes whose metadata
// has been removed out-of-band are skipped.
func (svc *QrCodeService) List(ctx context.Context, userID string) (*dto.QrCodeCollectionResponse, error) {
	hashes, err := svc.kv.SMembers(ctx, qrUserSetPrefix+userID)
	if err != nil {
		return nil, err
	}

	codes := make([]dto.QrCodeResponse, 0, len(hashes))
	for _, hash := range hashes {
		record, err := svc.getRecord(ctx, hash)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		codes = append(codes, *recordToResponse(record))
	}

	return &dto.QrCodeCollectionResponse{QrCodes: codes, Total: len(codes)}, nil
}

// Delete removes the cached mapping, metadata and set membership, then
// best-effort deletes the blob objects (including the optional logo
// companion). The key-value records are the authoritative index, so blob
// failures are only logged.
func (svc *QrCodeService) Delete(ctx context.Context, hash, userID string) error {
	record, err := svc.getRecord(ctx, hash)
	if err != nil {
		return err
	}
	if record == nil || record.OwnerUserID != userID {
		return shared.NewNotFoundError("QR code not found")
	}

	if err := svc.kv.Delete(ctx, qrMetaPrefix+hash); err != nil {
		return err
	}
	if err := svc.kv.SRem(ctx, qrUserSetPrefix+userID, hash); err != nil {
		return err
	}

	if err := svc.blobs.RemoveObject(ctx, record.ObjectName); err != nil {
		log.WithError(err).WithField("object", record.ObjectName).Warn("Failed to delete qr blob")
	}
	logoObject := strings.TrimSuffix(record.ObjectName, "."+record.Format) + "_logo." + record.Format
	if err := svc.blobs.RemoveObject(ctx, logoObject); err != nil {
		log.WithError(err).WithField("object", logoObject).Debug("No logo companion to delete")
	}

	return nil
}

func (svc *QrCodeService) getRecord(ctx context.Context, hash string) (*qrRecord, error) {
	raw, err := svc.kv.Get(ctx, qrMetaPrefix+hash)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var record qrRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		// Corrupt metadata reads as absent; the next build repopulates it.
		return nil, nil
	}
	return &record, nil
}

func (svc *QrCodeService) runJobWorker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-svc.workerStop:
			return
		case <-ticker.C:
			svc.drainJobs()
		}
	}
}

func (svc *QrCodeService) drainJobs() {
	ctx := context.Background()

	for {
		raw, err := svc.kv.RPop(ctx, qrJobQueueKey)
		if err != nil {
			log.WithError(err).Warn("Failed to pop qr job")
			return
		}
		if raw == "" {
			return
		}

		var job qrJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.WithError(err).Warn("Discarding malformed qr job")
			continue
		}

		if _, err := svc.BuildAndCache(ctx, job.SourceURL, job.Format, job.Size, job.UserID); err != nil {
			log.WithError(err).WithField("url", job.SourceURL).Error("Deferred qr build failed")
		}
	}
}

func recordToResponse(record *qrRecord) *dto.QrCodeResponse {
	return &dto.QrCodeResponse{
		Hash:      record.Hash,
		URL:       record.ImageURL,
		SourceURL: record.SourceURL,
		Format:    record.Format,
		Size:      record.Size,
		CreatedAt: record.CreatedAt,
	}
}

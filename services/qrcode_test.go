package services

import (
	"context"
	"errors"
	"testing"

	"github.com/biolink-hub/biolink_api/shared"
)

type fakeBlobStore struct {
	uploads   int
	removed   []string
	uploadErr error
}

func (f *fakeBlobStore) UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return "https://cdn.test/" + objectName, nil
}

func (f *fakeBlobStore) RemoveObject(ctx context.Context, objectName string) error {
	f.removed = append(f.removed, objectName)
	return nil
}

func newQrForTest(kv KeyValueStore, blobs blobStore) *QrCodeService {
	return &QrCodeService{kv: kv, blobs: blobs}
}

func TestCanonicalizeUrl(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"HTTP://EXAMPLE.COM/Path", "http://example.com/Path"},
		{"https://example.com/path/", "https://example.com/path"},
		{"https://example.com/path#section", "https://example.com/path"},
		{"https://example.com/path?b=2&a=1", "https://example.com/path?a=1&b=2"},
		{"  https://example.com  ", "https://example.com"},
	}

	for _, tc := range cases {
		got, err := CanonicalizeUrl(tc.in)
		if err != nil {
			t.Errorf("CanonicalizeUrl(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CanonicalizeUrl(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeUrl_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "https://"} {
		if _, err := CanonicalizeUrl(in); err == nil {
			t.Errorf("CanonicalizeUrl(%q): expected error", in)
		}
	}
}

func TestShortHash(t *testing.T) {
	hash := ShortHash("https://example.com|png|512")
	if len(hash) != 16 {
		t.Fatalf("expected a 16-char hash, got %q", hash)
	}
	if hash != ShortHash("https://example.com|png|512") {
		t.Fatal("expected the hash to be deterministic")
	}
}

func TestQrBuildAndCache_EquivalentUrlsShareOneUpload(t *testing.T) {
	kv := newFakeKV()
	blobs := &fakeBlobStore{}
	svc := newQrForTest(kv, blobs)
	ctx := context.Background()

	first, err := svc.BuildAndCache(ctx, "HTTPS://Example.com/page?b=2&a=1", "", 0, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	second, err := svc.BuildAndCache(ctx, "example.com/page/?a=1&b=2#frag", "", 0, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	if first.Hash != second.Hash {
		t.Fatalf("expected equivalent URLs to share a hash: %q vs %q", first.Hash, second.Hash)
	}
	if blobs.uploads != 1 {
		t.Fatalf("expected a single upload, got %d", blobs.uploads)
	}
	if first.URL != second.URL {
		t.Fatalf("expected the cached image URL: %q vs %q", first.URL, second.URL)
	}
}

func TestQrBuildAndCache_SizeChangesHash(t *testing.T) {
	kv := newFakeKV()
	blobs := &fakeBlobStore{}
	svc := newQrForTest(kv, blobs)
	ctx := context.Background()

	small, err := svc.BuildAndCache(ctx, "https://example.com", "png", 256, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}
	large, err := svc.BuildAndCache(ctx, "https://example.com", "png", 1024, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	if small.Hash == large.Hash {
		t.Fatal("expected different sizes to produce different hashes")
	}
	if blobs.uploads != 2 {
		t.Fatalf("expected two uploads, got %d", blobs.uploads)
	}
}

func TestQrBuildAndCache_UploadFailureLeavesNoState(t *testing.T) {
	kv := newFakeKV()
	blobs := &fakeBlobStore{uploadErr: errors.New("storage down")}
	svc := newQrForTest(kv, blobs)
	ctx := context.Background()

	_, err := svc.BuildAndCache(ctx, "https://example.com", "png", 512, "user-1")
	if err == nil {
		t.Fatal("expected upload failure to surface")
	}

	if len(kv.data) != 0 {
		t.Fatalf("expected no metadata after a failed build, got %v", kv.data)
	}
	if len(kv.sets) != 0 {
		t.Fatalf("expected no owner-set entry after a failed build, got %v", kv.sets)
	}
}

func TestQrLookup_ScopedToOwner(t *testing.T) {
	kv := newFakeKV()
	svc := newQrForTest(kv, &fakeBlobStore{})
	ctx := context.Background()

	built, err := svc.BuildAndCache(ctx, "https://example.com", "png", 512, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	if _, err := svc.Lookup(ctx, built.Hash, "user-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err = svc.Lookup(ctx, built.Hash, "user-2")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 404 {
		t.Fatalf("expected not-found for a foreign owner, got %v", err)
	}
}

func TestQrList(t *testing.T) {
	kv := newFakeKV()
	svc := newQrForTest(kv, &fakeBlobStore{})
	ctx := context.Background()

	if _, err := svc.BuildAndCache(ctx, "https://example.com/a", "png", 512, "user-1"); err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}
	if _, err := svc.BuildAndCache(ctx, "https://example.com/b", "png", 512, "user-1"); err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}
	if _, err := svc.BuildAndCache(ctx, "https://example.com/c", "png", 512, "user-2"); err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	collection, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if collection.Total != 2 {
		t.Fatalf("expected 2 codes for user-1, got %d", collection.Total)
	}
}

func TestQrDelete(t *testing.T) {
	kv := newFakeKV()
	blobs := &fakeBlobStore{}
	svc := newQrForTest(kv, blobs)
	ctx := context.Background()

	built, err := svc.BuildAndCache(ctx, "https://example.com", "png", 512, "user-1")
	if err != nil {
		t.Fatalf("BuildAndCache: %v", err)
	}

	if err := svc.Delete(ctx, built.Hash, "user-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, exists := kv.data[qrMetaPrefix+built.Hash]; exists {
		t.Fatal("expected metadata to be removed")
	}
	if kv.sets[qrUserSetPrefix+"user-1"][built.Hash] {
		t.Fatal("expected the owner-set entry to be removed")
	}

	objectName := "qr/" + built.Hash + ".png"
	logoName := "qr/" + built.Hash + "_logo.png"
	if len(blobs.removed) != 2 || blobs.removed[0] != objectName || blobs.removed[1] != logoName {
		t.Fatalf("expected blob and logo companion removals, got %v", blobs.removed)
	}

	if _, err := svc.Lookup(ctx, built.Hash, "user-1"); err == nil {
		t.Fatal("expected the deleted code to be gone")
	}
}

func TestQrAsyncJob(t *testing.T) {
	kv := newFakeKV()
	blobs := &fakeBlobStore{}
	svc := newQrForTest(kv, blobs)
	ctx := context.Background()

	accepted, err := svc.EnqueueJob(ctx, "Example.com/page", "", 0, "user-1")
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if accepted.Status != "queued" {
		t.Fatalf("expected queued status, got %q", accepted.Status)
	}
	if len(kv.lists[qrJobQueueKey]) != 1 {
		t.Fatalf("expected 1 pending job, got %d", len(kv.lists[qrJobQueueKey]))
	}

	svc.drainJobs()

	if len(kv.lists[qrJobQueueKey]) != 0 {
		t.Fatal("expected the job queue to be drained")
	}
	if blobs.uploads != 1 {
		t.Fatalf("expected the worker to upload once, got %d", blobs.uploads)
	}

	built, err := svc.Lookup(ctx, accepted.Hash, "user-1")
	if err != nil {
		t.Fatalf("Lookup after drain: %v", err)
	}
	if built.Hash != accepted.Hash {
		t.Fatalf("expected the precomputed hash to resolve: %q vs %q", built.Hash, accepted.Hash)
	}
}

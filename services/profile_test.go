package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/biolink-hub/biolink_api/model"
	"github.com/biolink-hub/biolink_api/shared"
)

type fakeUserSource struct {
	user  *model.User
	calls int
}

func (f *fakeUserSource) GetByUsername(username string) (*model.User, error) {
	f.calls++
	if f.user != nil && f.user.Username == username {
		return f.user, nil
	}
	return nil, nil
}

type fakeBlockSource struct {
	links   []model.Link
	texts   []model.TextBlock
	socials []model.SocialLink
}

func (f *fakeBlockSource) ListScoped(dest interface{}, ownerID string) error {
	switch d := dest.(type) {
	case *[]model.Link:
		*d = f.links
	case *[]model.TextBlock:
		*d = f.texts
	case *[]model.SocialLink:
		*d = f.socials
	}
	return nil
}

func newProfileForTest(kv KeyValueStore, users userSource, blocks blockSource) *ProfileService {
	return &ProfileService{kv: kv, users: users, blocks: blocks, cacheTTL: 5 * time.Minute}
}

func TestProfile_GetPublicProfileCachesAndTags(t *testing.T) {
	kv := newFakeKV()
	users := &fakeUserSource{user: &model.User{ID: "u-1", Username: "demo", DisplayName: "Demo"}}
	blocks := &fakeBlockSource{
		links: []model.Link{
			{ID: "l-1", UserID: "u-1", Title: "Active", URL: "https://a.example.com", Active: true, Position: 1},
			{ID: "l-2", UserID: "u-1", Title: "Hidden", URL: "https://b.example.com", Active: false, Position: 0},
		},
		texts: []model.TextBlock{
			{ID: "t-1", UserID: "u-1", Content: "hello", Position: 0},
		},
	}
	svc := newProfileForTest(kv, users, blocks)
	ctx := context.Background()

	view, err := svc.GetPublicProfile(ctx, "demo")
	if err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}

	if len(view.Blocks) != 2 {
		t.Fatalf("expected 2 visible blocks, got %d", len(view.Blocks))
	}
	if view.Blocks[0].ID != "t-1" || view.Blocks[1].ID != "l-1" {
		t.Fatalf("expected blocks sorted by position, got %v, %v", view.Blocks[0].ID, view.Blocks[1].ID)
	}

	cacheKey := profileViewPrefix + "demo"
	if kv.data[cacheKey] == "" {
		t.Fatal("expected the rendered view to be cached")
	}
	if !kv.sets[profileTagPrefix+"u-1"][cacheKey] {
		t.Fatal("expected the cache key to be registered in the owner's tag set")
	}

	if _, err := svc.GetPublicProfile(ctx, "demo"); err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}
	if users.calls != 1 {
		t.Fatalf("expected the second read to hit the cache, got %d repository reads", users.calls)
	}
}

func TestProfile_GetPublicProfileNotFound(t *testing.T) {
	svc := newProfileForTest(newFakeKV(), &fakeUserSource{}, &fakeBlockSource{})

	_, err := svc.GetPublicProfile(context.Background(), "ghost")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 404 {
		t.Fatalf("expected not-found for an unknown username, got %v", err)
	}
}

func TestProfile_InvalidateDropsCachedViews(t *testing.T) {
	kv := newFakeKV()
	svc := newProfileForTest(kv, &fakeUserSource{}, &fakeBlockSource{})
	ctx := context.Background()

	cacheKey := profileViewPrefix + "demo"
	tagKey := profileTagPrefix + "u-1"
	if err := kv.Set(ctx, cacheKey, `{"username":"demo"}`, 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.SAdd(ctx, tagKey, cacheKey); err != nil {
		t.Fatalf("SAdd: %v", err)
	}

	svc.Invalidate(ctx, "u-1")

	if _, exists := kv.data[cacheKey]; exists {
		t.Fatal("expected the cached view to be dropped")
	}
	if _, exists := kv.sets[tagKey]; exists {
		t.Fatal("expected the tag set to be dropped")
	}
}

func TestProfile_InvalidateForcesRebuild(t *testing.T) {
	kv := newFakeKV()
	users := &fakeUserSource{user: &model.User{ID: "u-1", Username: "demo"}}
	svc := newProfileForTest(kv, users, &fakeBlockSource{})
	ctx := context.Background()

	if _, err := svc.GetPublicProfile(ctx, "demo"); err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}

	svc.Invalidate(ctx, "u-1")

	if _, err := svc.GetPublicProfile(ctx, "demo"); err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}
	if users.calls != 2 {
		t.Fatalf("expected invalidation to force a rebuild, got %d repository reads", users.calls)
	}
}

func TestProfile_RecordProfileView(t *testing.T) {
	kv := newFakeKV()
	users := &fakeUserSource{user: &model.User{ID: "u-1", Username: "demo"}}
	svc := newProfileForTest(kv, users, &fakeBlockSource{})
	svc.eventSvc = &EventQueueService{kv: kv}

	if err := svc.RecordProfileView(context.Background(), "demo", "1.2.3.4", "", ""); err != nil {
		t.Fatalf("RecordProfileView: %v", err)
	}

	queue := kv.lists[eventQueueKey]
	if len(queue) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(queue))
	}
	var event struct {
		Type      string `json:"type"`
		SubjectID string `json:"subject_id"`
	}
	if err := json.Unmarshal([]byte(queue[0]), &event); err != nil {
		t.Fatalf("queued payload is not valid JSON: %v", err)
	}
	if event.Type != shared.EventTypeProfileView || event.SubjectID != "u-1" {
		t.Fatalf("unexpected queued event: %+v", event)
	}
}

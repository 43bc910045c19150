package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pastebin-lite/pastebin-lite/models"
)

// TestDynamoStoreInterfaceCompliance verifies DynamoStore implements
// PasteStore at compile time.
func TestDynamoStoreInterfaceCompliance(t *testing.T) {
	var _ PasteStore = (*DynamoStore)(nil)
}

func TestPasteItemRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(90 * time.Minute)

	paste := &models.Paste{
		ID:        "dyn1",
		Content:   "dynamo content",
		CreatedAt: created,
		ExpiresAt: &expires,
		MaxViews:  intPtr(4),
		ViewCount: 2,
	}

	got := itemToPaste(pasteToItem(paste))

	if got.ID != paste.ID {
		t.Errorf("id = %q, want %q", got.ID, paste.ID)
	}
	if got.Content != paste.Content {
		t.Errorf("content = %q, want %q", got.Content, paste.Content)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, expires)
	}
	if got.MaxViews == nil || *got.MaxViews != 4 {
		t.Errorf("max_views = %v, want 4", got.MaxViews)
	}
	if got.ViewCount != 2 {
		t.Errorf("view_count = %d, want 2", got.ViewCount)
	}
}

func TestPasteItemUnboundedOmitsLimits(t *testing.T) {
	paste := &models.Paste{
		ID:        "unbounded",
		Content:   "x",
		CreatedAt: time.Now(),
	}

	item := pasteToItem(paste)
	if _, ok := item["expires_at"]; ok {
		t.Error("expires_at attribute present for paste without expiry")
	}
	if _, ok := item["ttl"]; ok {
		t.Error("ttl attribute present for paste without expiry")
	}
	if _, ok := item["max_views"]; ok {
		t.Error("max_views attribute present for unlimited paste")
	}

	got := itemToPaste(item)
	if got.ExpiresAt != nil || got.MaxViews != nil {
		t.Errorf("round trip invented limits: %+v", got)
	}
}

func TestPasteItemTTLIsEpochSeconds(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 500e6, time.UTC)
	paste := &models.Paste{ID: "ttl", Content: "x", CreatedAt: time.Now(), ExpiresAt: &expires}

	item := pasteToItem(paste)
	ttl, ok := item["ttl"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatal("ttl attribute missing")
	}
	want := fmt.Sprintf("%d", expires.Unix())
	if ttl.Value != want {
		t.Errorf("ttl = %s, want %s", ttl.Value, want)
	}
}

func TestIsConditionFailed(t *testing.T) {
	if !isConditionFailed(&types.ConditionalCheckFailedException{}) {
		t.Error("expected true for ConditionalCheckFailedException")
	}
	wrapped := fmt.Errorf("operation error DynamoDB: %w", &types.ConditionalCheckFailedException{})
	if !isConditionFailed(wrapped) {
		t.Error("expected true for wrapped ConditionalCheckFailedException")
	}
	if isConditionFailed(errors.New("boom")) {
		t.Error("expected false for unrelated error")
	}
	if isConditionFailed(nil) {
		t.Error("expected false for nil")
	}
}

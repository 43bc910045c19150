package storage

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// TestMongoStoreInterfaceCompliance verifies MongoStore implements
// PasteStore at compile time.
func TestMongoStoreInterfaceCompliance(t *testing.T) {
	var _ PasteStore = (*MongoStore)(nil)
}

func TestAvailableFilterShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	filter := availableFilter("abc", now)

	if filter["_id"] != "abc" {
		t.Errorf("_id = %v, want abc", filter["_id"])
	}

	clauses, ok := filter["$and"].(bson.A)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected two $and clauses, got %v", filter["$and"])
	}

	// Both clauses must be $or alternations so a missing limit always
	// matches.
	for i, clause := range clauses {
		m, ok := clause.(bson.M)
		if !ok {
			t.Fatalf("clause %d is not a document: %v", i, clause)
		}
		alts, ok := m["$or"].(bson.A)
		if !ok || len(alts) != 2 {
			t.Errorf("clause %d: expected two $or alternatives, got %v", i, m)
		}
	}
}

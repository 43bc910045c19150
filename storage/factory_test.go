package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/pastebin-lite/pastebin-lite/config"
)

func TestNewStoreMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewStore(context.Background(), &config.Config{Backend: "memory"}, logger)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", store)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := NewStore(context.Background(), &config.Config{Backend: "carrier-pigeon"}, logger); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

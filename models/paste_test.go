package models

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestCheckAvailability(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		paste     *Paste
		available bool
		reason    Reason
	}{
		{
			name:   "nil paste",
			paste:  nil,
			reason: ReasonNotFound,
		},
		{
			name:      "unbounded paste",
			paste:     &Paste{ID: "a"},
			available: true,
		},
		{
			name:      "not yet expired",
			paste:     &Paste{ID: "a", ExpiresAt: &future},
			available: true,
		},
		{
			name:   "expired in the past",
			paste:  &Paste{ID: "a", ExpiresAt: &past},
			reason: ReasonExpired,
		},
		{
			name:   "expiry boundary is exclusive",
			paste:  &Paste{ID: "a", ExpiresAt: &now},
			reason: ReasonExpired,
		},
		{
			name:      "views remaining",
			paste:     &Paste{ID: "a", MaxViews: intPtr(3), ViewCount: 2},
			available: true,
		},
		{
			name:   "view budget spent",
			paste:  &Paste{ID: "a", MaxViews: intPtr(3), ViewCount: 3},
			reason: ReasonViewsSpent,
		},
		{
			name:   "expiry checked before views",
			paste:  &Paste{ID: "a", ExpiresAt: &past, MaxViews: intPtr(3), ViewCount: 3},
			reason: ReasonExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAvailability(tt.paste, now)
			if got.Available != tt.available {
				t.Errorf("Available = %v, want %v", got.Available, tt.available)
			}
			if !tt.available && got.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestRemainingViews(t *testing.T) {
	p := &Paste{ID: "a"}
	if p.RemainingViews() != nil {
		t.Error("expected nil remaining views for unlimited paste")
	}

	p.MaxViews = intPtr(5)
	p.ViewCount = 2
	if got := p.RemainingViews(); got == nil || *got != 3 {
		t.Errorf("RemainingViews() = %v, want 3", got)
	}

	// Clamp at zero even if the count somehow overran the limit.
	p.ViewCount = 7
	if got := p.RemainingViews(); got == nil || *got != 0 {
		t.Errorf("RemainingViews() = %v, want 0", got)
	}
}

func TestCloneDetachesPointers(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	p := &Paste{ID: "a", ExpiresAt: &expires, MaxViews: intPtr(2)}

	c := p.Clone()
	*c.MaxViews = 10
	*c.ExpiresAt = expires.Add(time.Hour)

	if *p.MaxViews != 2 {
		t.Errorf("clone mutated original MaxViews: %d", *p.MaxViews)
	}
	if !p.ExpiresAt.Equal(expires) {
		t.Errorf("clone mutated original ExpiresAt: %v", p.ExpiresAt)
	}
}

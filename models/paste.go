package models

import (
	"time"
)

// Paste represents a stored paste with its expiry limits.
type Paste struct {
	ID        string     `json:"id" bson:"_id"`
	Content   string     `json:"-" bson:"content"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	MaxViews  *int       `json:"max_views,omitempty" bson:"max_views,omitempty"`
	ViewCount int        `json:"view_count" bson:"view_count"`
}

// Reason explains why a paste is not available. Reasons are internal:
// callers of the HTTP API only ever see a single "not available" outcome.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonNotFound   Reason = "not_found"
	ReasonExpired    Reason = "expired"
	ReasonViewsSpent Reason = "view_limit"
)

// Availability is the result of evaluating a paste against the current time.
type Availability struct {
	Available bool
	Reason    Reason
}

// CheckAvailability reports whether p may still be served at time now.
// The view-count check uses the pre-increment count: a paste whose count
// already equals its limit is gone, while the read that raises the count
// to the limit is still valid.
func CheckAvailability(p *Paste, now time.Time) Availability {
	if p == nil {
		return Availability{Reason: ReasonNotFound}
	}
	if p.Expired(now) {
		return Availability{Reason: ReasonExpired}
	}
	if p.ViewsExhausted() {
		return Availability{Reason: ReasonViewsSpent}
	}
	return Availability{Available: true}
}

// Expired reports whether the paste's time-based expiry has passed at now.
func (p *Paste) Expired(now time.Time) bool {
	if p.ExpiresAt == nil {
		return false
	}
	return !now.Before(*p.ExpiresAt)
}

// ViewsExhausted reports whether the view budget is already spent.
func (p *Paste) ViewsExhausted() bool {
	if p.MaxViews == nil {
		return false
	}
	return p.ViewCount >= *p.MaxViews
}

// RemainingViews returns how many views are left, clamped to zero.
// Nil means the paste has no view limit.
func (p *Paste) RemainingViews() *int {
	if p.MaxViews == nil {
		return nil
	}
	remaining := *p.MaxViews - p.ViewCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// Clone returns a copy of the paste, detached from the original.
func (p *Paste) Clone() *Paste {
	if p == nil {
		return nil
	}
	c := *p
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		c.ExpiresAt = &t
	}
	if p.MaxViews != nil {
		m := *p.MaxViews
		c.MaxViews = &m
	}
	return &c
}

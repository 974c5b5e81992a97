package store

import (
	"context"
	"errors"
	"time"

	"github.com/picklepulse/pulse/internal/model"
)

// ErrNotFound is returned by update and delete operations that target an
// identifier with no matching record in the caller's scope.
var ErrNotFound = errors.New("record not found")

// ErrNoOwner is returned by mutating guest-store operations when no guest
// identifier is active. Read operations return empty results instead.
var ErrNoOwner = errors.New("no active owner")

// Store is the dual-mode persistence contract. The guest implementation is
// backed by a local SQLite database scoped by guest identifier; the remote
// implementation talks to the hosted service scoped by the authenticated
// principal. Components depend only on this interface and pick an
// implementation per call from the current identity mode.
type Store interface {
	// === Check-ins ===

	// ListCheckIns returns all check-ins for the current owner, newest
	// date first.
	ListCheckIns(ctx context.Context) ([]model.CheckIn, error)

	// ListCheckInsInRange returns check-ins whose date falls within
	// [start, end], inclusive at day granularity.
	ListCheckInsInRange(ctx context.Context, start, end time.Time) ([]model.CheckIn, error)

	// UpsertCheckIn writes a check-in for entry.Date. If a record already
	// exists for (owner, date) its metric fields are overwritten in place;
	// otherwise a new record is created. The stored record is returned.
	UpsertCheckIn(ctx context.Context, entry model.CheckIn) (*model.CheckIn, error)

	// HasCheckInOn reports whether a check-in exists for the given
	// calendar day.
	HasCheckInOn(ctx context.Context, day time.Time) (bool, error)

	// === Skills ===

	ListSkills(ctx context.Context) ([]model.Skill, error)
	CreateSkill(ctx context.Context, skill model.Skill) (*model.Skill, error)

	// UpdateSkill merges the patch into the existing skill and bumps its
	// update timestamp. Returns ErrNotFound if no such skill exists.
	UpdateSkill(ctx context.Context, id string, patch model.SkillPatch) (*model.Skill, error)

	// DeleteSkill removes a skill by id, reporting whether a record was
	// found and removed.
	DeleteSkill(ctx context.Context, id string) (bool, error)

	// === Performance log ===

	CreatePerformanceEntry(ctx context.Context, entry model.PerformanceEntry) (*model.PerformanceEntry, error)

	// RecentPerformanceEntries returns up to limit entries, newest date
	// first.
	RecentPerformanceEntries(ctx context.Context, limit int) ([]model.PerformanceEntry, error)
}

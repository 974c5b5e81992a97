package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/picklepulse/pulse/internal/model"
)

// OwnerFunc resolves the identifier under which records are scoped. The
// second return value is false when no owner is active (e.g., guest mode
// was never entered or has been exited).
type OwnerFunc func() (string, bool)

// GuestStore implements the Store interface using a local SQLite database.
// Every row carries an owner_id column holding the guest identifier, so a
// fresh guest session under a new identifier starts from an empty view
// without touching previous sessions' rows.
type GuestStore struct {
	db    *sqlx.DB
	owner OwnerFunc
}

// NewGuestStore opens (or creates) a SQLite database at dbPath, enables
// WAL mode, and runs any pending schema migrations. The owner resolver is
// consulted on every call so the store follows guest identifier changes.
func NewGuestStore(dbPath string, owner OwnerFunc) (*GuestStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps :memory: databases coherent and sidesteps
	// SQLITE_BUSY under the client's light write load.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &GuestStore{db: db, owner: owner}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *GuestStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *GuestStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ListCheckIns retrieves all check-ins for the active guest, newest first.
// Returns an empty slice when no guest identifier is set.
func (s *GuestStore) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM health_checkins WHERE owner_id = ? ORDER BY date DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	var entries []model.CheckIn
	for rows.Next() {
		entry, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListCheckInsInRange retrieves check-ins between start and end inclusive,
// compared at day granularity.
func (s *GuestStore) ListCheckInsInRange(
	ctx context.Context,
	start, end time.Time,
) ([]model.CheckIn, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM health_checkins
		WHERE owner_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC`,
		ownerID,
		start.Format(model.DateLayout),
		end.Format(model.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins in range: %w", err)
	}
	defer rows.Close()

	var entries []model.CheckIn
	for rows.Next() {
		entry, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpsertCheckIn writes a check-in for entry.Date. The UNIQUE(owner_id, date)
// constraint plus ON CONFLICT makes the insert-or-overwrite atomic, so two
// submissions for the same day can never produce duplicate rows.
func (s *GuestStore) UpsertCheckIn(
	ctx context.Context,
	entry model.CheckIn,
) (*model.CheckIn, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, ErrNoOwner
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	day := entry.Date.Format(model.DateLayout)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_checkins (
			id, owner_id, date, sleep_hours, hunger, soreness,
			performance_rating, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, date) DO UPDATE SET
			sleep_hours = excluded.sleep_hours,
			hunger = excluded.hunger,
			soreness = excluded.soreness,
			performance_rating = excluded.performance_rating`,
		entry.ID, ownerID, day,
		entry.SleepHours, entry.Hunger, entry.Soreness, entry.Performance,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting check-in for %s: %w", day, err)
	}

	// Read back the stored row: on overwrite the original id and
	// creation timestamp survive.
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM health_checkins WHERE owner_id = ? AND date = ?",
		ownerID, day,
	)
	stored, err := scanCheckInRow(row)
	if err != nil {
		return nil, fmt.Errorf("reading back check-in for %s: %w", day, err)
	}

	return &stored, nil
}

// HasCheckInOn reports whether a check-in exists for the given calendar day.
func (s *GuestStore) HasCheckInOn(ctx context.Context, day time.Time) (bool, error) {
	ownerID, ok := s.owner()
	if !ok {
		return false, nil
	}

	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM health_checkins WHERE owner_id = ? AND date = ?",
		ownerID, day.Format(model.DateLayout),
	)
	if err != nil {
		return false, fmt.Errorf("checking for check-in on %s: %w",
			day.Format(model.DateLayout), err)
	}

	return count > 0, nil
}

// ListSkills retrieves all skills for the active guest in insertion order.
func (s *GuestStore) ListSkills(ctx context.Context) ([]model.Skill, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM skills WHERE owner_id = ? ORDER BY created_at",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	var skills []model.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}

	return skills, rows.Err()
}

// CreateSkill inserts a new skill, assigning an id and timestamps.
func (s *GuestStore) CreateSkill(
	ctx context.Context,
	skill model.Skill,
) (*model.Skill, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, ErrNoOwner
	}

	if skill.ID == "" {
		skill.ID = uuid.New().String()
	}
	skill.OwnerID = ownerID
	now := time.Now().UTC()
	skill.CreatedAt = now
	skill.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skills (id, owner_id, name, section, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		skill.ID, skill.OwnerID, skill.Name, skill.Section,
		skill.CreatedAt, skill.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating skill: %w", err)
	}

	return &skill, nil
}

// UpdateSkill merges the patch into an existing skill and bumps its update
// timestamp. Returns ErrNotFound when the id does not exist for this owner.
func (s *GuestStore) UpdateSkill(
	ctx context.Context,
	id string,
	patch model.SkillPatch,
) (*model.Skill, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, ErrNoOwner
	}

	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM skills WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	skill, err := scanSkillRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading skill %s: %w", id, err)
	}

	if patch.Name != nil {
		skill.Name = *patch.Name
	}
	if patch.Section != nil {
		skill.Section = *patch.Section
	}
	skill.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE skills SET name = ?, section = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		skill.Name, skill.Section, skill.UpdatedAt, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating skill %s: %w", id, err)
	}

	return &skill, nil
}

// DeleteSkill removes a skill by id, reporting whether a row was removed.
func (s *GuestStore) DeleteSkill(ctx context.Context, id string) (bool, error) {
	ownerID, ok := s.owner()
	if !ok {
		return false, ErrNoOwner
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM skills WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting skill %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading delete result for skill %s: %w", id, err)
	}

	return affected > 0, nil
}

// CreatePerformanceEntry inserts a new performance log entry.
func (s *GuestStore) CreatePerformanceEntry(
	ctx context.Context,
	entry model.PerformanceEntry,
) (*model.PerformanceEntry, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, ErrNoOwner
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.OwnerID = ownerID
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_logs (id, owner_id, date, location, performance, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OwnerID, entry.Date.Format(model.DateLayout),
		entry.Location, entry.Performance, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating performance entry: %w", err)
	}

	return &entry, nil
}

// RecentPerformanceEntries returns up to limit entries, newest date first.
func (s *GuestStore) RecentPerformanceEntries(
	ctx context.Context,
	limit int,
) ([]model.PerformanceEntry, error) {
	ownerID, ok := s.owner()
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM performance_logs
		WHERE owner_id = ?
		ORDER BY date DESC
		LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying performance entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PerformanceEntry
	for rows.Next() {
		entry, err := scanPerformanceEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// scanCheckIn scans a check-in row from a sqlx.Rows result set.
func scanCheckIn(rows *sqlx.Rows) (model.CheckIn, error) {
	var (
		entry     model.CheckIn
		date      string
		createdAt time.Time
	)

	err := rows.Scan(
		&entry.ID, &entry.OwnerID, &date,
		&entry.SleepHours, &entry.Hunger, &entry.Soreness, &entry.Performance,
		&createdAt,
	)
	if err != nil {
		return model.CheckIn{}, fmt.Errorf("scanning check-in row: %w", err)
	}

	return finishCheckIn(entry, date, createdAt)
}

// scanCheckInRow scans a single check-in row from a sqlx.Row.
func scanCheckInRow(row *sqlx.Row) (model.CheckIn, error) {
	var (
		entry     model.CheckIn
		date      string
		createdAt time.Time
	)

	err := row.Scan(
		&entry.ID, &entry.OwnerID, &date,
		&entry.SleepHours, &entry.Hunger, &entry.Soreness, &entry.Performance,
		&createdAt,
	)
	if err != nil {
		return model.CheckIn{}, err
	}

	return finishCheckIn(entry, date, createdAt)
}

func finishCheckIn(entry model.CheckIn, date string, createdAt time.Time) (model.CheckIn, error) {
	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.CheckIn{}, fmt.Errorf("parsing check-in date %q: %w", date, err)
	}
	entry.Date = parsed
	entry.CreatedAt = createdAt
	return entry, nil
}

// scanSkill scans a skill row from a sqlx.Rows result set.
func scanSkill(rows *sqlx.Rows) (model.Skill, error) {
	var skill model.Skill

	err := rows.Scan(
		&skill.ID, &skill.OwnerID, &skill.Name, &skill.Section,
		&skill.CreatedAt, &skill.UpdatedAt,
	)
	if err != nil {
		return model.Skill{}, fmt.Errorf("scanning skill row: %w", err)
	}

	return skill, nil
}

// scanSkillRow scans a single skill row from a sqlx.Row.
func scanSkillRow(row *sqlx.Row) (model.Skill, error) {
	var skill model.Skill

	err := row.Scan(
		&skill.ID, &skill.OwnerID, &skill.Name, &skill.Section,
		&skill.CreatedAt, &skill.UpdatedAt,
	)
	if err != nil {
		return model.Skill{}, err
	}

	return skill, nil
}

// scanPerformanceEntry scans a performance log row from a sqlx.Rows result set.
func scanPerformanceEntry(rows *sqlx.Rows) (model.PerformanceEntry, error) {
	var (
		entry model.PerformanceEntry
		date  string
	)

	err := rows.Scan(
		&entry.ID, &entry.OwnerID, &date,
		&entry.Location, &entry.Performance, &entry.Notes,
		&entry.CreatedAt,
	)
	if err != nil {
		return model.PerformanceEntry{}, fmt.Errorf("scanning performance row: %w", err)
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.PerformanceEntry{}, fmt.Errorf("parsing performance date %q: %w", date, err)
	}
	entry.Date = parsed

	return entry, nil
}

package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/store"
)

// PrincipalFunc resolves the currently authenticated account id. It
// returns ErrUnauthenticated when no session is active.
type PrincipalFunc func() (string, error)

// RemoteStore implements store.Store against the hosted row store. Every
// operation resolves the principal first and scopes its query to it; row
// ownership is additionally enforced server-side.
type RemoteStore struct {
	client    *Client
	principal PrincipalFunc
}

// NewStore creates a remote store using the given client and principal
// resolver.
func NewStore(client *Client, principal PrincipalFunc) *RemoteStore {
	return &RemoteStore{client: client, principal: principal}
}

var _ store.Store = (*RemoteStore)(nil)

// ListCheckIns retrieves all of the principal's check-ins, newest first.
func (s *RemoteStore) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + userID},
		"order":   {"date.desc"},
	}

	var rows []checkInRow
	if err := s.client.Get(ctx, tableHealthStats, query, &rows); err != nil {
		return nil, fmt.Errorf("listing check-ins: %w", err)
	}

	return checkInsToModels(rows)
}

// ListCheckInsInRange retrieves the principal's check-ins between start
// and end inclusive, compared at day granularity.
func (s *RemoteStore) ListCheckInsInRange(
	ctx context.Context,
	start, end time.Time,
) ([]model.CheckIn, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + userID},
		"date":    {"gte." + start.Format(model.DateLayout), "lte." + end.Format(model.DateLayout)},
		"order":   {"date.desc"},
	}

	var rows []checkInRow
	if err := s.client.Get(ctx, tableHealthStats, query, &rows); err != nil {
		return nil, fmt.Errorf("listing check-ins in range: %w", err)
	}

	return checkInsToModels(rows)
}

// UpsertCheckIn writes a check-in for entry.Date using the store's atomic
// upsert on the (user_id, date) unique constraint, so concurrent
// submissions for the same day cannot produce duplicate rows.
func (s *RemoteStore) UpsertCheckIn(
	ctx context.Context,
	entry model.CheckIn,
) (*model.CheckIn, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	query := url.Values{"on_conflict": {"user_id,date"}}
	payload := []newCheckInRow{{
		UserID:            userID,
		Date:              entry.Date.Format(model.DateLayout),
		SleepHours:        entry.SleepHours,
		Hunger:            entry.Hunger,
		Soreness:          entry.Soreness,
		PerformanceRating: entry.Performance,
	}}

	var rows []checkInRow
	err = s.client.Post(ctx, tableHealthStats, query,
		"resolution=merge-duplicates,return=representation", payload, &rows)
	if err != nil {
		return nil, fmt.Errorf("upserting check-in: %w", err)
	}
	if len(rows) == 0 {
		return nil, &StoreError{
			Op:  "upsert check-in",
			Err: fmt.Errorf("upsert returned no representation"),
		}
	}

	stored, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("decoding upserted check-in: %w", err)
	}

	return &stored, nil
}

// HasCheckInOn reports whether the principal has a check-in for the given
// calendar day.
func (s *RemoteStore) HasCheckInOn(ctx context.Context, day time.Time) (bool, error) {
	userID, err := s.principal()
	if err != nil {
		return false, err
	}

	query := url.Values{
		"select":  {"id"},
		"user_id": {"eq." + userID},
		"date":    {"eq." + day.Format(model.DateLayout)},
		"limit":   {"1"},
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := s.client.Get(ctx, tableHealthStats, query, &rows); err != nil {
		return false, fmt.Errorf("checking today's entry: %w", err)
	}

	return len(rows) > 0, nil
}

// ListSkills retrieves all of the principal's skills in insertion order.
func (s *RemoteStore) ListSkills(ctx context.Context) ([]model.Skill, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + userID},
		"order":   {"created_at.asc"},
	}

	var rows []skillRow
	if err := s.client.Get(ctx, tableSkills, query, &rows); err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}

	skills := make([]model.Skill, 0, len(rows))
	for _, r := range rows {
		skills = append(skills, r.toModel())
	}

	return skills, nil
}

// CreateSkill inserts a new skill row for the principal.
func (s *RemoteStore) CreateSkill(
	ctx context.Context,
	skill model.Skill,
) (*model.Skill, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	payload := []newSkillRow{{
		UserID:  userID,
		Name:    skill.Name,
		Section: skill.Section,
	}}

	var rows []skillRow
	err = s.client.Post(ctx, tableSkills, nil, "return=representation", payload, &rows)
	if err != nil {
		return nil, fmt.Errorf("creating skill: %w", err)
	}
	if len(rows) == 0 {
		return nil, &StoreError{
			Op:  "create skill",
			Err: fmt.Errorf("insert returned no representation"),
		}
	}

	created := rows[0].toModel()
	return &created, nil
}

// UpdateSkill patches an existing skill row. Returns store.ErrNotFound
// when no row matches the id within the principal's scope.
func (s *RemoteStore) UpdateSkill(
	ctx context.Context,
	id string,
	patch model.SkillPatch,
) (*model.Skill, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Section != nil {
		body["section"] = *patch.Section
	}
	body["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	query := url.Values{
		"id":      {"eq." + id},
		"user_id": {"eq." + userID},
	}

	var rows []skillRow
	err = s.client.Patch(ctx, tableSkills, query, "return=representation", body, &rows)
	if err != nil {
		return nil, fmt.Errorf("updating skill %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}

	updated := rows[0].toModel()
	return &updated, nil
}

// DeleteSkill removes a skill row, reporting whether a row was removed.
// The returned representation tells us whether anything matched.
func (s *RemoteStore) DeleteSkill(ctx context.Context, id string) (bool, error) {
	userID, err := s.principal()
	if err != nil {
		return false, err
	}

	query := url.Values{
		"id":      {"eq." + id},
		"user_id": {"eq." + userID},
	}

	var rows []skillRow
	err = s.client.Delete(ctx, tableSkills, query, "return=representation", &rows)
	if err != nil {
		return false, fmt.Errorf("deleting skill %s: %w", id, err)
	}

	return len(rows) > 0, nil
}

// CreatePerformanceEntry inserts a new performance log row.
func (s *RemoteStore) CreatePerformanceEntry(
	ctx context.Context,
	entry model.PerformanceEntry,
) (*model.PerformanceEntry, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	payload := []newPerformanceRow{{
		UserID:      userID,
		Date:        entry.Date.Format(model.DateLayout),
		Location:    entry.Location,
		Performance: entry.Performance,
		Notes:       entry.Notes,
	}}

	var rows []performanceRow
	err = s.client.Post(ctx, tablePerformanceLogs, nil, "return=representation", payload, &rows)
	if err != nil {
		return nil, fmt.Errorf("creating performance entry: %w", err)
	}
	if len(rows) == 0 {
		return nil, &StoreError{
			Op:  "create performance entry",
			Err: fmt.Errorf("insert returned no representation"),
		}
	}

	created, err := rows[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("decoding performance entry: %w", err)
	}

	return &created, nil
}

// RecentPerformanceEntries returns up to limit entries, newest date first.
func (s *RemoteStore) RecentPerformanceEntries(
	ctx context.Context,
	limit int,
) ([]model.PerformanceEntry, error) {
	userID, err := s.principal()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + userID},
		"order":   {"date.desc"},
		"limit":   {strconv.Itoa(limit)},
	}

	var rows []performanceRow
	if err := s.client.Get(ctx, tablePerformanceLogs, query, &rows); err != nil {
		return nil, fmt.Errorf("listing performance entries: %w", err)
	}

	entries := make([]model.PerformanceEntry, 0, len(rows))
	for _, r := range rows {
		entry, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("decoding performance entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func checkInsToModels(rows []checkInRow) ([]model.CheckIn, error) {
	entries := make([]model.CheckIn, 0, len(rows))
	for _, r := range rows {
		entry, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("decoding check-in row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/store"
	"github.com/picklepulse/pulse/tests/testutil"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parsing day %q: %v", s, err)
	}
	return d
}

func TestUpsertCheckInOverwritesSameDay(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertCheckIn(ctx, model.CheckIn{
		Date:        day(t, "2026-08-20"),
		SleepHours:  6.5,
		Hunger:      2,
		Soreness:    4,
		Performance: 3,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := s.UpsertCheckIn(ctx, model.CheckIn{
		Date:        day(t, "2026-08-20"),
		SleepHours:  8,
		Hunger:      5,
		Soreness:    1,
		Performance: 5,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	// The original row survives; only the metrics change.
	if second.ID != first.ID {
		t.Errorf("expected id %s to survive overwrite, got %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("expected created_at %v to survive overwrite, got %v",
			first.CreatedAt, second.CreatedAt)
	}
	if second.SleepHours != 8 || second.Performance != 5 {
		t.Errorf("expected overwritten metrics, got %+v", second)
	}

	all, err := s.ListCheckIns(ctx)
	if err != nil {
		t.Fatalf("listing check-ins: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly 1 row after two same-day upserts, got %d", len(all))
	}
}

func TestListCheckInsInRangeInclusive(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2026-08-10", "2026-08-15", "2026-08-20"} {
		if _, err := s.UpsertCheckIn(ctx, model.CheckIn{Date: day(t, d)}); err != nil {
			t.Fatalf("seeding %s: %v", d, err)
		}
	}

	entries, err := s.ListCheckInsInRange(ctx, day(t, "2026-08-10"), day(t, "2026-08-15"))
	if err != nil {
		t.Fatalf("listing range: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in inclusive range, got %d", len(entries))
	}
	// Newest first.
	if got := entries[0].Date.Format(model.DateLayout); got != "2026-08-15" {
		t.Errorf("expected newest entry first, got %s", got)
	}
}

func TestHasCheckInOn(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	checked, err := s.HasCheckInOn(ctx, day(t, "2026-08-20"))
	if err != nil {
		t.Fatalf("checking empty store: %v", err)
	}
	if checked {
		t.Error("expected no check-in before upsert")
	}

	if _, err := s.UpsertCheckIn(ctx, model.CheckIn{Date: day(t, "2026-08-20")}); err != nil {
		t.Fatalf("upserting: %v", err)
	}

	checked, err = s.HasCheckInOn(ctx, day(t, "2026-08-20"))
	if err != nil {
		t.Fatalf("checking after upsert: %v", err)
	}
	if !checked {
		t.Error("expected check-in after upsert")
	}
}

func TestOwnerIsolation(t *testing.T) {
	owner := "guest_one"
	s := testutil.NewTestStoreWithOwner(t, func() (string, bool) {
		return owner, true
	})
	ctx := context.Background()

	if _, err := s.UpsertCheckIn(ctx, model.CheckIn{Date: day(t, "2026-08-20")}); err != nil {
		t.Fatalf("upserting as guest_one: %v", err)
	}
	if _, err := s.CreateSkill(ctx, model.Skill{Name: "Dinks", Section: model.SectionPlanning}); err != nil {
		t.Fatalf("creating skill as guest_one: %v", err)
	}

	// A different guest identifier sees none of the first guest's rows.
	owner = "guest_two"

	checkins, err := s.ListCheckIns(ctx)
	if err != nil {
		t.Fatalf("listing as guest_two: %v", err)
	}
	if len(checkins) != 0 {
		t.Errorf("expected guest_two to see 0 check-ins, got %d", len(checkins))
	}

	skills, err := s.ListSkills(ctx)
	if err != nil {
		t.Fatalf("listing skills as guest_two: %v", err)
	}
	if len(skills) != 0 {
		t.Errorf("expected guest_two to see 0 skills, got %d", len(skills))
	}
}

func TestNoOwnerBehavior(t *testing.T) {
	s := testutil.NewTestStoreWithOwner(t, func() (string, bool) {
		return "", false
	})
	ctx := context.Background()

	// Reads degrade to empty results.
	entries, err := s.ListCheckIns(ctx)
	if err != nil {
		t.Fatalf("listing without owner: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list without owner, got %d entries", len(entries))
	}

	checked, err := s.HasCheckInOn(ctx, day(t, "2026-08-20"))
	if err != nil || checked {
		t.Errorf("expected (false, nil) without owner, got (%v, %v)", checked, err)
	}

	// Mutations fail loudly.
	if _, err := s.UpsertCheckIn(ctx, model.CheckIn{Date: day(t, "2026-08-20")}); !errors.Is(err, store.ErrNoOwner) {
		t.Errorf("expected ErrNoOwner from upsert, got %v", err)
	}
	if _, err := s.CreateSkill(ctx, model.Skill{Name: "x", Section: model.SectionPlanning}); !errors.Is(err, store.ErrNoOwner) {
		t.Errorf("expected ErrNoOwner from create skill, got %v", err)
	}
}

func TestSkillCRUD(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created, err := s.CreateSkill(ctx, model.Skill{
		Name:    "Third shot drop",
		Section: model.SectionPlanning,
	})
	if err != nil {
		t.Fatalf("creating skill: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated skill id")
	}

	newName := "Third shot drive"
	newSection := model.SectionPracticing
	updated, err := s.UpdateSkill(ctx, created.ID, model.SkillPatch{
		Name:    &newName,
		Section: &newSection,
	})
	if err != nil {
		t.Fatalf("updating skill: %v", err)
	}
	if updated.Name != newName || updated.Section != newSection {
		t.Errorf("unexpected skill after update: %+v", updated)
	}

	if _, err := s.UpdateSkill(ctx, "missing-id", model.SkillPatch{Name: &newName}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing skill, got %v", err)
	}

	found, err := s.DeleteSkill(ctx, created.ID)
	if err != nil {
		t.Fatalf("deleting skill: %v", err)
	}
	if !found {
		t.Error("expected delete to report found")
	}

	// Deleting again reports not found, without error.
	found, err = s.DeleteSkill(ctx, created.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if found {
		t.Error("expected second delete to report not found")
	}
}

func TestRecentPerformanceEntries(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := s.CreatePerformanceEntry(ctx, model.PerformanceEntry{
			Date:        day(t, "2026-08-01").AddDate(0, 0, i),
			Location:    "Riverside courts",
			Performance: "Won 2 of 3",
		})
		if err != nil {
			t.Fatalf("creating entry %d: %v", i, err)
		}
	}

	entries, err := s.RecentPerformanceEntries(ctx, 10)
	if err != nil {
		t.Fatalf("listing entries: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected limit of 10 entries, got %d", len(entries))
	}
	if got := entries[0].Date.Format(model.DateLayout); got != "2026-08-13" {
		t.Errorf("expected newest entry first, got %s", got)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Date.After(entries[i-1].Date) {
			t.Fatalf("entries not sorted newest first at index %d", i)
		}
	}
}

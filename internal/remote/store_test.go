package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/store"
)

const testUserID = "11111111-2222-3333-4444-555555555555"

func testPrincipal() (string, error) {
	return testUserID, nil
}

// newTestStore wires a RemoteStore against an httptest server.
func newTestStore(t *testing.T, handler http.HandlerFunc) *RemoteStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", func() string { return "access-token" }, 5*time.Second)
	return NewStore(client, testPrincipal)
}

func TestUpsertCheckInRequest(t *testing.T) {
	var gotQuery map[string][]string
	var gotPrefer string
	var gotPayload []newCheckInRow

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/health_stats" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query()
		gotPrefer = r.Header.Get("Prefer")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]checkInRow{{
			ID:                "row-1",
			UserID:            testUserID,
			Date:              "2026-08-28",
			SleepHours:        7.5,
			Hunger:            4,
			Soreness:          2,
			PerformanceRating: 5,
			CreatedAt:         time.Now().UTC(),
		}})
	})

	date, _ := time.Parse(model.DateLayout, "2026-08-28")
	stored, err := s.UpsertCheckIn(context.Background(), model.CheckIn{
		Date:        date,
		SleepHours:  7.5,
		Hunger:      4,
		Soreness:    2,
		Performance: 5,
	})
	if err != nil {
		t.Fatalf("upserting: %v", err)
	}

	// The atomic upsert rides on the unique constraint plus merge.
	if got := gotQuery["on_conflict"]; len(got) != 1 || got[0] != "user_id,date" {
		t.Errorf("expected on_conflict=user_id,date, got %v", got)
	}
	if gotPrefer != "resolution=merge-duplicates,return=representation" {
		t.Errorf("unexpected Prefer header %q", gotPrefer)
	}
	if len(gotPayload) != 1 || gotPayload[0].UserID != testUserID || gotPayload[0].Date != "2026-08-28" {
		t.Errorf("unexpected payload %+v", gotPayload)
	}

	if stored.ID != "row-1" || stored.Performance != 5 {
		t.Errorf("unexpected stored check-in %+v", stored)
	}
}

func TestListCheckInsInRangeQuery(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("user_id"); got != "eq."+testUserID {
			t.Errorf("expected user_id filter, got %q", got)
		}
		dates := q["date"]
		if len(dates) != 2 || dates[0] != "gte.2026-08-21" || dates[1] != "lte.2026-08-28" {
			t.Errorf("unexpected date filters %v", dates)
		}
		if got := q.Get("order"); got != "date.desc" {
			t.Errorf("expected order=date.desc, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	start, _ := time.Parse(model.DateLayout, "2026-08-21")
	end, _ := time.Parse(model.DateLayout, "2026-08-28")
	entries, err := s.ListCheckInsInRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("listing range: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty result, got %d entries", len(entries))
	}
}

func TestUnauthorizedMapsToUnauthenticated(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := s.ListSkills(context.Background())
	if !IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}

func TestServerErrorMapsToStoreError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"relation does not exist"}`))
	})

	_, err := s.ListSkills(context.Background())
	if !IsStoreError(err) {
		t.Fatalf("expected store error, got %v", err)
	}

	var sErr *StoreError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected *StoreError in chain, got %v", err)
	}
	if sErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", sErr.Status)
	}
}

func TestUpdateSkillNotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		// PostgREST returns an empty representation when no row matched.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	name := "Serve"
	_, err := s.UpdateSkill(context.Background(), "missing-id", model.SkillPatch{Name: &name})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSkillReportsFound(t *testing.T) {
	matched := true
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if matched {
			json.NewEncoder(w).Encode([]skillRow{{ID: "skill-1", UserID: testUserID}})
			return
		}
		w.Write([]byte("[]"))
	})

	found, err := s.DeleteSkill(context.Background(), "skill-1")
	if err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if !found {
		t.Error("expected delete to report found")
	}

	matched = false
	found, err = s.DeleteSkill(context.Background(), "skill-1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if found {
		t.Error("expected second delete to report not found")
	}
}

func TestRequestHeaders(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("expected apikey header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	if _, err := s.ListSkills(context.Background()); err != nil {
		t.Fatalf("listing: %v", err)
	}
}

func TestUnauthenticatedPrincipalShortCircuits(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", func() string { return "" }, 5*time.Second)
	s := NewStore(client, func() (string, error) { return "", ErrUnauthenticated })

	if _, err := s.ListCheckIns(context.Background()); !IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no HTTP calls without a principal, got %d", calls)
	}
}

func TestPrincipalFromToken(t *testing.T) {
	signed := func(claims jwt.RegisteredClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		raw, err := token.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("signing token: %v", err)
		}
		return raw
	}

	valid := signed(jwt.RegisteredClaims{
		Subject:   testUserID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	sub, err := PrincipalFromToken(valid)
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if sub != testUserID {
		t.Errorf("expected subject %s, got %s", testUserID, sub)
	}

	expired := signed(jwt.RegisteredClaims{
		Subject:   testUserID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	if _, err := PrincipalFromToken(expired); !IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for expired token, got %v", err)
	}

	noSubject := signed(jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if _, err := PrincipalFromToken(noSubject); !IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for missing subject, got %v", err)
	}

	if _, err := PrincipalFromToken(""); !IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for empty token, got %v", err)
	}

	if _, err := PrincipalFromToken("not-a-jwt"); !IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for malformed token, got %v", err)
	}
}

func TestSignInRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("expected grant_type=password, got %q", got)
		}

		var grant struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
			t.Errorf("decoding grant: %v", err)
		}
		if grant.Email != "a@example.com" {
			t.Errorf("unexpected email %q", grant.Email)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Session{
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresIn:    3600,
			User:         AuthUser{ID: testUserID, Email: "a@example.com"},
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", func() string { return "" }, 5*time.Second)
	auth := NewAuthClient(client)

	sess, err := auth.SignIn(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("signing in: %v", err)
	}
	if sess.AccessToken != "at" || sess.User.ID != testUserID {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestPasswordResetRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/recover" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.Email != "a@example.com" {
			t.Errorf("unexpected email %q", body.Email)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", func() string { return "" }, 5*time.Second)
	auth := NewAuthClient(client)

	if err := auth.RequestPasswordReset(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("requesting reset: %v", err)
	}
}

func TestRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "anon-key", func() string { return "" }, 5*time.Second)
	s := NewStore(client, testPrincipal)

	if _, err := s.ListSkills(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

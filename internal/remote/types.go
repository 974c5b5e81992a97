package remote

import (
	"time"

	"github.com/picklepulse/pulse/internal/model"
)

// Logical table names on the hosted store.
const (
	tableHealthStats     = "/rest/v1/health_stats"
	tableSkills          = "/rest/v1/skills"
	tablePerformanceLogs = "/rest/v1/performance_logs"
)

// checkInRow is the wire shape of a health_stats row.
type checkInRow struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	SleepHours        float64   `json:"sleep_hours"`
	Hunger            int       `json:"hunger"`
	Soreness          int       `json:"soreness"`
	PerformanceRating int       `json:"performance_rating"`
	CreatedAt         time.Time `json:"created_at"`
}

// newCheckInRow is the insert/upsert payload; id and created_at are
// assigned server-side.
type newCheckInRow struct {
	UserID            string  `json:"user_id"`
	Date              string  `json:"date"`
	SleepHours        float64 `json:"sleep_hours"`
	Hunger            int     `json:"hunger"`
	Soreness          int     `json:"soreness"`
	PerformanceRating int     `json:"performance_rating"`
}

func (r checkInRow) toModel() (model.CheckIn, error) {
	date, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return model.CheckIn{}, err
	}
	return model.CheckIn{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Date:        date,
		SleepHours:  r.SleepHours,
		Hunger:      r.Hunger,
		Soreness:    r.Soreness,
		Performance: r.PerformanceRating,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// skillRow is the wire shape of a skills row.
type skillRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type newSkillRow struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

func (r skillRow) toModel() model.Skill {
	return model.Skill{
		ID:        r.ID,
		OwnerID:   r.UserID,
		Name:      r.Name,
		Section:   r.Section,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// performanceRow is the wire shape of a performance_logs row.
type performanceRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Performance string    `json:"performance"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type newPerformanceRow struct {
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Performance string `json:"performance"`
	Notes       string `json:"notes"`
}

func (r performanceRow) toModel() (model.PerformanceEntry, error) {
	date, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return model.PerformanceEntry{}, err
	}
	return model.PerformanceEntry{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Date:        date,
		Location:    r.Location,
		Performance: r.Performance,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// AuthUser identifies the authenticated account.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token bundle returned by the auth endpoints.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

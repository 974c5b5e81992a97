package model

import "time"

// Skill board sections. The section set is closed: a skill is always in
// exactly one of these, and board columns are populated purely by
// matching on the Section field.
const (
	SectionPlanning   = "planning"
	SectionPracticing = "practicing"
)

// Sections lists the valid board sections in display order.
var Sections = []string{SectionPlanning, SectionPracticing}

// ValidSection reports whether s is one of the closed section set.
func ValidSection(s string) bool {
	for _, v := range Sections {
		if v == s {
			return true
		}
	}
	return false
}

// Skill is a named item on the skills board.
type Skill struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SkillPatch carries the mutable skill fields for an edit. Nil fields are
// left unchanged.
type SkillPatch struct {
	Name    *string
	Section *string
}

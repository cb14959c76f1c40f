package entity

import (
	"time"

	"github.com/questx-lab/netgraph/pkg/enum"
)

type Visibility string

var (
	VisibilityPublic          = enum.New(Visibility("public"))
	VisibilityPrivate         = enum.New(Visibility("private"))
	VisibilityConnectionsOnly = enum.New(Visibility("connections_only"))
)

// Scope names a category of profile data which is gated by its own flag.
type Scope string

var (
	ScopeBasic        = enum.New(Scope("basic"))
	ScopeContact      = enum.New(Scope("contact"))
	ScopeExperience   = enum.New(Scope("experience"))
	ScopeEducation    = enum.New(Scope("education"))
	ScopeSkills       = enum.New(Scope("skills"))
	ScopeProjects     = enum.New(Scope("projects"))
	ScopeAchievements = enum.New(Scope("achievements"))
	ScopePublications = enum.New(Scope("publications"))
	ScopeVolunteer    = enum.New(Scope("volunteer"))
)

type VisibilitySetting struct {
	UserID    string `gorm:"primaryKey"`
	User      User   `gorm:"foreignKey:UserID"`
	UpdatedAt time.Time

	OverallVisibility Visibility `gorm:"size:32"`

	Contact      bool
	Experience   bool
	Education    bool
	Skills       bool
	Projects     bool
	Achievements bool
	Publications bool
	Volunteer    bool

	Endorsable  bool
	Messageable bool
	Connectable bool
}

// DefaultVisibilitySetting is applied to users who never saved their settings.
func DefaultVisibilitySetting(userID string) VisibilitySetting {
	return VisibilitySetting{
		UserID:            userID,
		OverallVisibility: VisibilityConnectionsOnly,
		Contact:           true,
		Experience:        true,
		Education:         true,
		Skills:            true,
		Projects:          true,
		Achievements:      true,
		Publications:      true,
		Volunteer:         true,
		Endorsable:        true,
		Messageable:       true,
		Connectable:       true,
	}
}

// ScopeAllowed returns the flag of scope. Scopes without a flag, such as basic identity
// fields, are allowed.
func (s *VisibilitySetting) ScopeAllowed(scope Scope) bool {
	switch scope {
	case ScopeContact:
		return s.Contact
	case ScopeExperience:
		return s.Experience
	case ScopeEducation:
		return s.Education
	case ScopeSkills:
		return s.Skills
	case ScopeProjects:
		return s.Projects
	case ScopeAchievements:
		return s.Achievements
	case ScopePublications:
		return s.Publications
	case ScopeVolunteer:
		return s.Volunteer
	default:
		return true
	}
}

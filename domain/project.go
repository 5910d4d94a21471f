package domain

import (
	"time"
	"unicode/utf8"
)

const (
	ProjectNameMaxLen        = 100
	ProjectDescriptionMaxLen = 500
)

// Project groups tasks under a single owner plus a flat set of members.
// Invariant: the owner never appears in Members.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	OwnerID     string     `json:"owner_id"`
	Members     []string   `json:"members"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOwner reports whether the user owns this project.
func (p *Project) IsOwner(userID string) bool {
	return p != nil && userID != "" && p.OwnerID == userID
}

// IsMember reports whether the user is in the members set (the owner is not).
func (p *Project) IsMember(userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	for _, id := range p.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// TeamSize counts the owner plus all members.
func (p *Project) TeamSize() int {
	if p == nil {
		return 0
	}
	return len(p.Members) + 1
}

// ValidateProjectName enforces the 1-100 character bound.
func ValidateProjectName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return NewError(ErrCodeInvalid, "please add a project name")
	}
	if n > ProjectNameMaxLen {
		return NewError(ErrCodeInvalid, "project name cannot be more than 100 characters")
	}
	return nil
}

// ValidateProjectDescription enforces the optional 500 character cap.
func ValidateProjectDescription(description string) error {
	if utf8.RuneCountInString(description) > ProjectDescriptionMaxLen {
		return NewError(ErrCodeInvalid, "project description cannot be more than 500 characters")
	}
	return nil
}

package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleAdmin  Role = "admin"
)

type ProfileStatus string

const (
	ProfileActive  ProfileStatus = "active"
	ProfileDeleted ProfileStatus = "deleted"
)

// childMarker is inserted before the @ of the parent email when a child
// sub-account is created. It is how child accounts are recognized
// everywhere, including by the auth layer.
const childMarker = "+child."

type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         Role          `json:"role"`
	BalanceSats  int64         `json:"balance_sats"`
	ParentID     *string       `json:"parent_id,omitempty"`
	Status       ProfileStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (p *Profile) Validate() error {
	if len(strings.TrimSpace(p.Name)) < 2 {
		return errors.New("name too short")
	}
	if !strings.Contains(p.Email, "@") {
		return errors.New("invalid email")
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
	return nil
}

func (p *Profile) IsChild() bool { return p.Role == RoleChild }

func (p *Profile) Deleted() bool { return p.Status == ProfileDeleted }

// ChildEmail derives the marker email for a child sub-account from the
// parent email: alice@example.com + id "4f21" -> alice+child.4f21@example.com.
func ChildEmail(parentEmail, shortID string) string {
	at := strings.LastIndex(parentEmail, "@")
	if at < 0 {
		return parentEmail + childMarker + shortID
	}
	return parentEmail[:at] + childMarker + shortID + parentEmail[at:]
}

func IsChildEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[:at], childMarker)
}

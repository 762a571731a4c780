package models

import (
	"errors"
	"strings"
	"time"
)

type PostStatus string

const (
	PostOpen    PostStatus = "open"
	PostClaimed PostStatus = "claimed"
	PostDone    PostStatus = "done"
	PostExpired PostStatus = "expired"
	PostDeleted PostStatus = "deleted"
)

// Post is a community job: the author promises RewardSats to whoever
// claims and completes it.
type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	RewardSats int64      `json:"reward_sats"`
	Status     PostStatus `json:"status"`
	ClaimedBy  *string    `json:"claimed_by,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p *Post) Validate() error {
	if len(strings.TrimSpace(p.Title)) < 3 {
		return errors.New("title too short")
	}
	if p.RewardSats < 0 {
		return errors.New("reward must be >= 0")
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a roster entry shared by every batting order.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PlayerSlot is a player placed at a 1-based batting position inside an order.
type PlayerSlot struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type CommentUser struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

type Comment struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Text      string      `json:"text"`
	CreatedAt int64       `json:"createdAt"` // unix millis
	User      CommentUser `json:"user"`
}

// BattingOrder is one user's submission. UserName and UserPhotoURL are
// omitted from JSON once stripped for a non-owner viewer.
type BattingOrder struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	UserName     string       `json:"userName,omitempty"`
	UserPhotoURL *string      `json:"userPhotoURL,omitempty"`
	Players      []PlayerSlot `json:"players"`
	Upvotes      []string     `json:"upvotes"`
	Downvotes    []string     `json:"downvotes"`
	Comments     []Comment    `json:"comments"`
	CreatedAt    int64        `json:"createdAt"` // unix millis
}

// Score is the net vote count used for ranking.
func (o *BattingOrder) Score() int {
	return len(o.Upvotes) - len(o.Downvotes)
}

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// PlayerTally is the legacy per-player counter stored under player-votes.
type PlayerTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// ResetArchive keeps a copy of the collection wiped by an admin reset.
type ResetArchive struct {
	ID         uuid.UUID `json:"id" gorm:"primaryKey"`
	OrderCount int       `json:"order_count"`
	Payload    string    `json:"payload" gorm:"type:longtext"`
	ArchivedAt time.Time `json:"archived_at" gorm:"index"`
}

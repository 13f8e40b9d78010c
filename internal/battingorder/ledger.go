package battingorder

import (
	"sort"
	"strings"
	"time"

	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/models"
)

// Collection is every submission, in insertion order, as stored under one key.
type Collection []models.BattingOrder

type SubmitInput struct {
	UserID       string
	UserName     string
	UserPhotoURL *string
	Players      []models.PlayerSlot
}

type CommentInput struct {
	BattingOrderID string
	UserID         string
	Text           string
	User           models.CommentUser
}

func (c Collection) index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) indexByOwner(userID string) int {
	for i := range c {
		if c[i].UserID == userID {
			return i
		}
	}
	return -1
}

// normalize replaces nil slices left by older blobs so they encode as [].
func (c Collection) normalize() {
	for i := range c {
		o := &c[i]
		if o.Players == nil {
			o.Players = []models.PlayerSlot{}
		}
		if o.Upvotes == nil {
			o.Upvotes = []string{}
		}
		if o.Downvotes == nil {
			o.Downvotes = []string{}
		}
		if o.Comments == nil {
			o.Comments = []models.Comment{}
		}
	}
}

// Upsert creates the user's order or replaces its players and identity
// fields. An existing order keeps its id, votes, comments and createdAt.
func (c *Collection) Upsert(in SubmitInput, now time.Time, newID func() string) (order models.BattingOrder, created bool, err error) {
	if strings.TrimSpace(in.UserID) == "" {
		return models.BattingOrder{}, false, apperr.Validation("userId is required")
	}
	players, err := validatePlayers(in.Players)
	if err != nil {
		return models.BattingOrder{}, false, err
	}

	if i := c.indexByOwner(in.UserID); i >= 0 {
		o := &(*c)[i]
		o.Players = players
		o.UserName = in.UserName
		o.UserPhotoURL = in.UserPhotoURL
		return *o, false, nil
	}

	order = models.BattingOrder{
		ID:           newID(),
		UserID:       in.UserID,
		UserName:     in.UserName,
		UserPhotoURL: in.UserPhotoURL,
		Players:      players,
		Upvotes:      []string{},
		Downvotes:    []string{},
		Comments:     []models.Comment{},
		CreatedAt:    now.UnixMilli(),
	}
	*c = append(*c, order)
	return order, true, nil
}

// validatePlayers checks every slot and returns them ordered by position.
// Positions must be exactly 1..n.
func validatePlayers(players []models.PlayerSlot) ([]models.PlayerSlot, error) {
	if len(players) == 0 {
		return nil, apperr.Validation("players must not be empty")
	}

	out := make([]models.PlayerSlot, len(players))
	seen := make(map[int]bool, len(players))
	for i, p := range players {
		name := strings.TrimSpace(p.Name)
		switch {
		case p.ID <= 0:
			return nil, apperr.Validation("player %d is missing an id", i+1)
		case name == "":
			return nil, apperr.Validation("player %d is missing a name", i+1)
		case p.Position < 1 || p.Position > len(players):
			return nil, apperr.Validation("player %d has position %d outside 1..%d", i+1, p.Position, len(players))
		case seen[p.Position]:
			return nil, apperr.Validation("position %d is used twice", p.Position)
		}
		seen[p.Position] = true
		out[i] = models.PlayerSlot{ID: p.ID, Name: name, Position: p.Position}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// CastVote applies one vote. The voter's vote of this type is removed from
// every other order, then toggled on the target; adding it also clears the
// voter's opposite vote on the target. added is false when the vote was retracted.
func (c Collection) CastVote(voterID, targetID string, voteType models.VoteType) (order models.BattingOrder, added bool, err error) {
	if !voteType.Valid() {
		return models.BattingOrder{}, false, apperr.Validation("voteType must be up or down")
	}

	idx := c.index(targetID)
	if idx < 0 {
		return models.BattingOrder{}, false, apperr.NotFound("batting order not found")
	}
	target := &c[idx]
	if target.UserID == voterID {
		return models.BattingOrder{}, false, apperr.Forbidden("you cannot vote on your own batting order")
	}

	for i := range c {
		if i == idx {
			continue
		}
		if voteType == models.VoteUp {
			c[i].Upvotes = without(c[i].Upvotes, voterID)
		} else {
			c[i].Downvotes = without(c[i].Downvotes, voterID)
		}
	}

	same, opposite := &target.Upvotes, &target.Downvotes
	if voteType == models.VoteDown {
		same, opposite = opposite, same
	}

	if contains(*same, voterID) {
		*same = without(*same, voterID)
	} else {
		*same = append(*same, voterID)
		*opposite = without(*opposite, voterID)
		added = true
	}

	return *target, added, nil
}

// AddComment appends a comment to the order. Comments are never edited or removed.
func (c Collection) AddComment(in CommentInput, now time.Time, newID func() string) (models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.Comment{}, apperr.Validation("comment text must not be empty")
	}

	idx := c.index(in.BattingOrderID)
	if idx < 0 {
		return models.Comment{}, apperr.NotFound("batting order not found")
	}

	comment := models.Comment{
		ID:        newID(),
		UserID:    in.UserID,
		Text:      text,
		CreatedAt: now.UnixMilli(),
		User:      in.User,
	}
	c[idx].Comments = append(c[idx].Comments, comment)
	return comment, nil
}

// SanitizeForViewer returns a copy in which only the viewer's own order
// keeps its owner name and photo.
func SanitizeForViewer(orders []models.BattingOrder, viewerID string) []models.BattingOrder {
	out := make([]models.BattingOrder, len(orders))
	for i, o := range orders {
		if viewerID == "" || o.UserID != viewerID {
			o = StripIdentity(o)
		}
		out[i] = o
	}
	return out
}

func StripIdentity(o models.BattingOrder) models.BattingOrder {
	o.UserName = ""
	o.UserPhotoURL = nil
	return o
}

// SortByScore orders by net score, highest first. Equal scores keep their
// relative order.
func SortByScore(orders []models.BattingOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Score() > orders[j].Score()
	})
}

// Draft is the starting order for the viewer's edit form: their saved
// order with names refreshed from the roster, or the roster itself.
func (c Collection) Draft(viewerID string, roster []models.Player) []models.PlayerSlot {
	idx := -1
	if viewerID != "" {
		idx = c.indexByOwner(viewerID)
	}

	if idx < 0 {
		slots := make([]models.PlayerSlot, len(roster))
		for i, p := range roster {
			slots[i] = models.PlayerSlot{ID: p.ID, Name: p.Name, Position: i + 1}
		}
		return slots
	}

	names := make(map[int]string, len(roster))
	for _, p := range roster {
		names[p.ID] = p.Name
	}

	saved := append([]models.PlayerSlot(nil), c[idx].Players...)
	sort.SliceStable(saved, func(i, j int) bool { return saved[i].Position < saved[j].Position })

	slots := make([]models.PlayerSlot, len(saved))
	for i, p := range saved {
		if name, ok := names[p.ID]; ok {
			p.Name = name
		}
		p.Position = i + 1
		slots[i] = p
	}
	return slots
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

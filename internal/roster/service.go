package roster

import (
	"context"
	"strconv"
	"strings"

	"github.com/batting-order-system/internal/middleware"
	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/events"
	"github.com/batting-order-system/pkg/models"
	"github.com/batting-order-system/pkg/redis"
)

const (
	playersKey = "players"
	tallyKey   = "player-votes"
)

// DefaultRoster is written on first access when no roster is stored.
var DefaultRoster = []models.Player{
	{ID: 1, Name: "Rahul"},
	{ID: 2, Name: "Varun"},
	{ID: 3, Name: "Avinash"},
	{ID: 4, Name: "Vaibhav"},
	{ID: 5, Name: "Rohit"},
	{ID: 6, Name: "Purvesh"},
	{ID: 7, Name: "Prashant"},
	{ID: 8, Name: "Pragatheesh"},
	{ID: 9, Name: "Shubham"},
	{ID: 10, Name: "Akshay"},
	{ID: 11, Name: "Henil"},
}

// LoadPlayers reads the roster through kv, seeding the default roster if none is stored.
func LoadPlayers(ctx context.Context, kv redis.KV) ([]models.Player, error) {
	var players []models.Player
	found, err := kv.GetJSON(ctx, playersKey, &players)
	if err != nil {
		return nil, err
	}
	if found {
		if players == nil {
			players = []models.Player{}
		}
		return players, nil
	}

	players = append([]models.Player(nil), DefaultRoster...)
	if err := kv.SetJSON(ctx, playersKey, players); err != nil {
		return nil, err
	}
	return players, nil
}

type Service struct {
	store  *redis.Store
	events events.Publisher
}

func NewService(store *redis.Store, publisher events.Publisher) *Service {
	return &Service{
		store:  store,
		events: publisher,
	}
}

func (s *Service) List(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		var err error
		players, err = LoadPlayers(ctx, kv)
		return err
	})
	return players, err
}

// Replace overwrites the roster wholesale. Orders already submitted keep
// the names they were saved with.
func (s *Service) Replace(ctx context.Context, players []models.Player) ([]models.Player, error) {
	cleaned, err := validateRoster(players)
	if err != nil {
		return nil, err
	}

	err = s.store.WithSession(ctx, func(kv redis.KV) error {
		return kv.SetJSON(ctx, playersKey, cleaned)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTypeRosterReplaced, events.RosterReplacedPayload{PlayerCount: len(cleaned)})
	return cleaned, nil
}

func validateRoster(players []models.Player) ([]models.Player, error) {
	out := make([]models.Player, len(players))
	seen := make(map[int]bool, len(players))
	for i, p := range players {
		name := strings.TrimSpace(p.Name)
		switch {
		case p.ID <= 0:
			return nil, apperr.Validation("player %d is missing an id", i+1)
		case name == "":
			return nil, apperr.Validation("player %d is missing a name", i+1)
		case seen[p.ID]:
			return nil, apperr.Validation("player id %d is used twice", p.ID)
		}
		seen[p.ID] = true
		out[i] = models.Player{ID: p.ID, Name: name}
	}
	return out, nil
}

// Tally returns the per-player vote counters keyed by player id.
func (s *Service) Tally(ctx context.Context) (map[string]models.PlayerTally, error) {
	var tally map[string]models.PlayerTally
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		var err error
		tally, err = loadTally(ctx, kv)
		return err
	})
	return tally, err
}

// RecordTally bumps one counter for playerID and returns the whole tally.
func (s *Service) RecordTally(ctx context.Context, playerID int, voteType models.VoteType) (map[string]models.PlayerTally, error) {
	if !voteType.Valid() {
		return nil, apperr.Validation("voteType must be up or down")
	}

	var tally map[string]models.PlayerTally
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		var err error
		tally, err = loadTally(ctx, kv)
		if err != nil {
			return err
		}

		key := strconv.Itoa(playerID)
		entry := tally[key]
		if voteType == models.VoteUp {
			entry.Upvotes++
		} else {
			entry.Downvotes++
		}
		tally[key] = entry

		return kv.SetJSON(ctx, tallyKey, tally)
	})
	return tally, err
}

func loadTally(ctx context.Context, kv redis.KV) (map[string]models.PlayerTally, error) {
	tally := map[string]models.PlayerTally{}
	if _, err := kv.GetJSON(ctx, tallyKey, &tally); err != nil {
		return nil, err
	}
	if tally == nil {
		tally = map[string]models.PlayerTally{}
	}
	return tally, nil
}

func (s *Service) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, "", payload); err != nil {
		middleware.Logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to publish event")
	}
}

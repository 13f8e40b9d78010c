package battingorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/batting-order-system/internal/middleware"
	"github.com/batting-order-system/internal/roster"
	"github.com/batting-order-system/pkg/events"
	"github.com/batting-order-system/pkg/models"
	"github.com/batting-order-system/pkg/redis"
)

// Service runs each operation as acquire, load, mutate, save, release.
type Service struct {
	store  *redis.Store
	events events.Publisher
	now    func() time.Time
	newID  func() string
}

func NewService(store *redis.Store, publisher events.Publisher) *Service {
	return &Service{
		store:  store,
		events: publisher,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns every order sanitized for viewerID, best score first.
func (s *Service) List(ctx context.Context, viewerID string) ([]models.BattingOrder, error) {
	var orders Collection
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		var err error
		orders, err = Load(ctx, kv)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := SanitizeForViewer(orders, viewerID)
	SortByScore(out)
	return out, nil
}

// Draft returns the players the viewer's order form should start from.
func (s *Service) Draft(ctx context.Context, viewerID string) ([]models.PlayerSlot, error) {
	var slots []models.PlayerSlot
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		players, err := roster.LoadPlayers(ctx, kv)
		if err != nil {
			return err
		}
		orders, err := Load(ctx, kv)
		if err != nil {
			return err
		}
		slots = orders.Draft(viewerID, players)
		return nil
	})
	return slots, err
}

func (s *Service) Upsert(ctx context.Context, in SubmitInput) (*models.BattingOrder, error) {
	var (
		order   models.BattingOrder
		created bool
	)
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		orders, err := Load(ctx, kv)
		if err != nil {
			return err
		}
		order, created, err = orders.Upsert(in, s.now(), s.newID)
		if err != nil {
			return err
		}
		return Save(ctx, kv, orders)
	})
	if err != nil {
		return nil, err
	}

	result := "updated"
	if created {
		result = "created"
	}
	middleware.Metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	s.publish(ctx, events.EventTypeOrderSubmitted, in.UserID, events.OrderSubmittedPayload{
		BattingOrderID: order.ID,
		Created:        created,
		PlayerCount:    len(order.Players),
	})

	return &order, nil
}

func (s *Service) Vote(ctx context.Context, voterID, battingOrderID string, voteType models.VoteType) (*models.BattingOrder, error) {
	var (
		order models.BattingOrder
		added bool
	)
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		orders, err := Load(ctx, kv)
		if err != nil {
			return err
		}
		order, added, err = orders.CastVote(voterID, battingOrderID, voteType)
		if err != nil {
			return err
		}
		return Save(ctx, kv, orders)
	})
	if err != nil {
		return nil, err
	}

	result := "added"
	if !added {
		result = "retracted"
	}
	middleware.Metrics.VotesTotal.WithLabelValues(string(voteType), result).Inc()
	s.publish(ctx, events.EventTypeVoteCast, voterID, events.VoteCastPayload{
		BattingOrderID: order.ID,
		VoteType:       string(voteType),
		Retracted:      !added,
		Score:          order.Score(),
	})

	return &order, nil
}

func (s *Service) AddComment(ctx context.Context, in CommentInput) (*models.Comment, error) {
	var comment models.Comment
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		orders, err := Load(ctx, kv)
		if err != nil {
			return err
		}
		comment, err = orders.AddComment(in, s.now(), s.newID)
		if err != nil {
			return err
		}
		return Save(ctx, kv, orders)
	})
	if err != nil {
		return nil, err
	}

	middleware.Metrics.CommentsTotal.Inc()
	s.publish(ctx, events.EventTypeCommentAdded, in.UserID, events.CommentAddedPayload{
		BattingOrderID: in.BattingOrderID,
		CommentID:      comment.ID,
	})

	return &comment, nil
}

// publish is best effort: the mutation is already persisted.
func (s *Service) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, userID, payload); err != nil {
		middleware.Logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to publish event")
	}
}

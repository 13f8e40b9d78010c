package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/batting-order-system/internal/battingorder"
	"github.com/batting-order-system/internal/middleware"
	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/events"
	"github.com/batting-order-system/pkg/models"
	"github.com/batting-order-system/pkg/redis"
)

// legacyVotesKey is left over from an older vote layout and is dropped on reset.
const legacyVotesKey = "votes"

const archiveListLimit = 20

// Archiver keeps snapshots of wiped collections. *database.MySQLDB satisfies it.
type Archiver interface {
	SaveArchive(archive *models.ResetArchive) error
	ListArchives(limit int) ([]*models.ResetArchive, error)
}

type Service struct {
	store    *redis.Store
	archiver Archiver
	events   events.Publisher
	now      func() time.Time
}

// NewService creates the admin service. archiver may be nil, in which case
// resets are not archived.
func NewService(store *redis.Store, archiver Archiver, publisher events.Publisher) *Service {
	return &Service{
		store:    store,
		archiver: archiver,
		events:   publisher,
		now:      time.Now,
	}
}

type ResetResult struct {
	ClearedOrders int    `json:"clearedOrders"`
	ArchiveID     string `json:"archiveId,omitempty"`
}

// Reset wipes every submission. When archiving is configured the current
// collection is archived first and a failed archive aborts the reset.
func (s *Service) Reset(ctx context.Context) (*ResetResult, error) {
	result := &ResetResult{}
	err := s.store.WithSession(ctx, func(kv redis.KV) error {
		orders, err := battingorder.Load(ctx, kv)
		if err != nil {
			return err
		}
		result.ClearedOrders = len(orders)

		if s.archiver != nil && len(orders) > 0 {
			id, err := s.archive(orders)
			if err != nil {
				return err
			}
			result.ArchiveID = id
		}

		if err := kv.Del(ctx, legacyVotesKey); err != nil {
			return err
		}
		return battingorder.Save(ctx, kv, battingorder.Collection{})
	})
	if err != nil {
		return nil, err
	}

	middleware.Metrics.ResetsTotal.Inc()
	if err := s.events.Publish(ctx, events.EventTypeReset, "", events.ResetPayload{
		ClearedOrders: result.ClearedOrders,
		ArchiveID:     result.ArchiveID,
	}); err != nil {
		middleware.Logger.Warn().Err(err).Msg("failed to publish reset event")
	}

	return result, nil
}

func (s *Service) archive(orders battingorder.Collection) (string, error) {
	payload, err := json.Marshal(orders)
	if err != nil {
		return "", apperr.Store("encode archive", err)
	}

	archive := &models.ResetArchive{
		ID:         uuid.New(),
		OrderCount: len(orders),
		Payload:    string(payload),
		ArchivedAt: s.now().UTC(),
	}
	if err := s.archiver.SaveArchive(archive); err != nil {
		return "", apperr.Store("save archive", err)
	}
	return archive.ID.String(), nil
}

// Archives lists the most recent snapshots.
func (s *Service) Archives(ctx context.Context) ([]*models.ResetArchive, error) {
	if s.archiver == nil {
		return nil, apperr.NotFound("archiving is not configured")
	}

	archives, err := s.archiver.ListArchives(archiveListLimit)
	if err != nil {
		return nil, apperr.Store("list archives", err)
	}
	return archives, nil
}

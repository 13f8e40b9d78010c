package battingorder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/events"
	"github.com/batting-order-system/pkg/models"
	"github.com/batting-order-system/pkg/redis"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EventType
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType events.EventType, _ string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, *recordingPublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	pub := &recordingPublisher{}
	svc := NewService(redis.NewStore(client, 0), pub)
	svc.now = func() time.Time { return testNow }
	svc.newID = sequentialIDs("id")
	return svc, mr, pub
}

func storedOrders(t *testing.T, mr *miniredis.Miniredis) []models.BattingOrder {
	t.Helper()
	raw, err := mr.Get(OrdersKey)
	require.NoError(t, err)
	var orders []models.BattingOrder
	require.NoError(t, json.Unmarshal([]byte(raw), &orders))
	return orders
}

func TestService_ListEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	orders, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestService_UpsertPersistsWholeCollection(t *testing.T) {
	svc, mr, pub := newTestService(t)
	ctx := context.Background()

	order, err := svc.Upsert(ctx, SubmitInput{
		UserID:   "X",
		UserName: "Xavier",
		Players: []models.PlayerSlot{
			{ID: 2, Name: "B", Position: 1},
			{ID: 1, Name: "A", Position: 2},
			{ID: 3, Name: "C", Position: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", order.ID)

	_, err = svc.Upsert(ctx, SubmitInput{UserID: "Y", Players: slots(1, 2, 3)})
	require.NoError(t, err)

	stored := storedOrders(t, mr)
	require.Len(t, stored, 2)
	assert.Equal(t, "Xavier", stored[0].UserName)
	assert.Equal(t, []models.PlayerSlot{
		{ID: 2, Name: "B", Position: 1},
		{ID: 1, Name: "A", Position: 2},
		{ID: 3, Name: "C", Position: 3},
	}, stored[0].Players)
	assert.Equal(t, []events.EventType{events.EventTypeOrderSubmitted, events.EventTypeOrderSubmitted}, pub.events)
}

func TestService_UpsertTwiceKeepsOneOrder(t *testing.T) {
	svc, mr, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, SubmitInput{UserID: "X", Players: slots(1, 2, 3)})
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(24 * time.Hour) }
	second, err := svc.Upsert(ctx, SubmitInput{UserID: "X", Players: slots(3, 1, 2)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	stored := storedOrders(t, mr)
	require.Len(t, stored, 1)
	assert.Equal(t, slots(3, 1, 2), stored[0].Players)
}

func TestService_UpsertValidationDoesNotWrite(t *testing.T) {
	svc, mr, pub := newTestService(t)

	_, err := svc.Upsert(context.Background(), SubmitInput{UserID: "X"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.False(t, mr.Exists(OrdersKey))
	assert.Empty(t, pub.events)
}

func TestService_ListSanitizesAndSorts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, owner := range []string{"A", "B", "C"} {
		_, err := svc.Upsert(ctx, SubmitInput{UserID: owner, UserName: "name-" + owner, Players: slots(1, 2)})
		require.NoError(t, err)
	}
	// id-2 belongs to B, id-3 to C
	_, err := svc.Vote(ctx, "A", "id-3", models.VoteUp)
	require.NoError(t, err)
	_, err = svc.Vote(ctx, "C", "id-2", models.VoteDown)
	require.NoError(t, err)

	orders, err := svc.List(ctx, "B")
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, []string{"C", "A", "B"}, []string{orders[0].UserID, orders[1].UserID, orders[2].UserID})
	assert.Empty(t, orders[0].UserName)
	assert.Empty(t, orders[1].UserName)
	assert.Equal(t, "name-B", orders[2].UserName)
}

func TestService_VoteExample(t *testing.T) {
	svc, mr, pub := newTestService(t)
	ctx := context.Background()

	order, err := svc.Upsert(ctx, SubmitInput{UserID: "X", Players: slots(1, 2, 3)})
	require.NoError(t, err)

	voted, err := svc.Vote(ctx, "Y", order.ID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y"}, voted.Upvotes)
	assert.Equal(t, []string{"Y"}, storedOrders(t, mr)[0].Upvotes)

	voted, err = svc.Vote(ctx, "Y", order.ID, models.VoteUp)
	require.NoError(t, err)
	assert.Empty(t, voted.Upvotes)
	assert.Empty(t, storedOrders(t, mr)[0].Upvotes)

	assert.Contains(t, pub.events, events.EventTypeVoteCast)
}

func TestService_VoteErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "Y", "missing", models.VoteUp)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	order, err := svc.Upsert(ctx, SubmitInput{UserID: "X", Players: slots(1)})
	require.NoError(t, err)

	_, err = svc.Vote(ctx, "X", order.ID, models.VoteDown)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestService_AddComment(t *testing.T) {
	svc, mr, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Upsert(ctx, SubmitInput{UserID: "X", Players: slots(1)})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, CommentInput{BattingOrderID: order.ID, UserID: "Y", Text: "   "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	comment, err := svc.AddComment(ctx, CommentInput{BattingOrderID: order.ID, UserID: "Y", Text: "gg"})
	require.NoError(t, err)
	assert.Equal(t, "gg", comment.Text)
	assert.Equal(t, testNow.UnixMilli(), comment.CreatedAt)
	assert.NotEmpty(t, comment.ID)

	stored := storedOrders(t, mr)
	require.Len(t, stored[0].Comments, 1)
	assert.Equal(t, comment.ID, stored[0].Comments[0].ID)
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errors.New("broker down")

	_, err := svc.Upsert(context.Background(), SubmitInput{UserID: "X", Players: slots(1)})
	assert.NoError(t, err)
}

func TestService_ReadsLegacyBlobWithoutComments(t *testing.T) {
	svc, mr, _ := newTestService(t)
	require.NoError(t, mr.Set(OrdersKey, `[{"id":"o1","userId":"X","players":[{"id":1,"name":"A","position":1}],"upvotes":[],"downvotes":[],"createdAt":1}]`))

	comment, err := svc.AddComment(context.Background(), CommentInput{BattingOrderID: "o1", UserID: "Y", Text: "first"})
	require.NoError(t, err)
	assert.Equal(t, "first", comment.Text)

	orders, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, orders[0].Comments, 1)
}

func TestService_StoreDown(t *testing.T) {
	svc, mr, _ := newTestService(t)
	mr.Close()

	_, err := svc.List(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrStore))
}

func TestService_Draft(t *testing.T) {
	svc, mr, _ := newTestService(t)
	ctx := context.Background()

	players, err := svc.Draft(ctx, "X")
	require.NoError(t, err)
	assert.Len(t, players, 11)
	assert.True(t, mr.Exists("players"), "draft seeds the roster")

	_, err = svc.Upsert(ctx, SubmitInput{UserID: "X", Players: []models.PlayerSlot{
		{ID: 2, Name: "Varun", Position: 1},
		{ID: 1, Name: "Rahul", Position: 2},
	}})
	require.NoError(t, err)
	require.NoError(t, mr.Set("players", `[{"id":1,"name":"Rahul D"},{"id":2,"name":"Varun"}]`))

	players, err = svc.Draft(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, []models.PlayerSlot{
		{ID: 2, Name: "Varun", Position: 1},
		{ID: 1, Name: "Rahul D", Position: 2},
	}, players)
	assert.Equal(t, "Rahul", storedOrders(t, mr)[0].Players[1].Name)
}

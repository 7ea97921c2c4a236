package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(nil)
	go h.Run(ctx)
	return h
}

func TestHub_SendRawReachesEveryClientOfUser(t *testing.T) {
	h := startHub(t)
	seller, other := uuid.New(), uuid.New()

	a := NewClient(seller, nil)
	b := NewClient(seller, nil)
	c := NewClient(other, nil)
	for _, cl := range []*Client{a, b, c} {
		require.True(t, h.RegisterClient(cl))
	}

	payload, err := json.Marshal(Event{Type: EventDraftUpdated, Step: "stock"})
	require.NoError(t, err)
	assert.Equal(t, 2, h.SendRaw(seller, payload))

	for _, cl := range []*Client{a, b} {
		select {
		case msg := <-cl.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, EventDraftUpdated, ev.Type)
			assert.Equal(t, "stock", ev.Step)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Len(t, c.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	cl := NewClient(uuid.New(), nil)
	require.True(t, h.RegisterClient(cl))

	h.UnregisterClient(cl)

	select {
	case _, open := <-cl.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, h.SendRaw(cl.UserID, []byte(`{}`)))
}

func TestHub_StoppedHubRejectsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, h.RegisterClient(NewClient(uuid.New(), nil)))
}

func TestRedisPublisher_BridgeForwardsToHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := startHub(t)
	seller := uuid.New()
	cl := NewClient(seller, nil)
	require.True(t, h.RegisterClient(cl))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Bridge(ctx, rdb, h, nil) }()

	pub := NewRedisPublisher(rdb)

	// the bridge subscribes asynchronously, so publish until it is listening
	var got Event
	require.Eventually(t, func() bool {
		if err := pub.Publish(ctx, seller, Event{Type: EventProductCreated, ProductID: 7}); err != nil {
			return false
		}
		select {
		case msg := <-cl.Send:
			return json.Unmarshal(msg, &got) == nil
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, EventProductCreated, got.Type)
	assert.Equal(t, uint(7), got.ProductID)
	assert.False(t, got.At.IsZero())
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Equal(t, "notifications:0f8fad5b-d9cb-469f-a165-70867728950e", Channel(id))
}

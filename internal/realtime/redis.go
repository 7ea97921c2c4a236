package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis creates a new Redis client
func NewRedis(cfg RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if log != nil {
		log.Info("redis client created", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return rdb
}

const channelPrefix = "notifications:"

func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// Event types published for sellers.
const (
	EventDraftUpdated   = "draft_updated"
	EventDraftsCleared  = "drafts_cleared"
	EventProductCreated = "product_created"
)

type Event struct {
	Type      string    `json:"type"`
	Step      string    `json:"step,omitempty"`
	ProductID uint      `json:"product_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher sends seller events. Implementations must not block on slow
// subscribers.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, uuid.UUID, Event) error { return nil }

// NopPublisher drops every event.
var NopPublisher Publisher = nopPublisher{}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Bridge forwards every message published on notifications:* to the
// websocket clients of the seller named in the channel. It returns when ctx
// is done or the subscription breaks.
func Bridge(ctx context.Context, rdb *redis.Client, hub *Hub, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe notifications: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			id, err := uuid.Parse(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				log.Warn("notification on unexpected channel", zap.String("channel", msg.Channel))
				continue
			}
			n := hub.SendRaw(id, []byte(msg.Payload))
			log.Debug("notification forwarded", zap.String("user", id.String()), zap.Int("clients", n))
		}
	}
}

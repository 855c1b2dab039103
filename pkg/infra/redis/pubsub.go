package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis and pings it once.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// PubSub publishes sync results.
type PubSub struct {
	client *redis.Client
	prefix string
}

// NewPubSub publishes on "{prefix}{order_id_unique}" channels.
func NewPubSub(client *redis.Client, prefix string) *PubSub {
	return &PubSub{
		client: client,
		prefix: prefix,
	}
}

// SyncNotification announces the result of one status sync.
type SyncNotification struct {
	RequestID     string `json:"request_id"`
	OrderIDUnique string `json:"order_id_unique"`
	Status        string `json:"status"` // DELIVERED/SUPPRESSED/ABORTED
	Attempts      int    `json:"attempts"`
	UpsertFailed  bool   `json:"upsert_failed"`
	Timestamp     int64  `json:"timestamp"`
}

// Channel returns the channel for orderIDUnique.
func (p *PubSub) Channel(orderIDUnique string) string {
	return p.prefix + orderIDUnique
}

// PublishSyncResult publishes notification on the order's channel.
func (p *PubSub) PublishSyncResult(ctx context.Context, notification *SyncNotification) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, p.Channel(notification.OrderIDUnique), msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe subscribes to the order's channel.
func (p *PubSub) Subscribe(ctx context.Context, orderIDUnique string) *redis.PubSub {
	return p.client.Subscribe(ctx, p.Channel(orderIDUnique))
}

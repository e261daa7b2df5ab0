package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const messageEventsChannel = "events:messages"

type BroadcastRepo struct {
	client *goredis.Client
}

func NewBroadcastRepo(client *goredis.Client) *BroadcastRepo {
	return &BroadcastRepo{client: client}
}

// MessageEvent announces a newly stored message to interested
// subscribers. RecipientID lets a subscriber drop caches for the side
// that did not send.
type MessageEvent struct {
	MatchID     int64     `json:"match_id"`
	MessageID   int64     `json:"message_id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	SentAt      time.Time `json:"sent_at"`
}

func (r *BroadcastRepo) PublishMessage(ctx context.Context, event MessageEvent) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if event.MatchID <= 0 || event.SenderID <= 0 {
		return fmt.Errorf("invalid message event")
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode message event: %w", err)
	}

	if err := r.client.Publish(ctx, messageEventsChannel, raw).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}

	return nil
}

// SubscribeMessages delivers decoded message events to handle until ctx
// is cancelled. Malformed payloads are skipped.
func (r *BroadcastRepo) SubscribeMessages(ctx context.Context, handle func(MessageEvent)) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	sub := r.client.Subscribe(ctx, messageEventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event MessageEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			handle(event)
		}
	}
}

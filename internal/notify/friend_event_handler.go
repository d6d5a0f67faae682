package notify

import (
	"context"
	"encoding/json"
	"log"

	"lingolink/internal/services"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// FriendEventPusher forwards friend lifecycle events consumed from Kafka to
// the websocket hub, which pushes them to the affected online user.
type FriendEventPusher struct {
	hub *Hub
}

// NewFriendEventPusher creates a new FriendEventPusher instance.
func NewFriendEventPusher(hub *Hub) *FriendEventPusher {
	return &FriendEventPusher{hub: hub}
}

// HandleFriendEvent is the MessageHandler passed to the Kafka consumer.
// Malformed payloads are skipped (and their offsets committed) so a bad
// message can never wedge the consumer.
func (p *FriendEventPusher) HandleFriendEvent(ctx context.Context, msg *kafka.Message) error {
	var event services.FriendEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("无法反序列化好友事件 (Value: '%s'): %v，跳过该消息。", string(msg.Value), err)
		return nil
	}

	target := event.TargetUserID()
	if target == 0 {
		log.Printf("好友事件缺少目标用户，跳过: %+v", event)
		return nil
	}

	p.hub.Push(target, msg.Value)
	return nil
}

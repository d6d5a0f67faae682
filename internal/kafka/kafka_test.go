package kafka

import (
	"context"
	"testing"
	"time"

	"lingolink/internal/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

func deliveryReport(topic string, deliveryErr error) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Error: deliveryErr},
	}
}

func TestAwaitDelivery_Success(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)
	deliveryChan <- deliveryReport("friend-events", nil)

	if err := awaitDelivery(context.Background(), "friend-events", deliveryChan); err != nil {
		t.Fatalf("awaitDelivery failed: %v", err)
	}
}

func TestAwaitDelivery_DeliveryError(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)
	deliveryChan <- deliveryReport("friend-events", kafka.NewError(kafka.ErrMsgTimedOut, "timed out", false))

	if err := awaitDelivery(context.Background(), "friend-events", deliveryChan); err == nil {
		t.Fatal("expected a delivery error")
	}
}

func TestAwaitDelivery_UnexpectedEventType(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)
	deliveryChan <- kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)

	if err := awaitDelivery(context.Background(), "friend-events", deliveryChan); err == nil {
		t.Fatal("expected an error for a non-message event")
	}
}

func TestAwaitDelivery_ContextCanceledThenLateReport(t *testing.T) {
	deliveryChan := make(chan kafka.Event, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := awaitDelivery(ctx, "friend-events", deliveryChan); err == nil {
		t.Fatal("expected an error after cancellation")
	}

	// librdkafka 的分发 goroutine 之后仍会投递报告；
	// 该通道必须还能接收，而不是已被关闭。
	done := make(chan struct{})
	go func() {
		defer close(done)
		deliveryChan <- deliveryReport("friend-events", nil)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("late delivery report blocked; channel should stay open and buffered")
	}
}

func TestConsumerConfigMap(t *testing.T) {
	cfg := config.KafkaConfig{
		Brokers:  []string{"broker1:9092", "broker2:9092"},
		ClientID: "lingolink-client",
	}
	configMap := consumerConfigMap(cfg, "lingolink-api-server-group")

	checks := map[string]interface{}{
		"bootstrap.servers":               "broker1:9092,broker2:9092",
		"group.id":                        "lingolink-api-server-group",
		"enable.auto.commit":              "false",
		"go.application.rebalance.enable": true,
		"client.id":                       "lingolink-client",
	}
	for key, want := range checks {
		got, err := configMap.Get(key, nil)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
		if got != kafka.ConfigValue(want) {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

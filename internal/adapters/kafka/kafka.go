// Package kafka is the notification-dispatch boundary. The engine
// hands newly-in-range friends to a Notifier and moves on; rendering
// push notifications is a downstream consumer's job.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"proximity-service/internal/models"
	"proximity-service/pkg/logger"
)

// Notifier emits one event per newly-in-range friend. Fire and forget
// from the engine's point of view.
type Notifier interface {
	Notify(ctx context.Context, userID, friendUID, friendName string) error
}

type Producer struct {
	sync  sarama.SyncProducer
	topic string
	log   *logger.Logger
}

// NewProducer builds a sarama sync producer for the nearby-friends
// topic.
func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "proximity-service"

	sp, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &Producer{sync: sp, topic: topic, log: log}, nil
}

func (p *Producer) Notify(_ context.Context, userID, friendUID, friendName string) error {
	event := models.NearbyEvent{
		UserID:     userID,
		FriendUID:  friendUID,
		FriendName: friendName,
		EmittedAt:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by the receiving user so one user's notifications stay
	// ordered on a single partition.
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		return err
	}
	p.log.Debugw("nearby event published",
		"userId", userID, "friendUid", friendUID, "partition", partition, "offset", offset)
	return nil
}

// Close flushes and shuts down the underlying producer.
func (p *Producer) Close() error {
	return p.sync.Close()
}

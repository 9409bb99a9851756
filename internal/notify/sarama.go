package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/models"
)

type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(cfg models.NotificationConfig) (*SaramaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Metadata.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	}

	brokerList := strings.Split(cfg.KafkaBrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	log.Info().Strs("brokers", brokerList).Msg("sarama producer created")
	return NewSaramaPublisherWithProducer(producer, cfg.Topic), nil
}

// NewSaramaPublisherWithProducer wraps an existing producer.
func NewSaramaPublisherWithProducer(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

// Publish keys the message by run ID so every event of a run lands on one
// partition.
func (s *SaramaPublisher) Publish(_ context.Context, event models.ReportGeneratedEvent) error {
	if s.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}
	msg, err := encode(event)
	if err != nil {
		return err
	}
	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", s.topic, err)
	}
	log.Debug().Str("topic", s.topic).Int32("partition", partition).Int64("offset", offset).
		Str("run_id", event.RunID).Msg("report event published")
	return nil
}

func (s *SaramaPublisher) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

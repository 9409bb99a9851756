package notify

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/models"
)

type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topic string) (*PubSubPublisher, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project_id is required")
	}
	if topic == "" {
		return nil, errors.New("pubsub topic is required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("unable to create pubsub client: %w", err)
	}
	return &PubSubPublisher{client: client, topic: client.Topic(topic)}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, event models.ReportGeneratedEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       msg,
		Attributes: map[string]string{"cadence": event.Cadence, "run_id": event.RunID},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic.ID(), err)
	}
	log.Debug().Str("topic", p.topic.ID()).Str("message_id", id).Str("run_id", event.RunID).Msg("report event published")
	return nil
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// Package notify announces generated reports on a message bus.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// Publisher delivers report events. Publish blocks until the broker has
// acknowledged the message.
type Publisher interface {
	Publish(ctx context.Context, event models.ReportGeneratedEvent) error
	Close() error
}

// NewPublisher returns the publisher configured in cfg, or nil when
// notifications are disabled.
func NewPublisher(ctx context.Context, cfg models.NotificationConfig) (Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Provider {
	case "kafka":
		p, err := NewSaramaPublisher(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "pubsub":
		p, err := NewPubSubPublisher(ctx, cfg.ProjectID, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported notification provider: %s", cfg.Provider)
	}
}

func encode(event models.ReportGeneratedEvent) ([]byte, error) {
	msg, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("unable to encode event: %w", err)
	}
	return msg, nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/venuequote/api/internal/services"
)

// PubSubQuotationPublisher announces issued quotations on a Pub/Sub topic.
type PubSubQuotationPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubQuotationPublisher constructs a Pub/Sub backed quotation event publisher.
func NewPubSubQuotationPublisher(topic *pubsub.Topic) (*PubSubQuotationPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub quotation publisher: topic is required")
	}
	return &PubSubQuotationPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishQuotationGenerated publishes the event and waits for the server-assigned message id.
func (p *PubSubQuotationPublisher) PublishQuotationGenerated(ctx context.Context, event services.QuotationGeneratedEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub quotation publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal quotation event: %w", err)
	}

	attrs := map[string]string{"type": "quotation.generated"}
	setAttr(attrs, "quotationNumber", event.QuotationNumber)
	setAttr(attrs, "eventType", string(event.EventType))
	setAttr(attrs, "packageId", event.PackageID)
	setAttr(attrs, "locale", event.Locale)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish quotation event: %w", err)
	}
	return id, nil
}

// Ready reports whether the topic exists.
func (p *PubSubQuotationPublisher) Ready(ctx context.Context) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub quotation publisher: not initialised")
	}
	exists, err := p.topic.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check topic %s: %w", p.topic.ID(), err)
	}
	if !exists {
		return fmt.Errorf("topic %s does not exist", p.topic.ID())
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

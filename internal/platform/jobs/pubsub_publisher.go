package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"

	"github.com/maplecart/api/internal/services"
)

// PubSubEmailPublisher publishes rendered email jobs to a Pub/Sub topic
// consumed by the mail worker.
type PubSubEmailPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
	retry   func() gax.Retryer
}

// NewPubSubEmailPublisher constructs a Pub/Sub backed email job publisher.
func NewPubSubEmailPublisher(topic *pubsub.Topic) (*PubSubEmailPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub email publisher: topic is required")
	}
	return &PubSubEmailPublisher{
		topic:   topic,
		marshal: json.Marshal,
		retry: func() gax.Retryer {
			return gax.OnCodes([]codes.Code{codes.Unavailable, codes.ResourceExhausted}, gax.Backoff{
				Initial:    100 * time.Millisecond,
				Max:        2 * time.Second,
				Multiplier: 2,
			})
		},
	}, nil
}

// PublishEmailJob enqueues an email job message on the configured topic.
// Transient broker errors are retried with backoff before giving up.
func (p *PubSubEmailPublisher) PublishEmailJob(ctx context.Context, message services.EmailJobMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub email publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal email job: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "template", message.Template)
	if orderID, ok := message.Payload["orderId"].(string); ok {
		setAttr(attrs, "orderId", orderID)
	}

	var id string
	err = gax.Invoke(ctx, func(ctx context.Context, _ gax.CallSettings) error {
		result := p.topic.Publish(ctx, &pubsub.Message{
			Data:       data,
			Attributes: attrs,
		})
		messageID, err := result.Get(ctx)
		if err != nil {
			return err
		}
		id = messageID
		return nil
	}, gax.WithRetry(p.retry))
	if err != nil {
		return "", fmt.Errorf("publish email job: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

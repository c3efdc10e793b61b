// Package events carries ingestion notifications over a redis stream.
package events

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
)

const TypeIngested = "ingested"

// Ingested is emitted once a blob has been written to its container.
type Ingested struct {
	Type      string `mapstructure:"type"`
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Container string `mapstructure:"container"`
	MimeType  string `mapstructure:"mimeType"`
	Category  string `mapstructure:"category"`
	Size      int64  `mapstructure:"size"`
}

func (e Ingested) Values() map[string]any {
	return map[string]any{
		"type":      TypeIngested,
		"id":        e.ID,
		"name":      e.Name,
		"container": e.Container,
		"mimeType":  e.MimeType,
		"category":  e.Category,
		"size":      e.Size,
	}
}

// Decode reads a stream entry back into an event. Stream values arrive as
// strings, so numeric fields are decoded weakly.
func Decode(values map[string]any) (Ingested, error) {
	var out Ingested
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Ingested{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Ingested{}, fmt.Errorf("decode event: %w", err)
	}
	return out, nil
}

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) PublishIngested(ctx context.Context, event Ingested) error {
	if p == nil || p.client == nil {
		return nil
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: event.Values(),
	}).Result()
	return err
}

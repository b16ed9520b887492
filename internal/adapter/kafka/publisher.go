package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"balneabilidade/internal/domain"
)

// Publisher produces station snapshots to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the stations topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishStations serializes and publishes the refreshed stations in a single
// WriteMessages call. Keying by station code keeps each station's updates
// ordered within a partition.
func (p *Publisher) PublishStations(ctx context.Context, points []domain.ProjectedStation, refreshedAt time.Time) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i], refreshedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish stations: %w", err)
	}
	p.logger.Info("published stations", "count", len(points))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one projected station into a Kafka message.
func serializeToMessage(point domain.ProjectedStation, refreshedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %s: %w", point.Code, err)
	}
	return kafkago.Message{
		Key:   []byte(point.Code),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_laudo", Value: []byte(point.SourceLaudo)},
			{Key: "refreshed_at", Value: []byte(refreshedAt.Format(time.RFC3339))},
		},
	}, nil
}

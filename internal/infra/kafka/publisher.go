package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// Ensure Publisher implements ports.ReportPublisher.
var _ ports.ReportPublisher = (*Publisher)(nil)

// PublisherConfig configures the Kafka-based backup report publisher.
type PublisherConfig struct {
	Brokers []string
	Topic   string
	Clock   clock.Clock
}

// Publisher publishes backup reports to Kafka.
type Publisher struct {
	writer messageWriter
	clock  clock.Clock
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewPublisher constructs a Publisher using the supplied configuration.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker must be provided")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic must be provided")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
	}

	return newPublisher(writer, cfg.Clock), nil
}

func newPublisher(writer messageWriter, clk clock.Clock) *Publisher {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Publisher{writer: writer, clock: clk}
}

// PublishProjectReport writes one project report keyed by its service name.
func (p *Publisher) PublishProjectReport(ctx context.Context, report backup.ProjectReport) error {
	if p.writer == nil {
		return fmt.Errorf("publisher is not initialized")
	}

	now := p.now()
	payload, err := encodeProjectReport(report, now)
	if err != nil {
		return err
	}

	return p.write(ctx, kafkago.Message{
		Key:   []byte(report.Project.Service),
		Value: payload,
		Time:  now,
	})
}

// PublishRunSummary writes the message that closes a backup pass.
func (p *Publisher) PublishRunSummary(ctx context.Context, report backup.RunReport) error {
	if p.writer == nil {
		return fmt.Errorf("publisher is not initialized")
	}

	now := p.now()
	payload, err := encodeRunSummary(report, now)
	if err != nil {
		return err
	}

	return p.write(ctx, kafkago.Message{
		Key:   []byte(messageTypeSummary),
		Value: payload,
		Time:  now,
	})
}

func (p *Publisher) write(ctx context.Context, msg kafkago.Message) error {
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Publisher) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock.Now()
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

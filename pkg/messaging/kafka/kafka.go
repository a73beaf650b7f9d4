package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/scheduling-api/pkg/circuitbreaker"
	"github.com/jwalitptl/scheduling-api/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	GroupID      string
	BatchTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the broker uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaBroker struct {
	config Config
	writer messageWriter
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

var _ messaging.Broker = (*KafkaBroker)(nil)

func NewKafkaBroker(config Config, logger *zerolog.Logger) (*KafkaBroker, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 50 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           config.BatchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return newKafkaBroker(config, writer, logger), nil
}

func newKafkaBroker(config Config, writer messageWriter, logger *zerolog.Logger) *KafkaBroker {
	return &KafkaBroker{
		config: config,
		writer: writer,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "kafka-broker",
			MaxFailures: 5,
			Timeout:     5 * time.Second,
		}),
		logger: logger,
	}
}

// Publish writes to the topic. Messages carrying an envelope are keyed by
// event id so retries land on the same partition.
func (b *KafkaBroker) Publish(ctx context.Context, topic string, message interface{}) error {
	value, err := messaging.Encode(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{Topic: topic, Value: value}
	if env, ok := message.(messaging.Message); ok {
		msg.Key = []byte(env.ID.String())
	}

	return b.cb.Execute(func() error {
		return b.writer.WriteMessages(ctx, msg)
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: b.config.Brokers,
		GroupID: b.config.GroupID,
		Topic:   topic,
	})

	msgChan := make(chan []byte, 100)
	go func() {
		defer func() {
			reader.Close()
			close(msgChan)
		}()

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Error().Err(err).Str("topic", topic).Msg("Failed to read kafka message")
				}
				return
			}
			select {
			case msgChan <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Ping(ctx context.Context) error {
	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", b.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	return conn.Close()
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

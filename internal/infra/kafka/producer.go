package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/infra/config"
	"github.com/arklim/casting-agency/internal/infra/telemetry"
)

// Producer wraps a Sarama AsyncProducer carrying casting change events.
// Broker-side delivery failures are logged and counted per event type.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	cfg      config.KafkaSettings
	drained  chan struct{}
}

// NewProducer connects to the configured brokers.
func NewProducer(cfg config.KafkaSettings, metrics *telemetry.Metrics, logger *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0
	saramaConfig.ClientID = "casting-agency"

	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	if cfg.Async {
		saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
		saramaConfig.Producer.Flush.Messages = 100
	}

	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	async, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
		zap.Bool("batched", cfg.Async),
	)

	return newProducer(async, cfg, metrics, logger), nil
}

func newProducer(async sarama.AsyncProducer, cfg config.KafkaSettings, metrics *telemetry.Metrics, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Producer{
		producer: async,
		logger:   logger,
		metrics:  metrics,
		cfg:      cfg,
		drained:  make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

// drainErrors runs until the producer closes its error channel.
func (p *Producer) drainErrors() {
	defer close(p.drained)

	for perr := range p.producer.Errors() {
		if perr == nil {
			continue
		}

		eventType, _ := perr.Msg.Metadata.(string)
		p.metrics.ObservePublishFailure(eventType)
		p.logger.Error("kafka delivery failed",
			zap.Error(perr.Err),
			zap.String("event_type", eventType),
			zap.String("topic", perr.Msg.Topic),
		)
	}
}

// Send enqueues a keyed message on the prefixed topic. Messages sharing a key land on the same partition.
func (p *Producer) Send(ctx context.Context, eventType, key string, value []byte) error {
	message := &sarama.ProducerMessage{
		Topic:    p.TopicName(eventType),
		Value:    sarama.ByteEncoder(value),
		Metadata: eventType,
	}
	if key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes buffered messages and waits for outstanding delivery errors to be reported.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")
	p.producer.AsyncClose()
	<-p.drained
	return nil
}

// TopicName prefixes the event type with the configured topic prefix, once.
func (p *Producer) TopicName(eventType string) string {
	if p.cfg.TopicPrefix == "" {
		return eventType
	}

	prefix := p.cfg.TopicPrefix + "."
	if strings.HasPrefix(eventType, prefix) {
		return eventType
	}
	return prefix + eventType
}

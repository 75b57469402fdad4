package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/lattice-kv/zsetcore/internal"
	"github.com/lattice-kv/zsetcore/internal/config"
	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

// kafkaRecord is the JSON payload published for every delta.
type kafkaRecord struct {
	Key   string
	Delta core.Delta
}

// KafkaSink publishes every delta as one Kafka record, built the same way
// this codebase's lineage constructs a franz-go client: seed brokers plus
// whatever topic-specific options the caller needs, no consumer group since
// this sink only ever produces.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

// NewKafkaSink dials the configured brokers and returns a sink that
// publishes to cfg.KafkaTopic.
func NewKafkaSink(cfg config.Config, logger *zap.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.KafkaBrokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("replication: dialing kafka brokers: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.KafkaTopic, logger: logger}, nil
}

// Publish implements core.Sink, retrying transient produce errors with an
// exponential backoff the same way internal.RetryBackoff composes it
// elsewhere in this repository.
func (s *KafkaSink) Publish(ctx context.Context, key string, delta core.Delta) error {
	payload, err := json.Marshal(kafkaRecord{Key: key, Delta: delta})
	if err != nil {
		return fmt.Errorf("replication: encoding delta: %w", err)
	}
	record := &kgo.Record{Topic: s.topic, Key: []byte(key), Value: payload}

	backoff := internal.RetryBackoff(retry.NewExponential(50*time.Millisecond), 5, 0, time.Second, 10*time.Second)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		results := s.client.ProduceSync(ctx, record)
		if err := results.FirstErr(); err != nil {
			s.logger.Warn("kafka produce failed, retrying", zap.String("key", key), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Close flushes outstanding records and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}

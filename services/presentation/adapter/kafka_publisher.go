package adapter

import (
	"context"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/instrumentation/logfields"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/services/presentation"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/orbs-network/scribe/log"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"time"
)

const publishQueueSize = 64

type kafkaPublisherConfig interface {
	KafkaBrokers() []string
	KafkaTopic() string
}

// MessageWriter is satisfied by *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publisherMetrics struct {
	published *metric.Gauge
	failed    *metric.Gauge
	dropped   *metric.Gauge
}

// KafkaPublisher sends the view of every applied result to a topic, keyed by contract address.
// Snapshots are queued so a slow broker never holds back the aggregator.
type KafkaPublisher struct {
	govnr.TreeSupervisor
	writer  MessageWriter
	key     []byte
	queue   chan *presentation.TallyView
	logger  log.Logger
	metrics *publisherMetrics
}

func NewKafkaPublisher(ctx context.Context, config kafkaPublisherConfig, key string, logger log.Logger, registry metric.Registry) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(config.KafkaBrokers()...),
		Topic:        config.KafkaTopic(),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return NewKafkaPublisherWithWriter(ctx, w, key, logger.WithTags(log.String("topic", config.KafkaTopic())), registry)
}

func NewKafkaPublisherWithWriter(ctx context.Context, writer MessageWriter, key string, parentLogger log.Logger, registry metric.Registry) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: writer,
		key:    []byte(key),
		queue:  make(chan *presentation.TallyView, publishQueueSize),
		logger: parentLogger.WithTags(log.String("adapter", "kafka-publisher")),
		metrics: &publisherMetrics{
			published: registry.NewGauge("Tally.Kafka.Published.Count"),
			failed:    registry.NewGauge("Tally.Kafka.Failed.Count"),
			dropped:   registry.NewGauge("Tally.Kafka.Dropped.Count"),
		},
	}

	p.Supervise(govnr.Forever(ctx, "kafka tally publisher", logfields.GovnrErrorer(p.logger), func() {
		p.publishQueued(ctx)
	}))
	return p
}

// HandleAggregationResult never blocks; a full queue gives up its oldest snapshot so the newest is always published
func (p *KafkaPublisher) HandleAggregationResult(result *tally.AggregationResult) {
	view := presentation.ViewOf(result)
	for {
		select {
		case p.queue <- view:
			return
		default:
		}

		select {
		case dropped := <-p.queue:
			p.metrics.dropped.Inc()
			p.logger.Info("publish queue is full, dropping oldest snapshot", logfields.Cycle(dropped.Cycle))
		default:
		}
	}
}

func (p *KafkaPublisher) publishQueued(ctx context.Context) {
	for {
		select {
		case view := <-p.queue:
			if err := p.publish(ctx, view); err != nil {
				p.metrics.failed.Inc()
				p.logger.Info("failed publishing tally snapshot", log.Error(err), logfields.Cycle(view.Cycle))
			} else {
				p.metrics.published.Inc()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, view *presentation.TallyView) error {
	value, err := view.Marshal()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   p.key,
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to write message to kafka")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return errors.Wrap(p.writer.Close(), "failed to close kafka writer")
}

package listener

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/location"
	"github.com/fekuna/omnipos-shelf-service/internal/location/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("scan-listener")

// Reader is the subset of *kafka.Reader the listener needs.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader builds a consumer-group reader that commits offsets after
// each ReadMessage.
func NewKafkaReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// ScanListener feeds scan batches published by handheld scanners into the
// location use case. Each message is one batch.
type ScanListener struct {
	reader  Reader
	uc      location.UseCase
	logger  logger.ZapLogger
	backoff time.Duration
}

func NewScanListener(reader Reader, uc location.UseCase, log logger.ZapLogger) *ScanListener {
	return &ScanListener{
		reader:  reader,
		uc:      uc,
		logger:  log,
		backoff: time.Second,
	}
}

// Start consumes until ctx is cancelled. Read errors are logged and retried
// after a short pause.
func (l *ScanListener) Start(ctx context.Context) error {
	l.logger.Info("Starting scan Kafka listener")
	defer func() {
		if err := l.reader.Close(); err != nil {
			l.logger.Warn("Failed to close kafka reader", zap.Error(err))
		}
	}()

	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Stopping scan Kafka listener")
				return nil
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.backoff):
			}
			continue
		}
		l.processMessage(ctx, msg)
	}
}

func (l *ScanListener) processMessage(ctx context.Context, msg kafka.Message) {
	ctx, span := tracer.Start(ctx, "scan.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		))
	defer span.End()

	log := l.logger.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

	records, err := dto.DecodeScanPayload(msg.Value)
	if err != nil {
		span.SetStatus(codes.Error, "undecodable message")
		log.Error("Dropping undecodable scan message", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	result, err := l.uc.AssignBatch(ctx, records)
	switch {
	case errors.Is(err, errs.ErrNothingToCommit):
		log.Info("Scan message had nothing to commit", zap.String("batch_id", result.BatchID))
	case err != nil:
		fields := []zap.Field{zap.Error(err), zap.Bool("retryable", errs.Retryable(err))}
		if result != nil {
			fields = append(fields, zap.String("batch_id", result.BatchID))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Scan message rolled back", fields...)
	default:
		log.Debug("Scan message committed", zap.String("batch_id", result.BatchID), zap.Int("committed", result.Committed))
	}
}

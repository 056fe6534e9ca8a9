package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/authsvc/log"
)

// LogSink 写入日志
type LogSink struct {
	logger *log.Logger
}

// NewLogSink 创建日志输出
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.G
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, e Event) error {
	s.logger.Info().
		Str("audit", string(e.Type)).
		Int64("user_id", e.UserID).
		Str("session_id", e.SessionID).
		Str("client_ip", e.ClientIP).
		Time("at", e.At).
		Msg("audit event")
	return nil
}

// MessageWriter kafka.Writer 的写入接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink 以 JSON 写入 Kafka，key 为用户 ID
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaSink 创建 Kafka 输出
func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Emit(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("audit: write kafka: %w", err)
	}
	return nil
}

// MultiSink 依次写入多个输出
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

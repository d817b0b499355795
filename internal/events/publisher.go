package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "damage-assessment/common/redis"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventRecordUpdated 单字段远程更新成功后发布
const EventRecordUpdated = "record.updated"

// RecordUpdated 编辑事件
type RecordUpdated struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	RecordID  string `json:"record_id"`
	Field     string `json:"field"`
	Column    string `json:"column"`
	Value     any    `json:"value"`
	Table     string `json:"table"`
	Timestamp int64  `json:"timestamp"`
}

// NewRecordUpdated fills id, type and timestamp.
func NewRecordUpdated(recordID, field, column, table string, value any) RecordUpdated {
	return RecordUpdated{
		EventID:   uuid.NewString(),
		Type:      EventRecordUpdated,
		RecordID:  recordID,
		Field:     field,
		Column:    column,
		Value:     value,
		Table:     table,
		Timestamp: time.Now().Unix(),
	}
}

// Publisher 编辑事件发布
type Publisher interface {
	PublishRecordUpdated(ctx context.Context, evt RecordUpdated) error
}

// Nop discards events.
type Nop struct{}

func (Nop) PublishRecordUpdated(context.Context, RecordUpdated) error { return nil }

// StreamPublisher 发布到 Redis Streams
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger}
}

func (p *StreamPublisher) PublishRecordUpdated(ctx context.Context, evt RecordUpdated) error {
	id, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, evt)
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	p.logger.Debug("Published edit event",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("record_id", evt.RecordID),
	)
	return nil
}

// MessagePublisher 抽象 MQTT 客户端（便于测试替换）
type MessagePublisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTPublisher 发布到 MQTT topic
type MQTTPublisher struct {
	client MessagePublisher
	topic  string
}

func NewMQTTPublisher(client MessagePublisher, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) PublishRecordUpdated(_ context.Context, evt RecordUpdated) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(p.topic, payload)
}

// Multi fans out to every publisher and returns the first error.
type Multi []Publisher

func (m Multi) PublishRecordUpdated(ctx context.Context, evt RecordUpdated) error {
	var firstErr error
	for _, p := range m {
		if err := p.PublishRecordUpdated(ctx, evt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

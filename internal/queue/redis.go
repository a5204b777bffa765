package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/domain/event"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Queue interface {
	Publish(ctx context.Context, e event.Event) (string, error) // Returns message ID
	Read(ctx context.Context, consumer, eventType string) (*redis.XMessage, error)
	Ack(ctx context.Context, eventType, msgID string) error
	AutoClaim(ctx context.Context, consumer, eventType string, minIdleTime time.Duration) ([]redis.XMessage, error)
	EnsureStreamsExist(ctx context.Context) error
}

// EventTypes lists the streams the admin tools publish to
var EventTypes = []string{"CategoryChanged"}

type RedisQueue struct {
	redisClient  *redis.Client
	streamPrefix string
	groupName    string
	blockFor     time.Duration
}

func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		redisClient:  redisClient,
		streamPrefix: "catalog:stream:",
		groupName:    cfg.ConsumerGroup,
		blockFor:     5 * time.Second,
	}

	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure streams exist: %w", err)
	}

	return q, nil
}

func (q *RedisQueue) stream(eventType string) string {
	return q.streamPrefix + eventType
}

func (q *RedisQueue) createGroup(ctx context.Context, stream string) error {
	// "$" so a new group only sees events published after it joined
	err := q.redisClient.XGroupCreateMkStream(ctx, stream, q.groupName, "$").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Debugf("Group %s already exists for stream %s", q.groupName, stream)
		return nil
	}
	return err
}

func (q *RedisQueue) Publish(ctx context.Context, e event.Event) (string, error) {
	eventType := e.EventType()
	streamName := q.stream(eventType)

	value, err := e.EventValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_data": string(value),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Published %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}

// Read blocks for a while waiting for the next event. It returns nil, nil
// when nothing arrived.
func (q *RedisQueue) Read(ctx context.Context, consumer, eventType string) (*redis.XMessage, error) {
	streamName := q.stream(eventType)
	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{streamName, ">"},
		Count:    1,
		Block:    q.blockFor,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", streamName, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}

	return &result[0].Messages[0], nil
}

func (q *RedisQueue) Ack(ctx context.Context, eventType, msgID string) error {
	return q.redisClient.XAck(ctx, q.stream(eventType), q.groupName, msgID).Err()
}

// AutoClaim takes over events another consumer of the group read but never acked
func (q *RedisQueue) AutoClaim(ctx context.Context, consumer, eventType string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	streamName := q.stream(eventType)
	result, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   streamName,
		Group:    q.groupName,
		Consumer: consumer,
		MinIdle:  minIdleTime,
		Start:    "0-0",
		Count:    10,
	}).Result()

	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to claim messages from Redis stream %s: %w", streamName, err)
	}

	return result, nil
}

// EnsureStreamsExist creates every stream and the consumer group upfront
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	for _, eventType := range EventTypes {
		streamName := q.stream(eventType)
		if err := q.createGroup(ctx, streamName); err != nil {
			return fmt.Errorf("failed to create consumer group for %s: %w", eventType, err)
		}
		log.Debugf("✅ Stream %s and consumer group %s ready", streamName, q.groupName)
	}
	return nil
}

// EventData returns the serialized event carried by a stream message
func EventData(msg redis.XMessage) ([]byte, error) {
	data, ok := msg.Values["event_data"].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no event data", msg.ID)
	}
	return []byte(data), nil
}

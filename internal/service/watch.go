package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry/catalog/internal/domain/event"
	"jewelry/catalog/internal/queue"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const categoryChangedType = "CategoryChanged"

// ErrNoQueue is returned by Watch when change events are not configured
var ErrNoQueue = errors.New("change events need redis enabled")

// Watch follows CategoryChanged events from other sessions, refreshing the
// tree and calling onChange after each one, until ctx is done.
func (s *CategoryService) Watch(ctx context.Context, consumer string, minIdle time.Duration, onChange func(*event.CategoryChanged)) error {
	if s.queue == nil {
		return ErrNoQueue
	}

	claimed, err := s.queue.AutoClaim(ctx, consumer, categoryChangedType, minIdle)
	if err != nil {
		log.Errorf("❌ %v", err)
	}
	for i := range claimed {
		s.handle(ctx, &claimed[i], onChange)
	}

	log.Infof("👀 Watching category changes as %s", consumer)
	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Category watcher stopping")
			return nil
		default:
		}

		msg, err := s.queue.Read(ctx, consumer, categoryChangedType)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Errorf("❌ %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if msg != nil {
			s.handle(ctx, msg, onChange)
		}
	}
}

func (s *CategoryService) handle(ctx context.Context, msg *redis.XMessage, onChange func(*event.CategoryChanged)) {
	if err := s.processMessage(ctx, msg, onChange); err != nil {
		log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
	}
}

func (s *CategoryService) processMessage(ctx context.Context, msg *redis.XMessage, onChange func(*event.CategoryChanged)) error {
	data, err := queue.EventData(*msg)
	if err != nil {
		return err
	}

	changed, err := event.UnmarshalEvent[*event.CategoryChanged](data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal category event: %w", err)
	}

	log.Infof("🔔 Category %s %s", changed.CategoryID, changed.Action)
	if _, err := s.Refresh(ctx); err != nil {
		log.Warnf("⚠️ Refresh after change event failed: %v", err)
	}
	if onChange != nil {
		onChange(changed)
	}

	if err := s.queue.Ack(ctx, categoryChangedType, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}
	return nil
}

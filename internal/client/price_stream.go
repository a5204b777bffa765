package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// PriceStream follows the server-sent metal price feed
type PriceStream interface {
	Subscribe(ctx context.Context, handle func(update domain.MetalPriceUpdate)) error
}

type priceStream struct {
	url        string
	retryCount int
	session    *Session
}

func NewPriceStream(cfg config.APIConfig, session *Session) PriceStream {
	return &priceStream{
		url:        strings.TrimRight(cfg.BaseURL, "/") + cfg.PriceStreamPath,
		retryCount: cfg.RetryCount,
		session:    session,
	}
}

// Subscribe blocks, handing every price update to handle, until ctx is done,
// the server ends the stream, or the stream fails. Updates that fail validation are logged and skipped.
func (s *priceStream) Subscribe(ctx context.Context, handle func(update domain.MetalPriceUpdate)) error {
	if !s.session.Active() {
		return ErrNotAuthenticated
	}

	es := resty.NewEventSource().
		SetURL(s.url).
		SetHeader("Accept", "text/event-stream").
		SetRetryCount(s.retryCount).
		SetLogger(log.StandardLogger())
	if token := s.session.Token(); token != "" {
		es.SetHeader("Authorization", "Bearer "+token)
	}

	es.OnOpen(func(url string) {
		log.Infof("📡 Connected to metal price stream %s", url)
	})
	es.OnError(func(err error) {
		log.Warnf("⚠️ Metal price stream error: %v", err)
	})
	es.OnMessage(func(e any) {
		update, ok := e.(*domain.MetalPriceUpdate)
		if !ok {
			return
		}
		for i := range update.Prices {
			if err := validate.Struct(&update.Prices[i]); err != nil {
				log.Warnf("⚠️ Skipping invalid metal price update: %v", err)
				return
			}
		}
		handle(*update)
	}, domain.MetalPriceUpdate{})

	done := make(chan error, 1)
	go func() {
		done <- es.Get()
	}()

	select {
	case <-ctx.Done():
		es.Close()
		log.Info("🛑 Metal price stream closed")
		return nil
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("metal price stream ended: %w", err)
		}
		return nil
	}
}

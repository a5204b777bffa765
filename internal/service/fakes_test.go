package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/domain/event"
	"jewelry/catalog/internal/state"

	"github.com/redis/go-redis/v9"
)

type fakeAdmin struct {
	mu         sync.Mutex
	categories []domain.CategoryRecord
	listErr    error
	docs       map[string]*domain.CategoryDocument
	products   []domain.ProductSummary
	prices     []domain.MetalPrice
	pricesErr  error
	renames    map[string]domain.RenamePayload
	renameErr  error
	created    []domain.CategoryFormState
	updated    map[string]domain.CategoryFormState
	uploads    []string
	listCalls  int
	priceCalls int
}

func (f *fakeAdmin) ListCategories(context.Context) ([]domain.CategoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.CategoryRecord{}, f.categories...), nil
}

func (f *fakeAdmin) GetCategory(_ context.Context, id string) (*domain.CategoryDocument, error) {
	if doc, ok := f.docs[id]; ok {
		return doc, nil
	}
	return nil, errors.New("API error 404: Category not found")
}

func (f *fakeAdmin) CreateCategory(_ context.Context, payload domain.CategoryFormState) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	f.categories = append(f.categories, domain.CategoryRecord{ID: "created-1", Name: payload.Name, Slug: payload.Slug})
	return "created-1", nil
}

func (f *fakeAdmin) UpdateCategory(_ context.Context, id string, payload domain.CategoryFormState) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[string]domain.CategoryFormState{}
	}
	f.updated[id] = payload
	return id, nil
}

func (f *fakeAdmin) RenameCategory(_ context.Context, id string, payload domain.RenamePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	if f.renames == nil {
		f.renames = map[string]domain.RenamePayload{}
	}
	f.renames[id] = payload
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Name = payload.Name
			f.categories[i].Slug = payload.Slug
		}
	}
	return nil
}

func (f *fakeAdmin) ListProducts(context.Context) ([]domain.ProductSummary, error) {
	return f.products, nil
}

func (f *fakeAdmin) Upload(_ context.Context, fileName string, content io.Reader) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, fileName)
	return "/uploads/" + fileName, nil
}

func (f *fakeAdmin) CurrentPrices(context.Context) ([]domain.MetalPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls++
	return f.prices, f.pricesErr
}

type fakeSnapshots struct {
	mu         sync.Mutex
	categories *state.CategorySnapshot
	prices     []domain.MetalPrice
	priceSaves int
}

func (f *fakeSnapshots) SaveCategories(_ context.Context, categories []domain.CategoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = &state.CategorySnapshot{Categories: categories, SavedAt: time.Now().UTC()}
	return nil
}

func (f *fakeSnapshots) LoadCategories(context.Context) (*state.CategorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categories == nil {
		return nil, state.ErrNoSnapshot
	}
	return f.categories, nil
}

func (f *fakeSnapshots) SavePrices(_ context.Context, prices []domain.MetalPrice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = prices
	f.priceSaves++
	return nil
}

func (f *fakeSnapshots) LoadPrices(context.Context) ([]domain.MetalPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prices == nil {
		return nil, state.ErrNoSnapshot
	}
	return f.prices, nil
}

// fakeQueue delivers published events back to readers in order
type fakeQueue struct {
	mu        sync.Mutex
	published []event.Event
	pending   []redis.XMessage
	acked     []string
}

func (q *fakeQueue) Publish(_ context.Context, e event.Event) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, e)
	return "1-0", nil
}

func (q *fakeQueue) Read(ctx context.Context, _, _ string) (*redis.XMessage, error) {
	q.mu.Lock()
	if len(q.pending) > 0 {
		msg := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		return &msg, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Millisecond):
	}
	return nil, nil
}

func (q *fakeQueue) Ack(_ context.Context, _, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) AutoClaim(context.Context, string, string, time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (q *fakeQueue) EnsureStreamsExist(context.Context) error {
	return nil
}

func (q *fakeQueue) Acked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string{}, q.acked...)
}

type fakeStream struct {
	updates []domain.MetalPriceUpdate
}

func (s *fakeStream) Subscribe(_ context.Context, handle func(domain.MetalPriceUpdate)) error {
	for _, u := range s.updates {
		handle(u)
	}
	return nil
}

type fakeHistory struct {
	mu    sync.Mutex
	ticks []domain.MetalPrice
}

func (h *fakeHistory) SaveTicks(_ context.Context, prices []domain.MetalPrice) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks = append(h.ticks, prices...)
	return nil
}

func (h *fakeHistory) History(_ context.Context, metal, purity string, limit int) ([]domain.MetalPrice, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.MetalPrice
	for i := len(h.ticks) - 1; i >= 0 && len(out) < limit; i-- {
		if h.ticks[i].Metal == metal && h.ticks[i].Purity == purity {
			out = append(out, h.ticks[i])
		}
	}
	return out, nil
}

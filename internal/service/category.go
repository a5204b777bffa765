package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"jewelry/catalog/internal/client"
	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/domain/event"
	"jewelry/catalog/internal/editor"
	"jewelry/catalog/internal/form"
	"jewelry/catalog/internal/navigator"
	"jewelry/catalog/internal/queue"
	"jewelry/catalog/internal/state"
	"jewelry/catalog/internal/tree"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Upload targets on the category form
const (
	FieldImage  = "image"
	FieldIcon   = "icon"
	FieldBanner = "banner"
)

// StaleError is returned by Refresh when the fetch failed and the tree now
// shows the last stored snapshot instead.
type StaleError struct {
	SavedAt time.Time
	Err     error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("showing categories from %s: %v", e.SavedAt.Format(time.RFC3339), e.Err)
}

func (e *StaleError) Unwrap() error {
	return e.Err
}

// CategoryService drives the category tree and form against the admin API.
// snapshots and queue are optional.
type CategoryService struct {
	client    client.AdminClient
	snapshots state.SnapshotStore
	queue     queue.Queue

	navigator *navigator.Navigator
	editor    *editor.RenameEditor
}

func NewCategoryService(adminClient client.AdminClient, snapshots state.SnapshotStore, q queue.Queue) *CategoryService {
	s := &CategoryService{
		client:    adminClient,
		snapshots: snapshots,
		queue:     q,
	}
	s.editor = editor.NewRenameEditor(s, func(ctx context.Context) error {
		_, err := s.Refresh(ctx)
		var stale *StaleError
		if errors.As(err, &stale) {
			log.Warnf("⚠️ Rename saved, tree shows snapshot from %s: %v", stale.SavedAt.Format(time.RFC3339), stale.Err)
			return nil
		}
		return err
	})
	s.navigator = navigator.New(s.editor)
	return s
}

func (s *CategoryService) Navigator() *navigator.Navigator {
	return s.navigator
}

func (s *CategoryService) Editor() *editor.RenameEditor {
	return s.editor
}

// Refresh fetches the category list and rebuilds the tree. When the fetch
// fails and a snapshot exists the snapshot is shown and a *StaleError returned.
func (s *CategoryService) Refresh(ctx context.Context) (tree.Report, error) {
	categories, err := s.client.ListCategories(ctx)
	if err != nil {
		return s.fallback(ctx, err)
	}

	report := s.navigator.Load(categories)
	s.logReport(report)

	if s.snapshots != nil {
		if err := s.snapshots.SaveCategories(ctx, categories); err != nil {
			log.Warnf("⚠️ %v", err)
		}
	}

	log.Infof("🌳 Loaded %d categories (%d roots)", len(categories), len(s.navigator.Roots()))
	return report, nil
}

func (s *CategoryService) fallback(ctx context.Context, fetchErr error) (tree.Report, error) {
	if s.snapshots == nil || errors.Is(fetchErr, client.ErrUnauthorized) || errors.Is(fetchErr, client.ErrNotAuthenticated) {
		return tree.Report{}, fetchErr
	}

	snapshot, err := s.snapshots.LoadCategories(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrNoSnapshot) {
			log.Warnf("⚠️ %v", err)
		}
		return tree.Report{}, fetchErr
	}

	log.Warnf("⚠️ Category fetch failed, showing snapshot from %s", snapshot.SavedAt.Format(time.RFC3339))
	report := s.navigator.Load(snapshot.Categories)
	return report, &StaleError{SavedAt: snapshot.SavedAt, Err: fetchErr}
}

func (s *CategoryService) logReport(report tree.Report) {
	if report.Clean() {
		return
	}
	for _, id := range report.Orphans {
		log.Warnf("⚠️ Category %s points at a missing parent, shown as root", id)
	}
	if err := report.Err(); err != nil {
		log.Warnf("⚠️ %v", err)
	}
	if len(report.Duplicates) > 0 {
		log.Warnf("⚠️ Duplicate category ids ignored: %v", report.Duplicates)
	}
	if report.Unidentified > 0 {
		log.Warnf("⚠️ Skipped %d categories without an id", report.Unidentified)
	}
}

// Rename runs the inline rename of one node with a new name
func (s *CategoryService) Rename(ctx context.Context, id, name string) error {
	if err := s.navigator.StartRename(id); err != nil {
		return err
	}
	if err := s.editor.SetStaged(name); err != nil {
		return err
	}
	return s.editor.Commit(ctx)
}

// RenameCategory saves a rename and announces it
func (s *CategoryService) RenameCategory(ctx context.Context, id string, payload domain.RenamePayload) error {
	if err := s.client.RenameCategory(ctx, id, payload); err != nil {
		return err
	}
	s.publish(ctx, id, event.ActionRenamed, payload.Name, payload.Slug)
	return nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, payload domain.CategoryFormState) (string, error) {
	id, err := s.client.CreateCategory(ctx, payload)
	if err != nil {
		return "", err
	}
	s.publish(ctx, id, event.ActionCreated, payload.Name, payload.Slug)
	return id, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, payload domain.CategoryFormState) (string, error) {
	savedID, err := s.client.UpdateCategory(ctx, id, payload)
	if err != nil {
		return "", err
	}
	s.publish(ctx, savedID, event.ActionUpdated, payload.Name, payload.Slug)
	return savedID, nil
}

// OpenForm loads the form for id, or a blank create form when id is empty.
// Saving the form refreshes the tree.
func (s *CategoryService) OpenForm(ctx context.Context, id string) (*form.Form, error) {
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		log.Warnf("⚠️ Product pickers unavailable: %v", err)
		products = nil
	}

	var f *form.Form
	if id == "" {
		f = form.New(products)
	} else {
		if _, err := s.navigator.Select(id); err != nil {
			log.Debugf("Opening category %s outside the loaded tree", id)
		}
		doc, err := s.client.GetCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		f = form.FromDocument(doc, products)
	}

	f.OnSaved = func(savedID string) {
		if _, err := s.Refresh(ctx); err != nil {
			log.Warnf("⚠️ Category %s saved but refresh failed: %v", savedID, err)
		}
	}
	return f, nil
}

// Save submits the form
func (s *CategoryService) Save(ctx context.Context, f *form.Form) (string, error) {
	return f.Submit(ctx, s)
}

// Upload sends a file and puts its URL into one of the form's image fields
func (s *CategoryService) Upload(ctx context.Context, f *form.Form, field, fileName string, content io.Reader) (string, error) {
	var set func(string)
	switch field {
	case FieldImage:
		set = f.SetImage
	case FieldIcon:
		set = f.SetIcon
	case FieldBanner:
		set = f.SetBanner
	default:
		return "", fmt.Errorf("unknown image field %q", field)
	}

	url, err := s.client.Upload(ctx, fileName, content)
	if err != nil {
		return "", err
	}
	set(url)
	return url, nil
}

func (s *CategoryService) publish(ctx context.Context, categoryID, action, name, slug string) {
	if s.queue == nil {
		return
	}

	_, err := s.queue.Publish(ctx, &event.CategoryChanged{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Action:     action,
		Name:       name,
		Slug:       slug,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warnf("⚠️ Failed to announce %s of category %s: %v", action, categoryID, err)
	}
}

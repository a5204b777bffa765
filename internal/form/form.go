// Package form holds the state of the category create/edit form.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/slug"

	log "github.com/sirupsen/logrus"
)

var (
	ErrSubmitInProgress  = errors.New("a submit is already in progress")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrEmptyOccasionName = errors.New("occasion name must not be empty")
	ErrNoSuchOccasion    = errors.New("no such occasion")
)

// Saver persists a submitted form
type Saver interface {
	CreateCategory(ctx context.Context, payload domain.CategoryFormState) (string, error)
	UpdateCategory(ctx context.Context, id string, payload domain.CategoryFormState) (string, error)
}

// Form is one category being created or edited. An empty id means create.
type Form struct {
	mu       sync.Mutex
	id       string
	state    domain.CategoryFormState
	products []domain.ProductSummary
	loading  atomic.Bool

	// baseline is the loaded payload; nil while creating
	baseline *domain.CategoryFormState

	// OnSaved runs after a successful submit with the saved category id
	OnSaved func(id string)
}

// New starts a create form with the typed defaults
func New(products []domain.ProductSummary) *Form {
	return &Form{
		state:    domain.DefaultCategoryForm(),
		products: products,
	}
}

// FromDocument starts an edit form for an existing category
func FromDocument(doc *domain.CategoryDocument, products []domain.ProductSummary) *Form {
	state := doc.CategoryFormState
	state.FocusKeywords = append([]string{}, state.FocusKeywords...)
	state.Occasions = append([]domain.OccasionEntry{}, state.Occasions...)
	if state.ParentID != nil {
		parent := *state.ParentID
		state.ParentID = &parent
	}

	f := &Form{
		id:       doc.Identifier(),
		state:    state,
		products: products,
	}
	baseline := f.payload()
	f.baseline = &baseline
	return f
}

func (f *Form) ID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *Form) Creating() bool {
	return f.ID() == ""
}

// Loading reports whether a submit is in flight
func (f *Form) Loading() bool {
	return f.loading.Load()
}

// State returns a copy of the current field values
func (f *Form) State() domain.CategoryFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *Form) snapshot() domain.CategoryFormState {
	state := f.state
	state.FocusKeywords = append([]string{}, f.state.FocusKeywords...)
	state.Occasions = append([]domain.OccasionEntry{}, f.state.Occasions...)
	return state
}

func (f *Form) update(fn func(s *domain.CategoryFormState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
}

// SetName sets the name. While creating, the slug follows the name.
func (f *Form) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state.Name = name
	if f.id == "" {
		f.state.Slug = slug.Make(name)
	}
}

func (f *Form) SetSlug(s string) {
	f.update(func(st *domain.CategoryFormState) { st.Slug = s })
}

func (f *Form) SetDescription(d string) {
	f.update(func(st *domain.CategoryFormState) { st.Description = d })
}

// SetParent sets the parent category; an empty id makes the category a root
func (f *Form) SetParent(id string) {
	f.update(func(st *domain.CategoryFormState) {
		if id == "" {
			st.ParentID = nil
			return
		}
		st.ParentID = &id
	})
}

func (f *Form) SetImage(url string) {
	f.update(func(st *domain.CategoryFormState) { st.Image = url })
}

func (f *Form) SetIcon(url string) {
	f.update(func(st *domain.CategoryFormState) { st.Icon = url })
}

func (f *Form) SetBanner(url string) {
	f.update(func(st *domain.CategoryFormState) { st.Banner = url })
}

func (f *Form) SetDisplayOrder(order int) {
	f.update(func(st *domain.CategoryFormState) { st.DisplayOrder = order })
}

func (f *Form) SetActive(v bool) {
	f.update(func(st *domain.CategoryFormState) { st.IsActive = v })
}

func (f *Form) SetShowInMenu(v bool) {
	f.update(func(st *domain.CategoryFormState) { st.ShowInMenu = v })
}

func (f *Form) SetFeatured(v bool) {
	f.update(func(st *domain.CategoryFormState) { st.IsFeatured = v })
}

func (f *Form) SetMetaTitle(v string) {
	f.update(func(st *domain.CategoryFormState) { st.MetaTitle = v })
}

func (f *Form) SetMetaDescription(v string) {
	f.update(func(st *domain.CategoryFormState) { st.MetaDescription = v })
}

// SetFocusKeywords replaces the keyword list
func (f *Form) SetFocusKeywords(keywords []string) {
	f.update(func(st *domain.CategoryFormState) {
		st.FocusKeywords = make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.TrimSpace(k); k != "" {
				st.FocusKeywords = append(st.FocusKeywords, k)
			}
		}
	})
}

// AddFocusKeyword appends a keyword unless it is blank or already present
func (f *Form) AddFocusKeyword(keyword string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return
	}
	f.update(func(st *domain.CategoryFormState) {
		for _, k := range st.FocusKeywords {
			if strings.EqualFold(k, keyword) {
				return
			}
		}
		st.FocusKeywords = append(st.FocusKeywords, keyword)
	})
}

// SetMegaMenuProduct picks the product featured in the mega menu. Empty clears it.
func (f *Form) SetMegaMenuProduct(productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if productID != "" {
		if _, ok := domain.FindProduct(f.products, productID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
		}
	}
	f.state.MegaMenuProductID = productID
	return nil
}

// Payload is the body sent on submit
func (f *Form) Payload() domain.CategoryFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payload()
}

func (f *Form) payload() domain.CategoryFormState {
	p := f.snapshot()
	p.Name = strings.TrimSpace(p.Name)
	if strings.TrimSpace(p.MetaDescription) == "" {
		p.MetaDescription = MetaDescription(p.Description)
	}
	return p
}

// Validate checks the current payload. On an edit form values left as
// loaded are not reported.
func (f *Form) Validate() FieldErrors {
	f.mu.Lock()
	payload := f.payload()
	f.mu.Unlock()
	return f.validate(payload)
}

func (f *Form) validate(payload domain.CategoryFormState) FieldErrors {
	if f.baseline == nil {
		return Validate(payload)
	}
	return ValidateChanges(payload, *f.baseline)
}

// Submit validates the form and saves it: POST while creating, PUT otherwise.
// Field values are kept whatever the outcome.
func (f *Form) Submit(ctx context.Context, saver Saver) (string, error) {
	if !f.loading.CompareAndSwap(false, true) {
		return "", ErrSubmitInProgress
	}
	defer f.loading.Store(false)

	f.mu.Lock()
	id := f.id
	payload := f.payload()
	f.mu.Unlock()

	if errs := f.validate(payload); len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}

	var (
		savedID string
		err     error
	)
	if id == "" {
		savedID, err = saver.CreateCategory(ctx, payload)
	} else {
		savedID, err = saver.UpdateCategory(ctx, id, payload)
	}
	if err != nil {
		log.Errorf("❌ Failed to save category %q: %v", payload.Name, err)
		return "", err
	}
	if savedID == "" {
		savedID = id
	}

	f.mu.Lock()
	if f.id == "" {
		f.id = savedID
	}
	f.mu.Unlock()

	if f.OnSaved != nil {
		f.OnSaved(savedID)
	}
	return savedID, nil
}

package form

import (
	"fmt"
	"strings"

	"jewelry/catalog/internal/domain"
)

// Occasions returns a copy of the occasion list
func (f *Form) Occasions() []domain.OccasionEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.OccasionEntry{}, f.state.Occasions...)
}

// AddOccasion appends an unbound occasion
func (f *Form) AddOccasion(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyOccasionName
	}

	f.update(func(st *domain.CategoryFormState) {
		st.Occasions = append(st.Occasions, domain.OccasionEntry{Name: name})
	})
	return nil
}

func (f *Form) RemoveOccasion(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i < 0 || i >= len(f.state.Occasions) {
		return fmt.Errorf("%w: %d", ErrNoSuchOccasion, i)
	}
	f.state.Occasions = append(f.state.Occasions[:i:i], f.state.Occasions[i+1:]...)
	return nil
}

func (f *Form) RenameOccasion(i int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyOccasionName
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if i < 0 || i >= len(f.state.Occasions) {
		return fmt.Errorf("%w: %d", ErrNoSuchOccasion, i)
	}
	f.state.Occasions[i].Name = name
	return nil
}

// BindOccasionProduct links occasion i to a product and copies the product's
// current main image onto the entry. Later image changes on the product are
// not picked up. An empty productID unbinds.
func (f *Form) BindOccasionProduct(i int, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i < 0 || i >= len(f.state.Occasions) {
		return fmt.Errorf("%w: %d", ErrNoSuchOccasion, i)
	}

	entry := &f.state.Occasions[i]
	if productID == "" {
		entry.ProductID = ""
		entry.Image = ""
		return nil
	}

	product, ok := domain.FindProduct(f.products, productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	entry.ProductID = product.ID
	entry.Image = product.MainImage
	return nil
}

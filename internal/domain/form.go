package domain

import (
	"encoding/json"
	"time"
)

// OccasionEntry is an occasion listed on a category page. It only exists
// inside its category document.
type OccasionEntry struct {
	Name      string `json:"name" validate:"required,max=80"`
	ProductID string `json:"productId,omitempty"`
	Image     string `json:"image,omitempty" validate:"omitempty,uri"`
}

// CategoryFormState is the editable body of a category. It carries no
// server-managed fields and doubles as the submission payload.
type CategoryFormState struct {
	Name        string  `json:"name" validate:"max=120"`
	Slug        string  `json:"slug" validate:"required,max=140,slug"`
	Description string  `json:"description" validate:"max=20000"`
	ParentID    *string `json:"parentId"`

	Image  string `json:"image" validate:"omitempty,uri"`
	Icon   string `json:"icon" validate:"omitempty,uri"`
	Banner string `json:"banner" validate:"omitempty,uri"`

	DisplayOrder int  `json:"displayOrder" validate:"min=0"`
	IsActive     bool `json:"isActive"`
	ShowInMenu   bool `json:"showInMenu"`
	IsFeatured   bool `json:"isFeatured"`

	MetaTitle       string   `json:"metaTitle" validate:"max=70"`
	MetaDescription string   `json:"metaDescription" validate:"max=160"`
	FocusKeywords   []string `json:"focusKeywords" validate:"max=10,dive,required,max=50"`

	Occasions         []OccasionEntry `json:"occasions" validate:"dive"`
	MegaMenuProductID string          `json:"megaMenuProductId,omitempty"`
}

// DefaultCategoryForm returns the typed defaults used when creating a category
func DefaultCategoryForm() CategoryFormState {
	return CategoryFormState{
		IsActive:      true,
		ShowInMenu:    true,
		FocusKeywords: []string{},
		Occasions:     []OccasionEntry{},
	}
}

// CategoryDocument is a single category as returned by GET /categories/:id
type CategoryDocument struct {
	CategoryFormState

	ID        string     `json:"id"`
	MongoID   string     `json:"_id"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (d *CategoryDocument) UnmarshalJSON(data []byte) error {
	type plain CategoryDocument
	var wire struct {
		plain
		ParentID json.RawMessage `json:"parentId"`
	}
	// Fields absent from the document keep whatever d already holds
	wire.plain = plain(*d)
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*d = CategoryDocument(wire.plain)
	d.ParentID = nil
	if ref := parentRef(wire.ParentID); ref != "" {
		d.ParentID = &ref
	}
	return nil
}

// Identifier returns the document id, preferring "id" over "_id"
func (d CategoryDocument) Identifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.MongoID
}

// RenamePayload is the body of an inline rename
type RenamePayload struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

package domain

import "encoding/json"

// CategoryRecord is a category as returned by the admin API
type CategoryRecord struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// UnmarshalJSON accepts both "id" and the server's "_id", and treats a null
// or object-shaped parent reference the way the storefront does.
func (r *CategoryRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID       string          `json:"id"`
		MongoID  string          `json:"_id"`
		Name     string          `json:"name"`
		Slug     string          `json:"slug"`
		ParentID json.RawMessage `json:"parentId"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.ID = wire.ID
	if r.ID == "" {
		r.ID = wire.MongoID
	}
	r.Name = wire.Name
	r.Slug = wire.Slug
	r.ParentID = parentRef(wire.ParentID)
	return nil
}

// parentRef resolves a parentId that may be null, a string, or a populated
// parent document ({"_id": "...", "name": "..."}).
func parentRef(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}

	var populated struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &populated); err == nil {
		if populated.ID != "" {
			return populated.ID
		}
		return populated.MongoID
	}
	return ""
}

// IsRoot reports whether the record has no parent reference
func (r CategoryRecord) IsRoot() bool {
	return r.ParentID == ""
}

// CategoryNode is a CategoryRecord placed in the in-memory hierarchy
type CategoryNode struct {
	CategoryRecord
	Children []*CategoryNode `json:"children"`

	// Orphaned is set when ParentID points at a category missing from the fetched set
	Orphaned bool `json:"orphaned,omitempty"`
	// InCycle is set on the node promoted to root to break a parent cycle
	InCycle bool `json:"inCycle,omitempty"`
}

// Clone returns a shallow copy sharing the children slice
func (n *CategoryNode) Clone() *CategoryNode {
	c := *n
	return &c
}

package domain

import "encoding/json"

// ProductSummary is the slice of a product the category pickers need
type ProductSummary struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	MainImage string `json:"mainImage,omitempty"`
}

func (p *ProductSummary) UnmarshalJSON(data []byte) error {
	type alias ProductSummary
	var wire struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = ProductSummary(wire.alias)
	if p.ID == "" {
		p.ID = wire.MongoID
	}
	return nil
}

// FindProduct returns the product with the given id, if present
func FindProduct(products []ProductSummary, id string) (ProductSummary, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return ProductSummary{}, false
}

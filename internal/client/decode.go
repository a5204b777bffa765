package client

import (
	"encoding/json"
	"fmt"

	"jewelry/catalog/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var validate = validator.New()

// listRaw finds the JSON array in body: either the body itself or the array
// under key (optionally nested in a "data" envelope).
func listRaw(body []byte, key string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: %s response is not JSON", ErrUnexpectedShape, key)
	}

	parsed := gjson.ParseBytes(body)
	if parsed.IsArray() {
		return parsed.Raw, nil
	}
	for _, path := range []string{key, "data." + key, "data"} {
		if v := parsed.Get(path); v.IsArray() {
			return v.Raw, nil
		}
	}
	return "", fmt.Errorf("%w: expected %s list", ErrUnexpectedShape, key)
}

// decodeList unmarshals and validates every element of a list response
func decodeList[T any](body []byte, key, resource string) ([]T, error) {
	raw, err := listRaw(body, key)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &DecodeError{Resource: resource, Index: -1, Err: err}
	}

	for i := range items {
		if err := validate.Struct(&items[i]); err != nil {
			return nil, &DecodeError{Resource: resource, Index: i, Err: err}
		}
	}
	return items, nil
}

func decodeCategories(body []byte) ([]domain.CategoryRecord, error) {
	return decodeList[domain.CategoryRecord](body, "categories", "category")
}

func decodeProducts(body []byte) ([]domain.ProductSummary, error) {
	return decodeList[domain.ProductSummary](body, "products", "product")
}

func decodePrices(body []byte) ([]domain.MetalPrice, error) {
	return decodeList[domain.MetalPrice](body, "prices", "metal price")
}

// objectRaw returns the object under key, or the body when it is the object itself
func objectRaw(body []byte, key string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: %s response is not JSON", ErrUnexpectedShape, key)
	}

	parsed := gjson.ParseBytes(body)
	for _, path := range []string{key, "data." + key, "data"} {
		if v := parsed.Get(path); v.IsObject() {
			return v.Raw, nil
		}
	}
	if parsed.IsObject() {
		return parsed.Raw, nil
	}
	return "", fmt.Errorf("%w: expected %s object", ErrUnexpectedShape, key)
}

func decodeCategory(body []byte) (*domain.CategoryDocument, error) {
	raw, err := objectRaw(body, "category")
	if err != nil {
		return nil, err
	}

	doc := domain.CategoryDocument{CategoryFormState: domain.DefaultCategoryForm()}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &DecodeError{Resource: "category", Index: -1, Err: err}
	}
	if doc.Identifier() == "" {
		return nil, &DecodeError{Resource: "category", Index: -1, Err: fmt.Errorf("missing id")}
	}
	if doc.FocusKeywords == nil {
		doc.FocusKeywords = []string{}
	}
	if doc.Occasions == nil {
		doc.Occasions = []domain.OccasionEntry{}
	}
	return &doc, nil
}

// savedID extracts the id of a created or updated category, if the API echoes one
func savedID(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	parsed := gjson.ParseBytes(body)
	for _, path := range []string{"category._id", "category.id", "data._id", "data.id", "_id", "id"} {
		if v := parsed.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func decodeUploadURL(body []byte) (string, error) {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"url", "data.url", "file.url"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
				return v.String(), nil
			}
		}
	}
	return "", fmt.Errorf("%w: upload response has no url", ErrUnexpectedShape)
}

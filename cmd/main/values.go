package main

import (
	"encoding/json"
	"fmt"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/form"

	"github.com/spf13/viper"
)

// applyValues copies the keys present in v onto the form through its
// mutators, so slug derivation and product lookups apply as in the editor.
func applyValues(f *form.Form, v *viper.Viper) error {
	if v.IsSet("name") {
		f.SetName(v.GetString("name"))
	}
	text := map[string]func(string){
		"slug":            f.SetSlug,
		"description":     f.SetDescription,
		"parentId":        f.SetParent,
		"image":           f.SetImage,
		"icon":            f.SetIcon,
		"banner":          f.SetBanner,
		"metaTitle":       f.SetMetaTitle,
		"metaDescription": f.SetMetaDescription,
	}
	for key, set := range text {
		if v.IsSet(key) {
			set(v.GetString(key))
		}
	}

	bools := map[string]func(bool){
		"isActive":   f.SetActive,
		"showInMenu": f.SetShowInMenu,
		"isFeatured": f.SetFeatured,
	}
	for key, set := range bools {
		if v.IsSet(key) {
			set(v.GetBool(key))
		}
	}

	if v.IsSet("displayOrder") {
		f.SetDisplayOrder(v.GetInt("displayOrder"))
	}
	if v.IsSet("focusKeywords") {
		f.SetFocusKeywords(v.GetStringSlice("focusKeywords"))
	}
	if v.IsSet("megaMenuProductId") {
		if err := f.SetMegaMenuProduct(v.GetString("megaMenuProductId")); err != nil {
			return err
		}
	}

	if !v.IsSet("occasions") {
		return nil
	}
	var occasions []domain.OccasionEntry
	raw, err := json.Marshal(v.Get("occasions"))
	if err != nil {
		return fmt.Errorf("invalid occasions: %w", err)
	}
	if err := json.Unmarshal(raw, &occasions); err != nil {
		return fmt.Errorf("invalid occasions: %w", err)
	}

	for i := len(f.Occasions()) - 1; i >= 0; i-- {
		if err := f.RemoveOccasion(i); err != nil {
			return err
		}
	}
	for i, o := range occasions {
		if err := f.AddOccasion(o.Name); err != nil {
			return fmt.Errorf("occasion %d: %w", i, err)
		}
		if o.ProductID != "" {
			if err := f.BindOccasionProduct(i, o.ProductID); err != nil {
				return fmt.Errorf("occasion %d: %w", i, err)
			}
		}
	}
	return nil
}

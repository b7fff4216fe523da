// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package catalog

import "strings"

// CategoryOther is the default bucket for products no taxonomy entry matches.
const CategoryOther = "other"

// TaxonomyEntry maps a category to the keyword stems that identify it.
// Keywords are matched case-insensitively as substrings of the product name,
// so stems ("registr") catch morphological variants ("registrar", "registry").
type TaxonomyEntry struct {
	Category string   `koanf:"category" json:"category"`
	Keywords []string `koanf:"keywords" json:"keywords"`
}

// Taxonomy is an ordered list of category entries. Order matters: the first
// entry with a matching keyword wins, so more specific categories belong
// earlier in the list.
type Taxonomy []TaxonomyEntry

// Match returns the category of the first entry with a keyword contained in
// name, or ("", false) if nothing matches.
func (t Taxonomy) Match(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, entry := range t {
		for _, kw := range entry.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return entry.Category, true
			}
		}
	}
	return "", false
}

// Contains reports whether category names a taxonomy entry or the default bucket.
func (t Taxonomy) Contains(category string) bool {
	if category == CategoryOther {
		return true
	}
	for _, entry := range t {
		if entry.Category == category {
			return true
		}
	}
	return false
}

// Categories returns all category names in taxonomy order, without "other".
func (t Taxonomy) Categories() []string {
	out := make([]string, 0, len(t))
	for _, entry := range t {
		out = append(out, entry.Category)
	}
	return out
}

// DefaultTaxonomy returns the built-in office/facility-supplies taxonomy.
// Deployments with a different assortment override this via configuration;
// the matching logic is identical either way.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Category: "paper", Keywords: []string{"paper", "a4", "a3", "notebook", "notepad", "envelope", "sticky note"}},
		{Category: "stationery", Keywords: []string{"pen", "pencil", "marker", "stapler", "staple", "eraser", "ruler", "scissors", "folder", "binder", "clip", "corrector", "glue"}},
		{Category: "computers", Keywords: []string{"laptop", "monitor", "keyboard", "mouse", "usb", "ssd", "hdd", "router", "cable", "webcam", "headset"}},
		{Category: "office_equipment", Keywords: []string{"printer", "toner", "cartridge", "shredder", "laminator", "projector", "scanner", "calculator"}},
		{Category: "furniture", Keywords: []string{"chair", "desk", "table", "cabinet", "shelf", "rack", "drawer"}},
		{Category: "cleaning", Keywords: []string{"cleaner", "detergent", "soap", "disinfect", "wipe", "sponge", "mop", "bleach", "trash bag", "gloves"}},
		{Category: "kitchen", Keywords: []string{"coffee", "tea", "sugar", "cup", "kettle", "water bottle", "napkin"}},
		{Category: "electrical", Keywords: []string{"lamp", "bulb", "battery", "extension cord", "socket", "charger"}},
		{Category: "packaging", Keywords: []string{"box", "tape", "bubble wrap", "stretch film", "bag"}},
	}
}

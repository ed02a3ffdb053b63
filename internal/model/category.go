// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CategoryTranslation is the per-language name of a category.
type CategoryTranslation struct {
	ID         int64  `json:"id,omitempty"`
	CategoryID int64  `json:"categoryId,omitempty"`
	Lang       Lang   `json:"lang"`
	Name       string `json:"name"`
}

// IsEmpty reports whether the name is blank.
func (t CategoryTranslation) IsEmpty() bool {
	return t.Name == ""
}

// Category groups articles.
type Category struct {
	ID           int64                 `json:"id,omitempty"`
	CreatedAt    string                `json:"createdAt,omitempty"`
	UpdatedAt    string                `json:"updatedAt,omitempty"`
	Translations []CategoryTranslation `json:"translations"`
}

// Translation returns the translation for lang.
func (c *Category) Translation(lang Lang) (CategoryTranslation, bool) {
	for _, t := range c.Translations {
		if t.Lang == lang {
			return t, true
		}
	}
	return CategoryTranslation{Lang: lang}, false
}

// SetTranslation replaces the translation for t.Lang, or appends it.
func (c *Category) SetTranslation(t CategoryTranslation) {
	for i := range c.Translations {
		if c.Translations[i].Lang == t.Lang {
			if t.ID == 0 {
				t.ID = c.Translations[i].ID
			}
			if t.CategoryID == 0 {
				t.CategoryID = c.Translations[i].CategoryID
			}
			c.Translations[i] = t
			return
		}
	}
	c.Translations = append(c.Translations, t)
}

// RemoveTranslation drops the translation for lang.
func (c *Category) RemoveTranslation(lang Lang) {
	kept := make([]CategoryTranslation, 0, len(c.Translations))
	for _, t := range c.Translations {
		if t.Lang != lang {
			kept = append(kept, t)
		}
	}
	c.Translations = kept
}

// Name returns the name in lang, falling back to any other translation.
func (c *Category) Name(lang Lang) string {
	if t, ok := c.Translation(lang); ok && t.Name != "" {
		return t.Name
	}
	for _, t := range c.Translations {
		if t.Name != "" {
			return t.Name
		}
	}
	return ""
}

// Clone returns a copy that shares no translation storage with the receiver.
func (c Category) Clone() Category {
	c.Translations = append([]CategoryTranslation(nil), c.Translations...)
	return c
}

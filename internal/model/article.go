// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ArticleTranslation is the per-language text of an article.
type ArticleTranslation struct {
	ID        int64  `json:"id,omitempty"`
	ArticleID int64  `json:"articleId,omitempty"`
	Lang      Lang   `json:"lang"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
}

// IsEmpty reports whether no text field is filled.
func (t ArticleTranslation) IsEmpty() bool {
	return t.Title == "" && t.Excerpt == "" && t.Content == "" && t.Author == ""
}

// Article is a news/blog article with one translation per language.
type Article struct {
	ID            int64                `json:"id,omitempty"`
	CategoryID    int64                `json:"categoryId"`
	CoverImage    string               `json:"cover_image,omitempty"`
	VideoURL      string               `json:"video_url,omitempty"`
	PublishedDate string               `json:"published_date,omitempty"`
	ReadingTime   int                  `json:"reading_time,omitempty"`
	CreatedByID   int64                `json:"created_by_id,omitempty"`
	CreatedAt     string               `json:"createdAt,omitempty"`
	UpdatedAt     string               `json:"updatedAt,omitempty"`
	Translations  []ArticleTranslation `json:"translations"`
}

// Translation returns the translation for lang.
func (a *Article) Translation(lang Lang) (ArticleTranslation, bool) {
	for _, t := range a.Translations {
		if t.Lang == lang {
			return t, true
		}
	}
	return ArticleTranslation{Lang: lang}, false
}

// SetTranslation replaces the translation for t.Lang, or appends it.
// The backend id of an existing translation is preserved.
func (a *Article) SetTranslation(t ArticleTranslation) {
	for i := range a.Translations {
		if a.Translations[i].Lang == t.Lang {
			if t.ID == 0 {
				t.ID = a.Translations[i].ID
			}
			if t.ArticleID == 0 {
				t.ArticleID = a.Translations[i].ArticleID
			}
			a.Translations[i] = t
			return
		}
	}
	a.Translations = append(a.Translations, t)
}

// RemoveTranslation drops the translation for lang.
func (a *Article) RemoveTranslation(lang Lang) {
	kept := make([]ArticleTranslation, 0, len(a.Translations))
	for _, t := range a.Translations {
		if t.Lang != lang {
			kept = append(kept, t)
		}
	}
	a.Translations = kept
}

// Title returns the title in lang, falling back to any other translation.
func (a *Article) Title(lang Lang) string {
	if t, ok := a.Translation(lang); ok && t.Title != "" {
		return t.Title
	}
	for _, t := range a.Translations {
		if t.Title != "" {
			return t.Title
		}
	}
	return ""
}

// Clone returns a copy that shares no translation storage with the receiver.
func (a Article) Clone() Article {
	a.Translations = append([]ArticleTranslation(nil), a.Translations...)
	return a
}

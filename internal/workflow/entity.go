// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

import (
	"context"
	"strings"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/model"
)

// Fields is the text of one language. Articles use Title, Excerpt, Content
// and Author; categories use Name.
type Fields struct {
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Content string `json:"content,omitempty"`
	Author  string `json:"author,omitempty"`
	Name    string `json:"name,omitempty"`
}

// IsZero reports whether every field is empty.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// ArticleMeta holds the language independent article fields.
type ArticleMeta struct {
	CategoryID    int64
	VideoURL      string
	PublishedDate string
	ReadingTime   int
}

// Backend persists articles and categories.
type Backend interface {
	CreateArticle(ctx context.Context, a *model.Article, cover *apiclient.Upload) (*model.Article, error)
	UpdateArticle(ctx context.Context, id int64, a *model.Article, cover *apiclient.Upload) (*model.Article, error)
	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, c *model.Category) (*model.Category, error)
}

// record is the entity being edited, independent of its kind.
type record interface {
	id() int64
	fields(lang model.Lang) Fields
	withFields(lang model.Lang, f Fields) record
	without(lang model.Lang) record
	validate(primary Fields) error
	save(ctx context.Context, b Backend, cover *apiclient.Upload) (record, error)
}

type articleRecord struct {
	a model.Article
}

func (r articleRecord) id() int64 { return r.a.ID }

func (r articleRecord) fields(lang model.Lang) Fields {
	t, _ := r.a.Translation(lang)
	return Fields{Title: t.Title, Excerpt: t.Excerpt, Content: t.Content, Author: t.Author}
}

func (r articleRecord) withFields(lang model.Lang, f Fields) record {
	a := r.a.Clone()
	a.SetTranslation(model.ArticleTranslation{
		ArticleID: a.ID,
		Lang:      lang,
		Title:     f.Title,
		Excerpt:   f.Excerpt,
		Content:   f.Content,
		Author:    f.Author,
	})
	return articleRecord{a: a}
}

func (r articleRecord) without(lang model.Lang) record {
	a := r.a.Clone()
	a.RemoveTranslation(lang)
	return articleRecord{a: a}
}

func (r articleRecord) validate(primary Fields) error {
	if strings.TrimSpace(primary.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(primary.Content) == "" {
		return &ValidationError{Field: "content"}
	}
	if r.a.CategoryID == 0 {
		return &ValidationError{Field: "category"}
	}
	return nil
}

func (r articleRecord) save(ctx context.Context, b Backend, cover *apiclient.Upload) (record, error) {
	a := r.a.Clone()
	var (
		saved *model.Article
		err   error
	)
	if a.ID == 0 {
		saved, err = b.CreateArticle(ctx, &a, cover)
	} else {
		saved, err = b.UpdateArticle(ctx, a.ID, &a, cover)
	}
	if err != nil {
		return nil, err
	}
	return articleRecord{a: mergeSaved(&a, saved)}, nil
}

// mergeSaved prefers the backend's copy but keeps the submitted translations
// when the backend omitted them.
func mergeSaved(sent, saved *model.Article) model.Article {
	if saved == nil || saved == sent {
		return *sent
	}
	out := saved.Clone()
	if out.ID == 0 {
		out.ID = sent.ID
	}
	if len(out.Translations) == 0 {
		out.Translations = sent.Clone().Translations
	}
	return out
}

type categoryRecord struct {
	c model.Category
}

func (r categoryRecord) id() int64 { return r.c.ID }

func (r categoryRecord) fields(lang model.Lang) Fields {
	t, _ := r.c.Translation(lang)
	return Fields{Name: t.Name}
}

func (r categoryRecord) withFields(lang model.Lang, f Fields) record {
	c := r.c.Clone()
	c.SetTranslation(model.CategoryTranslation{CategoryID: c.ID, Lang: lang, Name: f.Name})
	return categoryRecord{c: c}
}

func (r categoryRecord) without(lang model.Lang) record {
	c := r.c.Clone()
	c.RemoveTranslation(lang)
	return categoryRecord{c: c}
}

func (r categoryRecord) validate(primary Fields) error {
	if strings.TrimSpace(primary.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	return nil
}

func (r categoryRecord) save(ctx context.Context, b Backend, _ *apiclient.Upload) (record, error) {
	c := r.c.Clone()
	var (
		saved *model.Category
		err   error
	)
	if c.ID == 0 {
		saved, err = b.CreateCategory(ctx, &c)
	} else {
		saved, err = b.UpdateCategory(ctx, c.ID, &c)
	}
	if err != nil {
		return nil, err
	}
	if saved == nil || saved == &c {
		return categoryRecord{c: c}, nil
	}
	out := saved.Clone()
	if out.ID == 0 {
		out.ID = c.ID
	}
	if len(out.Translations) == 0 {
		out.Translations = c.Clone().Translations
	}
	return categoryRecord{c: out}, nil
}

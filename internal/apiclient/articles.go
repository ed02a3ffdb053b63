// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/solarhub/solar-admin/internal/model"
)

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func paginationQuery(p model.Pagination) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(p.Limit)},
		"offset": {strconv.Itoa(p.Offset())},
	}
}

// ListArticles returns one page of articles.
func (c *Client) ListArticles(ctx context.Context, p model.Pagination) (model.Page[model.Article], error) {
	p = p.Normalize(model.DefaultArticleLimit)
	respBody, err := c.send(ctx, http.MethodGet, "articles", requestOptions{query: paginationQuery(p)})
	if err != nil {
		return model.Page[model.Article]{}, err
	}
	return decodeList[model.Article](respBody, p, "articles")
}

// GetArticle returns a single article.
func (c *Client) GetArticle(ctx context.Context, id int64) (*model.Article, error) {
	respBody, err := c.send(ctx, http.MethodGet, articlePath(id), requestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Article](respBody, "article")
}

// CreateArticle creates an article. A non-nil cover switches the request to
// multipart/form-data.
func (c *Client) CreateArticle(ctx context.Context, a *model.Article, cover *Upload) (*model.Article, error) {
	return c.saveArticle(ctx, http.MethodPost, "articles", a, cover)
}

// UpdateArticle replaces an article.
func (c *Client) UpdateArticle(ctx context.Context, id int64, a *model.Article, cover *Upload) (*model.Article, error) {
	return c.saveArticle(ctx, http.MethodPut, articlePath(id), a, cover)
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id int64) error {
	return c.deleteResource(ctx, articlePath(id))
}

func articlePath(id int64) string {
	return "articles/" + strconv.FormatInt(id, 10)
}

func (c *Client) saveArticle(ctx context.Context, method, target string, a *model.Article, cover *Upload) (*model.Article, error) {
	var ro requestOptions
	if cover != nil {
		body, contentType, err := articleMultipart(a, cover)
		if err != nil {
			return nil, err
		}
		ro = requestOptions{body: body, contentType: contentType}
	} else {
		jsonBody, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		ro = requestOptions{body: bytes.NewReader(jsonBody), contentType: "application/json"}
	}

	respBody, err := c.send(ctx, method, target, ro)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return a, nil
	}
	saved, err := decodeOne[model.Article](respBody, "article")
	if err != nil {
		return nil, err
	}
	// Some endpoints answer with only {success, message}.
	if saved.ID == 0 && len(saved.Translations) == 0 {
		return a, nil
	}
	return saved, nil
}

// articleMultipart encodes the article as form fields plus the cover file.
// Translations travel as a JSON string field.
func articleMultipart(a *model.Article, cover *Upload) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	translations, err := json.Marshal(a.Translations)
	if err != nil {
		return nil, "", fmt.Errorf("marshal translations: %w", err)
	}

	fields := [][2]string{
		{"categoryId", strconv.FormatInt(a.CategoryID, 10)},
		{"translations", string(translations)},
	}
	if a.VideoURL != "" {
		fields = append(fields, [2]string{"video_url", a.VideoURL})
	}
	if a.PublishedDate != "" {
		fields = append(fields, [2]string{"published_date", a.PublishedDate})
	}
	if a.ReadingTime > 0 {
		fields = append(fields, [2]string{"reading_time", strconv.Itoa(a.ReadingTime)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}

	contentType := cover.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cover_image"; filename=%q`, cover.Filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating cover part: %w", err)
	}
	if _, err := part.Write(cover.Data); err != nil {
		return nil, "", fmt.Errorf("writing cover: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solar-admin/internal/model"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", staticToken(token))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New("/api", nil)
	assert.Error(t, err)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"rows":[],"count":0}`)
	}, "tok-123")

	_, err := c.ListArticles(context.Background(), model.Pagination{Page: 2, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/articles", gotPath)
	assert.Equal(t, "limit=20&offset=20", gotQuery)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}, "")

	_, err := c.ListUsers(context.Background(), model.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestLogin_IsAnonymousAndDecodes(t *testing.T) {
	var gotAuth string
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"token":"a.b.c","message":"ok"}`)
	}, "stale")

	resp, err := c.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.Equal(t, "admin@example.com", body["email"])
	assert.Equal(t, "secret", body["password"])
	assert.Equal(t, "a.b.c", resp.Token)
}

func TestLogin_BackendMessageOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Wrong password"}`)
	}, "")

	_, err := c.Login(context.Background(), "a", "b")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Wrong password", MessageOf(err, "fallback"))
	assert.True(t, IsUnauthorized(err))
}

func TestMessageOf_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", MessageOf(errors.New("boom"), "fallback"))
}

func TestListContactMessages_Envelope(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"success":true,"totalRecords":25,"totalPages":3,"currentPage":2,"perPage":10,
			"data":[{"id":11,"name":"Sara","email":"s@x","phone":"1","subject":"Hi","message":"Hello","createdAt":"2024-05-01T10:00:00Z"}]}`)
	}, "t")

	page, err := c.ListContactMessages(context.Background(), model.Pagination{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "limit=10&page=2", gotQuery)
	assert.Equal(t, 25, page.TotalRecords)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sara", page.Items[0].Name)
}

func TestDecodeList_Shapes(t *testing.T) {
	p := model.Pagination{Page: 1, Limit: 2}

	t.Run("rows and count", func(t *testing.T) {
		page, err := decodeList[model.Category]([]byte(`{"rows":[{"id":1},{"id":2}],"count":5}`), p)
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalRecords)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Items, 2)
	})

	t.Run("bare array", func(t *testing.T) {
		page, err := decodeList[model.Subscriber]([]byte(`[{"id":1,"is_active":true}]`), p)
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalRecords)
		assert.True(t, page.Items[0].IsActive)
	})

	t.Run("named key", func(t *testing.T) {
		page, err := decodeList[model.CMSUser]([]byte(`{"users":[{"id":"u1","role":"Admin"}]}`), p, "users")
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, model.FlexID("u1"), page.Items[0].ID)
	})

	t.Run("empty body", func(t *testing.T) {
		page, err := decodeList[model.Article](nil, p)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 0, page.Len())
	})
}

func TestCreateArticle_JSON(t *testing.T) {
	var got model.Article
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"article":{"id":42,"categoryId":3,"translations":[{"id":1,"articleId":42,"lang":"en","title":"T","excerpt":"","content":"C"}]}}`)
	}, "t")

	a := &model.Article{CategoryID: 3, Translations: []model.ArticleTranslation{{Lang: model.LangEN, Title: "T", Content: "C"}}}
	saved, err := c.CreateArticle(context.Background(), a, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, int64(3), got.CategoryID)
	assert.Equal(t, int64(42), saved.ID)
}

func TestUpdateArticle_MultipartWithCover(t *testing.T) {
	var fields map[string]string
	var coverName string
	var coverData []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/articles/9", r.URL.Path)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		fields = map[string]string{
			"categoryId":   r.FormValue("categoryId"),
			"translations": r.FormValue("translations"),
			"video_url":    r.FormValue("video_url"),
		}
		f, hdr, err := r.FormFile("cover_image")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer func() { _ = f.Close() }()
		coverName = hdr.Filename
		coverData, _ = io.ReadAll(f)
		_, _ = io.WriteString(w, `{"success":true}`)
	}, "t")

	a := &model.Article{ID: 9, CategoryID: 4, VideoURL: "https://v", Translations: []model.ArticleTranslation{{Lang: model.LangAR, Title: "ع"}}}
	saved, err := c.UpdateArticle(context.Background(), 9, a, &Upload{Filename: "cover.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")})
	require.NoError(t, err)

	assert.Equal(t, "4", fields["categoryId"])
	assert.Equal(t, "https://v", fields["video_url"])
	assert.True(t, strings.Contains(fields["translations"], `"lang":"ar"`))
	assert.Equal(t, "cover.jpg", coverName)
	assert.Equal(t, []byte("jpegdata"), coverData)
	assert.Same(t, a, saved)
}

func TestDelete_SuccessFalseIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = io.WriteString(w, `{"success":false,"message":"in use"}`)
	}, "t")

	err := c.DeleteCategory(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "in use", MessageOf(err, ""))
}

func TestDeleteUser_Path(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}, "t")

	require.NoError(t, c.DeleteUser(context.Background(), "abc"))
	assert.Equal(t, "/api/auth/users/abc", gotPath)
}

func TestSignup_Body(t *testing.T) {
	var got model.SignupRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signup", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"message":"created"}`)
	}, "t")

	err := c.Signup(context.Background(), model.SignupRequest{Name: "N", Email: "e@x", Password: "p", RoleID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, got.RoleID)
}

func TestDoRaw_AbsoluteURL(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		_, _ = io.WriteString(w, `{"translatedText":"مرحبا"}`)
	}))
	t.Cleanup(other.Close)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("base server should not be called")
	}, "t")

	body, err := c.DoRaw(context.Background(), other.URL+"/translate", map[string]string{"q": "hello"})
	require.NoError(t, err)
	assert.Contains(t, string(body), "translatedText")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", errorMessage([]byte(`{"error":"nope"}`), "500 Internal Server Error"))
	assert.Equal(t, "plain text", errorMessage([]byte(`plain text`), "500"))
	assert.Equal(t, "502 Bad Gateway", errorMessage([]byte(`<html>bad</html>`), "502 Bad Gateway"))
}

func TestDoRaw_ForeignHostGetsNoToken(t *testing.T) {
	var gotAuth string
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(other.Close)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "secret-token")

	_, err := c.DoRaw(context.Background(), other.URL+"/translate", map[string]string{"q": "x"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestContextWithToken_OverridesSource(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"success":true}`)
	}, "session-token")

	ctx := ContextWithToken(context.Background(), "pinned")
	require.NoError(t, c.DeleteArticle(ctx, 1))
	assert.Equal(t, "Bearer pinned", gotAuth)
}

func TestClient_RejectedTokenRunsUnauthorizedHandler(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = io.WriteString(w, `{"message":"jwt expired"}`)
	}))
	t.Cleanup(srv.Close)

	type ctxKey struct{}
	var seen []string
	c, err := New(srv.URL, staticToken("tok"), WithUnauthorizedHandler(func(ctx context.Context) {
		v, _ := ctx.Value(ctxKey{}).(string)
		seen = append(seen, v)
	}))
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	_, err = c.ListArticles(ctx, model.Pagination{})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, []string{"req-1"}, seen)

	// Signing in carries no token, so a refused login is not a rejected token.
	_, err = c.Login(ctx, "a", "b")
	require.Error(t, err)
	assert.Len(t, seen, 1)

	status.Store(http.StatusForbidden)
	err = c.DeleteArticle(ctx, 3)
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Len(t, seen, 1)
}

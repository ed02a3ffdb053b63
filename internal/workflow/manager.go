// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/model"
)

// Translator suggests text in another language. It returns "" when it has
// nothing to offer.
type Translator interface {
	Translate(ctx context.Context, text string, source, target model.Lang) string
}

// Workflow is one bilingual edit in progress.
type Workflow struct {
	ID    string
	Kind  Kind
	Owner string

	Primary   model.Lang
	Secondary model.Lang

	// writeMu orders backend writes of the workflow. It is taken before mu.
	writeMu sync.Mutex

	mu            sync.Mutex
	state         State
	saved         record // last version the backend accepted, or the starting point
	primary       Fields
	secondary     Fields
	meta          ArticleMeta
	cover         *apiclient.Upload
	generation    int
	lastErr       string
	updatedAt     time.Time
	translateDone chan struct{}
}

// Snapshot is a consistent view of a workflow for rendering and polling.
type Snapshot struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	State       string     `json:"state"`
	Translating bool       `json:"translating"`
	RecordID    int64      `json:"recordId"`
	Primary     model.Lang `json:"primary"`
	Secondary   model.Lang `json:"secondary"`
	PrimaryText Fields     `json:"primaryFields"`
	Suggestion  Fields     `json:"secondaryFields"`
	CategoryID  int64      `json:"categoryId,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Options configures a Manager.
type Options struct {
	TranslateTimeout time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

// Manager owns the workflows of all sessions.
type Manager struct {
	backend    Backend
	translator Translator
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.RWMutex
	workflows map[string]*Workflow
	wg        sync.WaitGroup
}

// NewManager creates a Manager.
func NewManager(backend Backend, translator Translator, opts Options) *Manager {
	if opts.TranslateTimeout <= 0 {
		opts.TranslateTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		backend:    backend,
		translator: translator,
		timeout:    opts.TranslateTimeout,
		logger:     opts.Logger,
		now:        opts.Now,
		workflows:  make(map[string]*Workflow),
	}
}

// StartArticle opens an article workflow. existing is nil for a new article.
func (m *Manager) StartArticle(owner string, primary model.Lang, existing *model.Article) *Workflow {
	var a model.Article
	if existing != nil {
		a = existing.Clone()
	}
	w := m.start(owner, KindArticle, primary, articleRecord{a: a})
	w.meta = ArticleMeta{
		CategoryID:    a.CategoryID,
		VideoURL:      a.VideoURL,
		PublishedDate: a.PublishedDate,
		ReadingTime:   a.ReadingTime,
	}
	return w
}

// StartCategory opens a category workflow. existing is nil for a new category.
func (m *Manager) StartCategory(owner string, primary model.Lang, existing *model.Category) *Workflow {
	var c model.Category
	if existing != nil {
		c = existing.Clone()
	}
	return m.start(owner, KindCategory, primary, categoryRecord{c: c})
}

func (m *Manager) start(owner string, kind Kind, primary model.Lang, rec record) *Workflow {
	w := &Workflow{
		ID:        uuid.NewString(),
		Kind:      kind,
		Owner:     owner,
		Primary:   primary,
		Secondary: primary.Other(),
		state:     Editing,
		saved:     rec,
		primary:   rec.fields(primary),
		secondary: rec.fields(primary.Other()),
		updatedAt: m.now(),
	}

	m.mu.Lock()
	m.workflows[w.ID] = w
	m.mu.Unlock()

	return w
}

// Get returns the workflow id if it belongs to owner.
func (m *Manager) Get(id, owner string) (*Workflow, error) {
	m.mu.RLock()
	w, ok := m.workflows[id]
	m.mu.RUnlock()
	if !ok || w.Owner != owner {
		return nil, ErrNotFound
	}
	return w, nil
}

// SaveInput is the primary-language form.
type SaveInput struct {
	Fields Fields
	Meta   ArticleMeta       // articles only
	Cover  *apiclient.Upload // articles only, optional
}

// Save validates and persists the primary language, keeping any previously
// saved secondary translation, then starts the background translation.
// On failure the workflow stays in Editing.
func (m *Manager) Save(ctx context.Context, id, owner string, in SaveInput) (Snapshot, error) {
	w, err := m.Get(id, owner)
	if err != nil {
		return Snapshot{}, err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if w.state != Editing {
		w.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}

	rec := w.saved.withFields(w.Primary, in.Fields)
	if ar, ok := rec.(articleRecord); ok {
		ar.a.CategoryID = in.Meta.CategoryID
		ar.a.VideoURL = in.Meta.VideoURL
		ar.a.PublishedDate = in.Meta.PublishedDate
		ar.a.ReadingTime = in.Meta.ReadingTime
		rec = ar
	}
	if err := rec.validate(in.Fields); err != nil {
		w.mu.Unlock()
		return Snapshot{}, err
	}

	// Only what the backend already holds for the secondary language is sent.
	savedSecondary := w.saved.fields(w.Secondary)
	if savedSecondary.IsZero() {
		rec = rec.without(w.Secondary)
	} else {
		rec = rec.withFields(w.Secondary, savedSecondary)
	}

	w.state = Saving
	w.primary = in.Fields
	w.meta = in.Meta
	w.cover = in.Cover
	w.lastErr = ""
	w.mu.Unlock()

	saved, err := rec.save(ctx, m.backend, in.Cover)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.updatedAt = m.now()

	if err != nil {
		w.state = Editing
		w.lastErr = apiclient.MessageOf(err, err.Error())
		return w.snapshotLocked(), err
	}

	w.saved = saved
	w.cover = nil
	w.generation++
	w.state = Translating
	w.translateDone = make(chan struct{})

	m.wg.Add(1)
	go m.translate(context.WithoutCancel(ctx), w, w.generation, w.primary, w.secondary, w.translateDone)

	return w.snapshotLocked(), nil
}

// translate fills the secondary fields and persists the merged record. A
// result is dropped when the workflow moved on since run gen started.
func (m *Manager) translate(ctx context.Context, w *Workflow, gen int, primary, current Fields, done chan struct{}) {
	defer m.wg.Done()
	defer close(done)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	suggestion := current
	pairs := []struct {
		src string
		dst *string
	}{
		{primary.Title, &suggestion.Title},
		{primary.Excerpt, &suggestion.Excerpt},
		{primary.Content, &suggestion.Content},
		{primary.Author, &suggestion.Author},
		{primary.Name, &suggestion.Name},
	}
	changed := false
	for _, p := range pairs {
		if p.src == "" {
			continue
		}
		if out := m.translator.Translate(ctx, p.src, w.Primary, w.Secondary); out != "" {
			*p.dst = out
			changed = true
		}
	}

	// Held until the merged record is written, so a confirm waits for it and
	// its own write lands last.
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if w.generation != gen || w.state != Translating {
		w.mu.Unlock()
		m.logger.Debug("dropping stale translation", "workflow", w.ID, "generation", gen)
		return
	}
	w.secondary = suggestion
	merged := w.saved.withFields(w.Secondary, suggestion)
	w.mu.Unlock()

	var (
		saved   record
		saveErr error
	)
	if changed {
		if merged.id() == 0 {
			saveErr = ErrNoRecordID
		} else {
			saved, saveErr = merged.save(ctx, m.backend, nil)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen || w.state != Translating {
		return
	}
	if saveErr != nil {
		m.logger.Warn("persisting translated record", "workflow", w.ID, "error", saveErr)
		w.lastErr = apiclient.MessageOf(saveErr, saveErr.Error())
	} else if saved != nil {
		w.saved = saved
	}
	w.state = ConfirmingTranslation
	w.updatedAt = m.now()
}

// Confirm persists the final text of both languages and commits the
// workflow. It is allowed while the suggestion is still being fetched; the
// operator's secondary text then wins and the late result is dropped. A
// background write already in flight finishes first. On failure the workflow
// stays in ConfirmingTranslation.
func (m *Manager) Confirm(ctx context.Context, id, owner string, primary, secondary Fields) (Snapshot, error) {
	w, err := m.Get(id, owner)
	if err != nil {
		return Snapshot{}, err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if w.state != ConfirmingTranslation && w.state != Translating {
		w.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}
	rec := w.saved.withFields(w.Primary, primary)
	if err := rec.validate(primary); err != nil {
		w.mu.Unlock()
		return Snapshot{}, err
	}
	if secondary.IsZero() {
		rec = rec.without(w.Secondary)
	} else {
		rec = rec.withFields(w.Secondary, secondary)
	}
	if rec.id() == 0 {
		w.mu.Unlock()
		return Snapshot{}, ErrNoRecordID
	}
	if w.state == Translating {
		w.generation++
		w.state = ConfirmingTranslation
	}
	w.primary = primary
	w.secondary = secondary
	w.mu.Unlock()

	saved, err := rec.save(ctx, m.backend, nil)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.updatedAt = m.now()
	if err != nil {
		w.lastErr = apiclient.MessageOf(err, err.Error())
		return w.snapshotLocked(), err
	}
	w.saved = saved
	w.state = Committed
	w.lastErr = ""
	return w.snapshotLocked(), nil
}

// Back returns to Editing. Secondary edits are discarded, primary text is
// kept. A translation still running is ignored when it completes.
func (m *Manager) Back(id, owner string) (Snapshot, error) {
	w, err := m.Get(id, owner)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != ConfirmingTranslation && w.state != Translating {
		return Snapshot{}, ErrInvalidState
	}
	w.generation++
	w.state = Editing
	w.secondary = w.saved.fields(w.Secondary)
	w.updatedAt = m.now()
	return w.snapshotLocked(), nil
}

// Discard removes a workflow.
func (m *Manager) Discard(id, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workflows[id]; ok && w.Owner == owner {
		delete(m.workflows, id)
	}
}

// Sweep removes committed workflows and those idle for longer than ttl. It
// returns the number removed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, w := range m.workflows {
		w.mu.Lock()
		stale := w.state == Committed || w.updatedAt.Before(cutoff)
		if stale {
			w.generation++
		}
		w.mu.Unlock()
		if stale {
			delete(m.workflows, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live workflows.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workflows)
}

// Wait blocks until background translations finish or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current view of the workflow.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// TranslationDone is closed when the latest translation run finishes. It is
// nil before the first save.
func (w *Workflow) TranslationDone() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.translateDone
}

func (w *Workflow) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          w.ID,
		Kind:        w.Kind,
		State:       w.state.String(),
		Translating: w.state == Translating,
		RecordID:    w.saved.id(),
		Primary:     w.Primary,
		Secondary:   w.Secondary,
		PrimaryText: w.primary,
		Suggestion:  w.secondary,
		CategoryID:  w.meta.CategoryID,
		Error:       w.lastErr,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Meta returns the article fields of the last save.
func (w *Workflow) Meta() ArticleMeta {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.meta
}

// Package service wires the record store, catalog cache, drafts, sessions, AI
// backend and publish pipeline into the single object the HTTP server and
// the CLI talk to.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/waajacu/minerals/internal/ai"
	"github.com/waajacu/minerals/internal/catalog"
	"github.com/waajacu/minerals/internal/drafts"
	"github.com/waajacu/minerals/internal/publish"
	"github.com/waajacu/minerals/internal/render"
	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/sessions"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/internal/sweep"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Config configures a Service.
type Config struct {
	DataRoot             string
	AdminPassword        string
	TranslateTimeout     time.Duration
	TranslateConcurrency int
	ReportCacheSize      int
}

// Service is the catalog service.
type Service struct {
	store    *store.Store
	cache    *catalog.Cache
	drafts   *drafts.Store
	sessions *sessions.Manager
	ai       ai.Service
	pipeline *publish.Pipeline
	reports  *report.Cache
	renderer *render.Renderer
	now      func() time.Time

	hooksMu        sync.RWMutex
	onPublished    []func(publish.Result)
	onDraftsClear  []func(n int)
	onSwept        []func(removed []string)
	onInvalidation []func()
}

type options struct {
	ai       ai.Service
	compiler render.Compiler
	archiver publish.Archiver
	now      func() time.Time
}

// Option configures a Service.
type Option func(*options)

// WithAI sets the AI backend. The default is ai.Disabled.
func WithAI(svc ai.Service) Option {
	return func(o *options) { o.ai = svc }
}

// WithCompiler sets the PDF compiler. The default runs latexmk.
func WithCompiler(c render.Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// WithArchiver mirrors published folders through a.
func WithArchiver(a publish.Archiver) Option {
	return func(o *options) { o.archiver = a }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Service.
func New(cfg Config, opts ...Option) (*Service, error) {
	o := options{ai: ai.Disabled{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.AdminPassword == "" {
		return nil, errors.NewConfigError("service", "admin password is required", nil)
	}
	if cfg.ReportCacheSize <= 0 {
		cfg.ReportCacheSize = constants.ReportCacheSize
	}

	st := store.New(cfg.DataRoot)
	if err := st.Ensure(); err != nil {
		return nil, err
	}
	reports, err := report.NewCache(cfg.ReportCacheSize)
	if err != nil {
		return nil, errors.NewConfigError("service", "report cache", err)
	}

	s := &Service{
		store:    st,
		cache:    catalog.New(st),
		drafts:   drafts.New(),
		sessions: sessions.NewManager(cfg.AdminPassword),
		ai:       ai.Instrument(o.ai),
		reports:  reports,
		renderer: render.New(st, o.compiler),
		now:      o.now,
	}

	popts := []publish.Option{
		publish.WithConcurrency(cfg.TranslateConcurrency),
		publish.WithTranslateTimeout(cfg.TranslateTimeout),
		publish.WithListener(s),
	}
	if o.archiver != nil {
		popts = append(popts, publish.WithArchiver(o.archiver))
	}
	s.pipeline = publish.New(st, s.drafts, s.ai, s, popts...)
	return s, nil
}

// Store returns the record store.
func (s *Service) Store() *store.Store { return s.store }

// AIProvider names the configured AI backend.
func (s *Service) AIProvider() string { return s.ai.Name() }

// Catalog returns the catalog for lang.
func (s *Service) Catalog(ctx context.Context, lang i18n.Code) (*minerals.Catalog, error) {
	return s.cache.Get(ctx, lang)
}

// Mineral returns one record resolved for lang.
func (s *Service) Mineral(ctx context.Context, lang i18n.Code, id string) (minerals.Mineral, error) {
	cat, err := s.cache.Get(ctx, lang)
	if err != nil {
		return minerals.Mineral{}, err
	}
	m, ok := cat.Get(id)
	if !ok {
		return minerals.Mineral{}, errors.NewNotFoundError("mineral", id)
	}
	return m, nil
}

// Invalidate drops cached catalogs and reports. The next read rescans disk.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
	s.reports.Invalidate()

	s.hooksMu.RLock()
	hooks := append([]func(){}, s.onInvalidation...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// Login starts an admin session.
func (s *Service) Login(password string) (string, error) {
	return s.sessions.Login(password)
}

// Authorized reports whether tok is a live admin session.
func (s *Service) Authorized(tok string) bool {
	return s.sessions.Valid(tok)
}

// SessionTTL is the admin session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// Logout ends an admin session and discards every pending draft.
func (s *Service) Logout(ctx context.Context, tok string) {
	s.sessions.Logout(tok)
	n := s.drafts.ClearAll()
	logging.FromContext(ctx).Info().Int("drafts_cleared", n).Msg("Admin logged out")

	s.hooksMu.RLock()
	hooks := append([]func(int){}, s.onDraftsClear...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(n)
	}
}

// SuggestInput is an uploaded photo awaiting a suggestion.
type SuggestInput struct {
	Image       []byte
	FileName    string
	ContentType string
	Context     string
}

// SuggestResult is the outcome of the suggest step.
type SuggestResult struct {
	DraftID           string        `json:"draft_id"`
	Suggestion        ai.Suggestion `json:"suggestion"`
	MajorElementsText string        `json:"major_elements_text"`
	Provider          string        `json:"provider"`
}

// Suggest asks the AI backend for a proposed record and stores the image as
// a draft. A provider failure stores nothing. Without a configured provider
// the draft is stored with an empty suggestion.
func (s *Service) Suggest(ctx context.Context, in SuggestInput) (SuggestResult, error) {
	if len(in.Image) == 0 {
		return SuggestResult{}, errors.NewValidationError("image", nil, "image upload is required")
	}
	ext, err := minerals.DetectImageExt(in.FileName, in.ContentType)
	if err != nil {
		return SuggestResult{}, err
	}

	var suggestion ai.Suggestion
	if !ai.IsDisabled(s.ai) {
		sctx, cancel := context.WithTimeout(ctx, constants.SuggestTimeout)
		suggestion, err = s.ai.Suggest(sctx, ai.SuggestRequest{Image: in.Image, Ext: ext, Context: in.Context})
		cancel()
		if err != nil {
			return SuggestResult{}, err
		}
	}

	id, err := s.drafts.Put(in.Image, ext)
	if err != nil {
		return SuggestResult{}, err
	}
	logging.FromContext(ctx).Info().Str("draft_id", id).Str("ext", ext).Msg("Draft created")
	return SuggestResult{
		DraftID:           id,
		Suggestion:        suggestion,
		MajorElementsText: suggestion.ElementsText(),
		Provider:          s.ai.Name(),
	}, nil
}

// Publish turns a draft into a record.
func (s *Service) Publish(ctx context.Context, draftID string, fields publish.Fields) (publish.Result, error) {
	return s.pipeline.Publish(ctx, draftID, fields)
}

// PendingDrafts is the number of drafts awaiting publish.
func (s *Service) PendingDrafts() int {
	return s.drafts.Len()
}

// Report returns the analysis report for a record.
func (s *Service) Report(ctx context.Context, lang i18n.Code, id string, req report.Request) (report.Report, error) {
	m, err := s.Mineral(ctx, lang, id)
	if err != nil {
		return report.Report{}, err
	}
	return s.reports.Get(lang, m, req), nil
}

// RenderReport writes the report documents for a record into its folder.
func (s *Service) RenderReport(ctx context.Context, lang i18n.Code, id string, req report.Request) (render.Artifacts, error) {
	rep, err := s.Report(ctx, lang, id, req)
	if err != nil {
		return render.Artifacts{}, err
	}
	return s.renderer.Render(ctx, i18n.MustLookup(lang), rep)
}

// SweepResult lists orphaned folders and, when applied, which were removed.
type SweepResult struct {
	Orphans []sweep.Orphan `json:"orphans"`
	Removed []string       `json:"removed"`
	Applied bool           `json:"applied"`
}

// Sweep finds folders left by failed publishes and removes them when apply
// is set.
func (s *Service) Sweep(ctx context.Context, olderThan time.Duration, apply bool) (SweepResult, error) {
	if err := sweep.CheckAge(olderThan, apply); err != nil {
		return SweepResult{}, err
	}
	orphans, err := sweep.Find(s.store, olderThan, s.now())
	if err != nil {
		return SweepResult{}, err
	}
	res := SweepResult{Orphans: orphans, Removed: []string{}, Applied: apply}
	if !apply || len(orphans) == 0 {
		return res, nil
	}
	if res.Removed, err = sweep.Remove(ctx, orphans); err != nil {
		return res, err
	}

	s.hooksMu.RLock()
	hooks := append([]func([]string){}, s.onSwept...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(res.Removed)
	}
	return res, nil
}

// Wait blocks until background work started by publishes has finished.
func (s *Service) Wait() {
	s.pipeline.Wait()
}

// Published implements publish.Listener.
func (s *Service) Published(_ context.Context, r publish.Result) {
	s.hooksMu.RLock()
	hooks := append([]func(publish.Result){}, s.onPublished...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(r)
	}
}

// OnPublished registers fn to run after every successful publish.
func (s *Service) OnPublished(fn func(publish.Result)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onPublished = append(s.onPublished, fn)
}

// OnDraftsCleared registers fn to run after a logout discards drafts.
func (s *Service) OnDraftsCleared(fn func(n int)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onDraftsClear = append(s.onDraftsClear, fn)
}

// OnSwept registers fn to run after orphaned folders are removed.
func (s *Service) OnSwept(fn func(removed []string)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onSwept = append(s.onSwept, fn)
}

// OnInvalidated registers fn to run after the caches are dropped.
func (s *Service) OnInvalidated(fn func()) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onInvalidation = append(s.onInvalidation, fn)
}

// Stats is a snapshot of service state.
type Stats struct {
	CachedLanguages []i18n.Code `json:"cached_languages"`
	Generation      uint64      `json:"cache_generation"`
	PendingDrafts   int         `json:"pending_drafts"`
	Sessions        int         `json:"admin_sessions"`
	CachedReports   int         `json:"cached_reports"`
	AIProvider      string      `json:"ai_provider"`
}

// Stats returns a snapshot of service state.
func (s *Service) Stats() Stats {
	cs := s.cache.Stats()
	return Stats{
		CachedLanguages: cs.Languages,
		Generation:      cs.Generation,
		PendingDrafts:   s.drafts.Len(),
		Sessions:        s.sessions.Count(),
		CachedReports:   s.reports.Len(),
		AIProvider:      s.ai.Name(),
	}
}

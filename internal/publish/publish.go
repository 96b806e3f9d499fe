// Package publish turns an admin draft into a record folder holding the image
// and one metadata file per supported language.
//
// Publishing is best effort, not transactional. A failure after the folder is
// created leaves it on disk without record.json, which is what the sweep
// command looks for.
package publish

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/waajacu/minerals/internal/drafts"
	"github.com/waajacu/minerals/internal/metrics"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/internal/token"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

var tracer = otel.Tracer("github.com/waajacu/minerals/internal/publish")

// Translator renders the translatable fields of a record in another language.
type Translator interface {
	Translate(ctx context.Context, source minerals.Text, target i18n.Language) (minerals.Text, error)
}

// Invalidator drops cached catalogs.
type Invalidator interface {
	Invalidate()
}

// Archiver copies a finished record folder somewhere else.
type Archiver interface {
	Archive(ctx context.Context, identifier, folder string) error
}

// Listener is told about every successful publish.
type Listener interface {
	Published(ctx context.Context, r Result)
}

// Result is the outcome of one publish. It is reported to the operator and
// never persisted.
type Result struct {
	Identifier        string   `json:"identifier"`
	CommonName        string   `json:"common_name"`
	TranslatedCount   int      `json:"translated_count"`
	FallbackLangCodes []string `json:"fallback_lang_codes"`
	Message           string   `json:"message"`
}

// Pipeline publishes drafts.
type Pipeline struct {
	store      *store.Store
	drafts     *drafts.Store
	translator Translator
	cache      Invalidator

	archiver    Archiver
	listeners   []Listener
	concurrency int
	timeout     time.Duration

	// background archive uploads
	wg sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds the number of translation calls in flight.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithTranslateTimeout bounds each translation call.
func WithTranslateTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithArchiver mirrors each published folder through a.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

// WithListener registers a listener for successful publishes.
func WithListener(l Listener) Option {
	return func(p *Pipeline) { p.listeners = append(p.listeners, l) }
}

// New creates a Pipeline.
func New(st *store.Store, ds *drafts.Store, tr Translator, cache Invalidator, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       st,
		drafts:      ds,
		translator:  tr,
		cache:       cache,
		concurrency: constants.DefaultTranslateConcurrency,
		timeout:     constants.TranslateTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates fields, writes the record for draftID and consumes the
// draft. Validation errors leave the draft and the disk untouched. Any other
// failure puts the draft back so the operator can retry.
func (p *Pipeline) Publish(ctx context.Context, draftID string, fields Fields) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "publish")
	defer span.End()
	ctx = logging.WithDraft(ctx, draftID)
	logger := logging.FromContext(ctx)

	defer func() {
		switch {
		case err == nil:
			metrics.Publishes.WithLabelValues("ok").Inc()
		case errors.IsValidationError(err) || errors.IsNotFound(err):
			metrics.Publishes.WithLabelValues("invalid").Inc()
		default:
			metrics.Publishes.WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if !p.drafts.Has(draftID) {
		return Result{}, &errors.NotFoundError{Resource: "draft", ID: draftID, Message: drafts.NotFoundMessage}
	}
	base, err := fields.Record()
	if err != nil {
		return Result{}, err
	}

	draft, err := p.drafts.Take(draftID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err != nil && p.drafts.Restore(draft) {
			logger.Info().Msg("Draft restored after failed publish")
		}
	}()

	// The operator closing the connection must not turn every translation
	// into a fallback halfway through writing the folder.
	ctx = context.WithoutCancel(ctx)

	id, err := p.allocate(base.Family)
	if err != nil {
		return Result{}, err
	}
	ctx = logging.WithMineral(ctx, id)
	logger = logging.FromContext(ctx)
	span.SetAttributes(attribute.String("mineral.id", id))

	base.ImageFile = minerals.ImageFileName(draft.Ext)
	if err := p.store.WriteFile(id, base.ImageFile, draft.Image); err != nil {
		return Result{}, err
	}

	localized, fallbacks := p.translateAll(ctx, base)

	baseCode := i18n.Base()
	if err := p.store.WriteRecord(id, store.MetadataFileName(baseCode), base); err != nil {
		return Result{}, err
	}
	for _, lang := range i18n.Targets() {
		if err := p.store.WriteRecord(id, store.MetadataFileName(lang.Code), localized[lang.Code]); err != nil {
			return Result{}, err
		}
	}
	// record.json goes last; a folder without it is an unfinished publish.
	if err := p.store.WriteRecord(id, constants.CanonicalMetadataFile, base); err != nil {
		return Result{}, err
	}

	p.cache.Invalidate()

	res = Result{
		Identifier:        id,
		CommonName:        base.CommonName,
		TranslatedCount:   len(i18n.Targets()) - len(fallbacks),
		FallbackLangCodes: fallbacks,
	}
	res.Message = Message(res)

	logger.Info().
		Int("translated", res.TranslatedCount).
		Strs("fallback", fallbacks).
		Msg("Mineral published")

	for _, l := range p.listeners {
		l.Published(ctx, res)
	}
	p.archive(ctx, id)
	return res, nil
}

// Wait blocks until background archive uploads finish.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Message is the operator-facing summary of a publish.
func Message(r Result) string {
	msg := fmt.Sprintf("Mineral published: %s. Localized files: %d translated.", r.Identifier, r.TranslatedCount)
	if len(r.FallbackLangCodes) > 0 {
		msg += " Fallback used for: " + strings.Join(r.FallbackLangCodes, ", ")
	}
	return msg
}

// allocate creates a fresh record folder for family and returns its name.
func (p *Pipeline) allocate(family string) (string, error) {
	slug := minerals.Slugify(family)
	for range constants.MaxIdentifierAttempts {
		suffix, err := token.Hex(constants.IdentifierSuffixBytes)
		if err != nil {
			return "", errors.NewInternalError("publish", "generate identifier", err)
		}
		id := minerals.NewIdentifier(slug, suffix)
		err = p.store.CreateFolder(id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, errors.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", errors.NewInternalError("publish",
		fmt.Sprintf("no free identifier for %q after %d attempts", slug, constants.MaxIdentifierAttempts), nil)
}

// translateAll produces a record for every target language. A language whose
// translation fails for any reason gets the base values and is reported in
// the returned fallback codes, in language table order.
func (p *Pipeline) translateAll(ctx context.Context, base minerals.DiskRecord) (map[i18n.Code]minerals.DiskRecord, []string) {
	targets := i18n.Targets()
	records := make([]minerals.DiskRecord, len(targets))
	failed := make([]bool, len(targets))
	source := base.Text()

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, lang := range targets {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(logging.WithLanguage(ctx, string(lang.Code)), p.timeout)
			defer cancel()

			text, err := p.translator.Translate(tctx, source, lang)
			if err != nil {
				failed[i] = true
				records[i] = base
				metrics.Translations.WithLabelValues(string(lang.Code), "fallback").Inc()
				logging.FromContext(tctx).Warn().Err(err).Msg("Translation failed, using source values")
				return nil
			}
			records[i] = base.Localize(text)
			metrics.Translations.WithLabelValues(string(lang.Code), "translated").Inc()
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[i18n.Code]minerals.DiskRecord, len(targets))
	fallbacks := []string{}
	for i, lang := range targets {
		out[lang.Code] = records[i]
		if failed[i] {
			fallbacks = append(fallbacks, string(lang.Code))
		}
	}
	return out, fallbacks
}

func (p *Pipeline) archive(ctx context.Context, id string) {
	if p.archiver == nil {
		return
	}
	folder := p.store.FolderPath(id)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		actx, cancel := context.WithTimeout(ctx, constants.DefaultHTTPTimeout)
		defer cancel()
		if err := p.archiver.Archive(actx, id, folder); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Archive upload failed")
		}
	}()
}

//go:generate mockgen -source=masker.go -destination=mocks/mock_masker.go -package=mocks

package mask

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fieldfmt/internal/dom"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/logging"
)

const tracerName = "github.com/agbru/fieldfmt/internal/mask"

// Engine is the masking engine a Masker delegates to. Attach binds one mask
// instance, configured with cfg, to el. What attaching means is up to the
// engine; Masker treats it as opaque.
type Engine interface {
	Attach(el dom.Element, cfg Config) (Instance, error)
}

// Instance is a live mask created by an Engine.
type Instance interface {
	// ID identifies the instance within its engine.
	ID() string
	// Destroy detaches the mask from its element.
	Destroy() error
}

// Handle describes one mask created by Apply.
type Handle struct {
	Instance Instance
	Element  dom.Element
	Mode     Mode
	Config   Config
}

// Result summarizes one Apply call.
type Result struct {
	Selector string
	Mode     Mode
	// Matched is the number of elements the selector resolved to.
	Matched int
	// Skipped is the number of matched elements that are not text inputs.
	Skipped int
	// Failed is the number of eligible elements the engine rejected.
	Failed int
	// Handles holds one entry per mask created, in document order.
	Handles []Handle
}

// Applied returns the number of masks created.
func (r Result) Applied() int { return len(r.Handles) }

// Masker resolves selectors to elements and attaches masks to them through
// an Engine. A Masker holds no per-document state; the engine may.
type Masker struct {
	engine Engine
	logger logging.Logger
	tracer trace.Tracer
}

// MaskerOption configures a Masker.
type MaskerOption func(*Masker)

// WithLogger sets the logger used for skipped elements and engine failures.
func WithLogger(l logging.Logger) MaskerOption {
	return func(m *Masker) { m.logger = l }
}

// WithTracer replaces the tracer taken from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) MaskerOption {
	return func(m *Masker) { m.tracer = t }
}

// NewMasker creates a Masker delegating to engine.
func NewMasker(engine Engine, opts ...MaskerOption) *Masker {
	m := &Masker{engine: engine}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer(tracerName)
	}
	return m
}

// Apply attaches a mask of the given mode to every text input of doc that
// matches selector. Each element gets Resolve(mode, opts...).
//
// Elements that are not text inputs are skipped silently. If the engine
// fails for an element, the failure is recorded as an apperrors.MaskError and
// the remaining elements are still processed; all failures are returned
// together. An invalid selector or mode attaches nothing.
func (m *Masker) Apply(ctx context.Context, doc dom.Document, selector string, mode Mode, opts ...Option) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "mask.Apply", trace.WithAttributes(
		attribute.String("mask.selector", selector),
		attribute.String("mask.mode", mode.String()),
	))
	defer span.End()

	res := Result{Selector: selector, Mode: mode}
	if !mode.Valid() {
		err := apperrors.NewConfigError("invalid mask mode %d", int(mode))
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	elements, err := doc.QuerySelectorAll(selector)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "selector")
		return res, err
	}
	eligible := filter(elements, IsTextInput)
	res.Matched = len(elements)
	res.Skipped = len(elements) - len(eligible)
	if res.Skipped > 0 {
		m.logger.Debug("skipped elements that are not text inputs",
			logging.String("selector", selector), logging.Int("skipped", res.Skipped))
	}

	var errs *multierror.Error
	for i, el := range eligible {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		cfg := Resolve(mode, opts...)
		inst, err := m.engine.Attach(el, cfg)
		if err != nil {
			res.Failed++
			maskErr := apperrors.MaskError{Selector: selector, Mode: mode.String(), Index: i, Cause: err}
			errs = multierror.Append(errs, maskErr)
			m.logger.Error("mask attach failed", err,
				logging.String("selector", selector),
				logging.String("mode", mode.String()),
				logging.String("element", dom.Describe(el)))
			continue
		}
		res.Handles = append(res.Handles, Handle{Instance: inst, Element: el, Mode: mode, Config: cfg})
	}

	span.SetAttributes(
		attribute.Int("mask.matched", res.Matched),
		attribute.Int("mask.applied", res.Applied()),
		attribute.Int("mask.skipped", res.Skipped),
		attribute.Int("mask.failed", res.Failed),
	)
	if err := errs.ErrorOrNil(); err != nil {
		span.SetStatus(codes.Error, "some elements failed")
		return res, err
	}
	return res, nil
}

// Card masks matching fields as credit card numbers.
func (m *Masker) Card(ctx context.Context, doc dom.Document, selector string) (Result, error) {
	return m.Apply(ctx, doc, selector, Card)
}

// Phone masks matching fields as phone numbers.
func (m *Masker) Phone(ctx context.Context, doc dom.Document, selector string, opts ...Option) (Result, error) {
	return m.Apply(ctx, doc, selector, Phone, opts...)
}

// Date masks matching fields as dates.
func (m *Masker) Date(ctx context.Context, doc dom.Document, selector string, opts ...Option) (Result, error) {
	return m.Apply(ctx, doc, selector, Date, opts...)
}

// Time masks matching fields as times.
func (m *Masker) Time(ctx context.Context, doc dom.Document, selector string, opts ...Option) (Result, error) {
	return m.Apply(ctx, doc, selector, Time, opts...)
}

// Number masks matching fields as numerals.
func (m *Masker) Number(ctx context.Context, doc dom.Document, selector string, opts ...Option) (Result, error) {
	return m.Apply(ctx, doc, selector, Number, opts...)
}

// ApplyRules applies rules in order. A failing rule does not stop the
// following ones; every error is returned together.
func (m *Masker) ApplyRules(ctx context.Context, doc dom.Document, rules []Rule) ([]Result, error) {
	results := make([]Result, 0, len(rules))
	var errs *multierror.Error
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		res, err := m.Apply(ctx, doc, rule.Selector, rule.Mode, rule.Options.Options()...)
		results = append(results, res)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return results, errs.ErrorOrNil()
}

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/fieldfmt/internal/dom"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
)

// StdinName is the path that selects standard input.
const StdinName = "-"

// BatchOptions configures MaskFiles.
type BatchOptions struct {
	// Masker applies the rules to each document.
	Masker *mask.Masker
	// Rules are applied in order to every document.
	Rules []mask.Rule
	// OutDir receives one file per document; empty keeps the rendered HTML
	// in DocumentResult.HTML.
	OutDir string
	// Concurrency bounds the documents processed at once.
	Concurrency int
	// Logger receives per-document events. Defaults to a no-op logger.
	Logger logging.Logger
	// Progress, when set, receives every DocumentResult as it finishes.
	// MaskFiles does not close it.
	Progress chan<- DocumentResult
	// Stdin is read for the path "-". Defaults to os.Stdin.
	Stdin io.Reader
}

// DocumentResult is the outcome of masking one document.
type DocumentResult struct {
	Path string
	// Output is the written file when an output directory is set.
	Output string
	// HTML is the rendered document when no output directory is set.
	HTML     string
	Results  []mask.Result
	Duration time.Duration
	// Err is set when the document could not be read or some masks failed.
	// A document with failed masks is still rendered.
	Err error
}

// Applied returns the number of masks created in the document.
func (r DocumentResult) Applied() int {
	n := 0
	for _, res := range r.Results {
		n += res.Applied()
	}
	return n
}

// Skipped returns the number of matched elements that were not text inputs.
func (r DocumentResult) Skipped() int {
	n := 0
	for _, res := range r.Results {
		n += res.Skipped
	}
	return n
}

// Failed returns the number of elements the engine rejected.
func (r DocumentResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		n += res.Failed
	}
	return n
}

// MaskDocument parses the HTML read from r and applies rules to it.
// The returned document is usable whenever it is non-nil, even if the error
// reports failed elements.
func MaskDocument(ctx context.Context, r io.Reader, masker *mask.Masker, rules []mask.Rule) (*dom.HTMLDocument, []mask.Result, error) {
	doc, err := dom.Load(r)
	if err != nil {
		return nil, nil, err
	}
	results, err := masker.ApplyRules(ctx, doc, rules)
	return doc, results, err
}

// MaskFiles masks every document of paths with at most opts.Concurrency
// documents in flight. Results are returned in the order of paths. A failing
// document does not stop the others; all failures are returned together.
func MaskFiles(ctx context.Context, paths []string, opts BatchOptions) ([]DocumentResult, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	results := make([]DocumentResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Concurrency))

	for i, path := range paths {
		g.Go(func() error {
			res := maskFile(gctx, path, opts)
			results[i] = res
			if opts.Progress != nil {
				opts.Progress <- res
			}
			if apperrors.IsContextError(res.Err) {
				return res.Err
			}
			return nil
		})
	}

	var errs *multierror.Error
	if err := g.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	for _, res := range results {
		if res.Err != nil && !apperrors.IsContextError(res.Err) {
			errs = multierror.Append(errs, apperrors.WrapError(res.Err, "%s", res.Path))
		}
	}
	return results, errs.ErrorOrNil()
}

func maskFile(ctx context.Context, path string, opts BatchOptions) (res DocumentResult) {
	start := time.Now()
	res.Path = path
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	var r io.Reader
	if path == StdinName {
		r = opts.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			res.Err = err
			return res
		}
		defer f.Close()
		r = f
	}

	doc, results, err := MaskDocument(ctx, r, opts.Masker, opts.Rules)
	res.Results = results
	res.Err = err
	if doc == nil {
		return res
	}

	if opts.OutDir != "" {
		out, werr := WriteDocumentToFile(doc, path, opts.OutDir)
		if werr != nil {
			res.Err = errors.Join(res.Err, werr)
			return res
		}
		res.Output = out
	} else {
		var sb strings.Builder
		if rerr := doc.Render(&sb); rerr != nil {
			res.Err = errors.Join(res.Err, rerr)
			return res
		}
		res.HTML = sb.String()
	}

	opts.Logger.Debug("document masked",
		logging.String("path", path),
		logging.Int("applied", res.Applied()),
		logging.Int("skipped", res.Skipped()),
		logging.Int("failed", res.Failed()))
	return res
}

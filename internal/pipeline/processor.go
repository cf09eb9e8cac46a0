package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ironsheep/roster-ocr/internal/errors"
	"github.com/ironsheep/roster-ocr/internal/fields"
	"github.com/ironsheep/roster-ocr/internal/fusion"
	"github.com/ironsheep/roster-ocr/internal/imaging"
	"github.com/ironsheep/roster-ocr/internal/ocr"
	"github.com/ironsheep/roster-ocr/internal/record"
)

// DefaultConcurrency is the number of images processed at once by RunBatch.
const DefaultConcurrency = 4

// Processor coordinates variant generation, recognition trials and fusion.
type Processor struct {
	logger      *slog.Logger
	generator   *imaging.Generator
	engine      *ocr.Engine
	extractor   *fields.Extractor
	fusion      *fusion.Context
	concurrency int
}

// Option configures a Processor.
type Option func(*Processor)

// WithExtractor sets the extractor used for harvested records and hints.
func WithExtractor(e *fields.Extractor) Option {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithConcurrency bounds the number of items RunBatch processes at once.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the processor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Processor. The generator, engine and fusion context are
// required.
func New(gen *imaging.Generator, engine *ocr.Engine, fctx *fusion.Context, opts ...Option) (*Processor, error) {
	if gen == nil || engine == nil || fctx == nil {
		return nil, fmt.Errorf("generator, engine and fusion context are required")
	}
	p := &Processor{
		logger:      slog.Default(),
		generator:   gen,
		engine:      engine,
		extractor:   fields.NewExtractor(nil),
		fusion:      fctx,
		concurrency: DefaultConcurrency,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Fusion returns the context records are merged into.
func (p *Processor) Fusion() *fusion.Context {
	return p.fusion
}

// Extractor returns the field extractor.
func (p *Processor) Extractor() *fields.Extractor {
	return p.extractor
}

// Variants returns the variant names generated for each image.
func (p *Processor) Variants() []string {
	return p.generator.Names()
}

// Configurations returns the recognition configuration menu.
func (p *Processor) Configurations() []ocr.Configuration {
	return p.engine.Configurations()
}

// Preview renders every variant of raw, in generation order, without
// running recognition.
func (p *Processor) Preview(raw imaging.RawImage, maxSide int) ([]*imaging.Preview, error) {
	img, err := raw.Decode()
	if err != nil {
		return nil, errors.NewDecodeFailedError(raw.Source, err)
	}
	variants, err := p.generator.Generate(img)
	if err != nil {
		return nil, errors.NewUnrecoverableImageError(raw.Source, 0, err)
	}
	out := make([]*imaging.Preview, 0, len(variants))
	for _, v := range variants {
		pv, err := imaging.EncodePreview(v, maxSide)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Name, err)
		}
		out = append(out, pv)
	}
	return out, nil
}

// ImageResult is the outcome of processing one RawImage.
type ImageResult struct {
	Source string              `json:"source"`
	Hint   record.IdentityHint `json:"identity_hint"`

	// Trial is nil when the image could not be decoded or expanded into
	// variants.
	Trial *ocr.Trial `json:"trial,omitempty"`

	Candidate record.Candidate `json:"candidate"`

	// HintOnly is set when no attempt produced text and the candidate was
	// built from the identity hint alone.
	HintOnly bool `json:"hint_only,omitempty"`

	// Record and Change are set once the candidate has been merged.
	Record *record.Fused  `json:"record,omitempty"`
	Change *fusion.Change `json:"change,omitempty"`
}

// Method returns the winning "variant/config" pair, or "" when no attempt
// won.
func (r *ImageResult) Method() string {
	if r.Trial == nil {
		return ""
	}
	if best, ok := r.Trial.Best(); ok {
		return best.Method()
	}
	return ""
}

// Extract runs the trial grid for raw and builds its candidate without
// merging it.
//
// The identity hint is authoritative for name and number; recognized values
// fill every other field. When no attempt produced text the candidate falls
// back to the hint alone. Without a hint the image is unrecoverable and a
// ProcessingError is returned alongside the partial result.
func (p *Processor) Extract(ctx context.Context, raw imaging.RawImage) (*ImageResult, error) {
	res := &ImageResult{Source: raw.Source, Hint: raw.Hint}

	img, err := raw.Decode()
	if err != nil {
		return p.fallBackToHint(res, raw, errors.NewDecodeFailedError(raw.Source, err))
	}

	variants, err := p.generator.Generate(img)
	if err != nil {
		return p.fallBackToHint(res, raw, errors.NewUnrecoverableImageError(raw.Source, 0, err))
	}

	res.Trial = p.engine.Run(ctx, raw.Source, variants)
	best, ok := res.Trial.Best()
	if !ok {
		if cerr := ctx.Err(); cerr != nil {
			return res, errors.NewCanceledError(raw.Source, cerr)
		}
		return p.fallBackToHint(res, raw,
			errors.NewUnrecoverableImageError(raw.Source, len(res.Trial.Attempts), firstError(res.Trial)))
	}

	cand := p.hintCandidate(raw)
	for name, f := range best.Fields {
		if !cand.Fields.Has(name) {
			cand.Fields[name] = f
		}
	}
	cand.Score = best.Score
	cand.HasScore = true
	res.Candidate = cand
	return res, nil
}

// ProcessImage extracts raw and merges its candidate into the fusion
// context.
func (p *Processor) ProcessImage(ctx context.Context, raw imaging.RawImage) (*ImageResult, error) {
	res, err := p.Extract(ctx, raw)
	if err != nil {
		p.logger.Warn("image failed", "source", raw.Source, "code", errors.CodeOf(err), "error", err)
		return res, err
	}

	rec, change, err := p.fusion.Merge(res.Candidate)
	if err != nil {
		return res, errors.NewUnrecoverableImageError(raw.Source, attemptCount(res.Trial), err)
	}
	res.Record = rec
	res.Change = &change
	p.logger.Debug("image merged",
		"source", raw.Source,
		"key", rec.Key,
		"method", res.Method(),
		"hint_only", res.HintOnly,
		"completeness", rec.Completeness,
	)
	return res, nil
}

// IngestResult is the outcome of merging one harvested record.
type IngestResult struct {
	Record   *record.Fused `json:"record"`
	Change   fusion.Change `json:"change"`
	Rejected []string      `json:"rejected_fields,omitempty"`
}

// IngestRecord validates a harvested field map and merges it.
//
// Out-of-domain values are dropped and listed in Rejected; the record is
// still merged. A map that yields neither an identity nor a single valid
// field returns an EMPTY_RECORD error.
func (p *Processor) IngestRecord(raw map[string]string, source string) (*IngestResult, error) {
	cand, rejected := p.extractor.FromRaw(raw, source)
	if cand.Key == "" && len(cand.Fields) == 0 {
		return &IngestResult{Rejected: rejected}, errors.NewEmptyRecordError(source, rejected)
	}

	rec, change, err := p.fusion.Merge(cand)
	if err != nil {
		return &IngestResult{Rejected: rejected}, errors.NewEmptyRecordError(source, rejected)
	}
	if len(rejected) > 0 {
		p.logger.Info("harvested fields rejected", "source", source, "key", rec.Key, "fields", rejected)
	}
	return &IngestResult{Record: rec, Change: change, Rejected: rejected}, nil
}

// fallBackToHint turns a failed image into a hint-only candidate when the
// source carried an identity, and returns cause otherwise.
func (p *Processor) fallBackToHint(res *ImageResult, raw imaging.RawImage, cause *errors.ProcessingError) (*ImageResult, error) {
	if raw.Hint.IsZero() {
		return res, cause
	}
	res.Candidate = p.hintCandidate(raw)
	res.HintOnly = true
	p.logger.Warn("no recognized text, using identity hint",
		"source", raw.Source,
		"name", raw.Hint.Name,
		"number", raw.Hint.Number,
		"code", cause.Code,
	)
	return res, nil
}

// hintCandidate builds a candidate carrying only the validated hint fields.
func (p *Processor) hintCandidate(raw imaging.RawImage) record.Candidate {
	prov := record.Provenance{Source: raw.Source}
	f := record.Fields{}
	if v, ok := p.extractor.Normalize(record.FieldName, raw.Hint.Name); ok {
		f.Set(record.FieldName, v, prov)
	}
	if raw.Hint.Number > 0 {
		if v, ok := p.extractor.Normalize(record.FieldNumber, strconv.Itoa(raw.Hint.Number)); ok {
			f.Set(record.FieldNumber, v, prov)
		}
	}
	return record.Candidate{
		Key:    record.Key(raw.Hint.Name, raw.Hint.Number),
		Fields: f,
		Source: raw.Source,
	}
}

func firstError(t *ocr.Trial) error {
	for _, a := range t.Attempts {
		if a.Err != nil {
			return a.Err
		}
	}
	return nil
}

func attemptCount(t *ocr.Trial) int {
	if t == nil {
		return 0
	}
	return len(t.Attempts)
}

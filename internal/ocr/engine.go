package ocr

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/roster-ocr/internal/errors"
	"github.com/ironsheep/roster-ocr/internal/fields"
	"github.com/ironsheep/roster-ocr/internal/imaging"
	"github.com/ironsheep/roster-ocr/internal/record"
)

// Default limits.
const (
	DefaultRecognitionTimeout = 20 * time.Second
	DefaultImageTimeout       = 2 * time.Minute
)

// Engine runs the variant × configuration trial grid for one image at a
// time and selects the best attempt.
//
// An Engine is immutable after construction and safe for concurrent use by
// several image workers.
type Engine struct {
	recognizer   Recognizer
	extractor    *fields.Extractor
	configs      []Configuration
	timeout      time.Duration
	imageTimeout time.Duration
	parallelism  int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfigurations replaces the default configuration menu.
func WithConfigurations(c ...Configuration) Option {
	return func(e *Engine) {
		e.configs = c
	}
}

// WithTimeout bounds each recognizer call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithImageTimeout bounds the whole grid for one image.
func WithImageTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.imageTimeout = d
		}
	}
}

// WithParallelism sets how many attempts of one image may run at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a trial engine. A nil extractor uses the default
// registry.
func NewEngine(rec Recognizer, ext *fields.Extractor, opts ...Option) (*Engine, error) {
	if rec == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if ext == nil {
		ext = fields.NewExtractor(nil)
	}
	e := &Engine{
		recognizer:   rec,
		extractor:    ext,
		configs:      DefaultConfigurations(),
		timeout:      DefaultRecognitionTimeout,
		imageTimeout: DefaultImageTimeout,
		parallelism:  1,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if len(e.configs) == 0 {
		return nil, fmt.Errorf("at least one recognition configuration is required")
	}
	return e, nil
}

// Configurations returns the configuration menu in declaration order.
func (e *Engine) Configurations() []Configuration {
	out := make([]Configuration, len(e.configs))
	copy(out, e.configs)
	return out
}

// Trial is the full record of one image's recognition grid.
type Trial struct {
	Source   string    `json:"source"`
	Attempts []Attempt `json:"attempts"`
	// Winner indexes Attempts, or is -1 when no attempt produced text.
	Winner int `json:"winner"`
}

// Best returns the winning attempt.
func (t *Trial) Best() (Attempt, bool) {
	if t.Winner < 0 || t.Winner >= len(t.Attempts) {
		return Attempt{}, false
	}
	return t.Attempts[t.Winner], true
}

// Counts tallies attempts by outcome.
func (t *Trial) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, 3)
	for _, a := range t.Attempts {
		counts[a.Outcome]++
	}
	return counts
}

// Run invokes the recognizer once per (variant, configuration) pair and
// scores every attempt.
//
// Failures never abort the grid: an error, panic, timeout or blank output
// becomes a zero-score attempt. Attempts are stored in declaration order
// regardless of completion order, and the winner is chosen only after all
// of them are in. When the per-image deadline expires, attempts that have
// not started are recorded as Failed.
func (e *Engine) Run(ctx context.Context, source string, variants []imaging.Variant) *Trial {
	ctx, cancel := context.WithTimeout(ctx, e.imageTimeout)
	defer cancel()

	trial := &Trial{
		Source:   source,
		Attempts: make([]Attempt, len(variants)*len(e.configs)),
		Winner:   -1,
	}

	g := new(errgroup.Group)
	g.SetLimit(e.parallelism)
	for vi, v := range variants {
		for ci, cfg := range e.configs {
			v, cfg := v, cfg
			idx := vi*len(e.configs) + ci
			g.Go(func() error {
				trial.Attempts[idx] = e.attempt(ctx, source, v, cfg)
				return nil
			})
		}
	}
	_ = g.Wait()

	trial.Winner = SelectBest(trial.Attempts)
	for _, a := range trial.Attempts {
		e.logger.Debug("attempt scored",
			"source", source,
			"variant", a.Variant,
			"config", a.Config,
			"outcome", a.Outcome.String(),
			"score", a.Score,
			"length", a.Length,
		)
	}
	if best, ok := trial.Best(); ok {
		e.logger.Info("recognition winner",
			"source", source,
			"variant", best.Variant,
			"config", best.Config,
			"score", best.Score,
			"fields", len(best.Fields),
		)
	} else {
		e.logger.Warn("no attempt produced text", "source", source, "attempts", len(trial.Attempts))
	}
	return trial
}

// attempt runs and scores one (variant, configuration) pair.
func (e *Engine) attempt(ctx context.Context, source string, v imaging.Variant, cfg Configuration) Attempt {
	a := Attempt{Variant: v.Name, Config: cfg.Name}

	if err := ctx.Err(); err != nil {
		a.Outcome = Failed
		a.Err = errors.NewRecognitionTimeoutError(source, v.Name, cfg.Name, e.imageTimeout, err)
		a.Reason = "image deadline exceeded before attempt started"
		return a
	}

	start := time.Now()
	text, err := e.recognize(ctx, v, cfg)
	a.Duration = time.Since(start)

	if err != nil {
		a.Outcome = Failed
		if stderrors.Is(err, context.DeadlineExceeded) {
			a.Err = errors.NewRecognitionTimeoutError(source, v.Name, cfg.Name, e.timeout, err)
		} else {
			a.Err = errors.NewRecognitionFailedError(source, v.Name, cfg.Name, err)
		}
		a.Reason = err.Error()
		return a
	}

	a.Text = text
	a.Length = utf8.RuneCountInString(text)
	if strings.TrimSpace(text) == "" {
		a.Outcome = Empty
		return a
	}

	a.Outcome = Success
	a.Fields = e.extractor.Extract(text, record.Provenance{Source: source, Variant: v.Name, Config: cfg.Name})
	a.Score = fields.QualityScore(a.Fields, a.Length)
	a.Completeness = record.Completeness(a.Fields, record.RecognitionFields)
	for name, f := range a.Fields {
		f.Provenance.Score = a.Score
		f.Provenance.HasScore = true
		a.Fields[name] = f
	}
	return a
}

// recognize calls the recognizer under the per-call deadline. The call runs
// in its own goroutine so that a recognizer ignoring ctx cannot hold the
// worker past the deadline.
func (e *Engine) recognize(ctx context.Context, v imaging.Variant, cfg Configuration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("recognizer panicked: %v", r)}
			}
		}()
		text, err := e.recognizer.Recognize(ctx, v.Image, cfg)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("recognition %s/%s: %w", v.Name, cfg.Name, ctx.Err())
	}
}

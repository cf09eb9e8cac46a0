package pipeline

import (
	"context"
	stderrors "errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/roster-ocr/internal/errors"
	"github.com/ironsheep/roster-ocr/internal/imaging"
	"github.com/ironsheep/roster-ocr/internal/record"
)

// RawRecord is one harvested field map and the reference it came from.
type RawRecord struct {
	Source string            `json:"source"`
	Fields map[string]string `json:"fields"`
}

// Batch is the input of one run.
type Batch struct {
	Images  []imaging.RawImage
	Records []RawRecord
}

// Failure describes one item that did not make it into fusion, or a
// warning about one that did.
type Failure struct {
	Source  string                 `json:"source"`
	Code    errors.ErrorCode       `json:"error_code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func failureOf(source string, err error) Failure {
	f := Failure{Source: source, Code: errors.CodeOf(err), Message: err.Error()}
	var pe *errors.ProcessingError
	if stderrors.As(err, &pe) {
		f.Message = pe.Message
		details := make(map[string]interface{}, len(pe.Details)+1)
		for k, v := range pe.Details {
			details[k] = v
		}
		if pe.Cause != nil {
			details["cause"] = pe.Cause.Error()
		}
		if len(details) > 0 {
			f.Details = details
		}
	}
	return f
}

// Summary reports a finished run. Every input item is either counted in
// Succeeded or listed in Failures.
type Summary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`

	Images    int `json:"images"`
	Records   int `json:"records"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	Failures []Failure `json:"failures,omitempty"`
	Warnings []Failure `json:"warnings,omitempty"`

	// FieldFillRates is the share (0-100) of entities touched by the run
	// that carry each field.
	FieldFillRates map[string]float64 `json:"field_fill_rates"`

	// MethodWins counts winning "variant/config" pairs across images.
	MethodWins map[string]int `json:"method_wins"`
	HintOnly   int            `json:"hint_only"`

	Entities       int `json:"entities"`
	CompleteEnough int `json:"complete_enough"`
}

// DurationSeconds is Duration in seconds, for reports.
func (s *Summary) DurationSeconds() float64 {
	return s.Duration.Seconds()
}

// collector accumulates per-item outcomes from concurrent workers.
type collector struct {
	mu      sync.Mutex
	summary *Summary
	touched map[string]bool
}

func (c *collector) succeed(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Succeeded++
	if key != "" {
		c.touched[key] = true
	}
}

func (c *collector) fail(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Failed++
	c.summary.Failures = append(c.summary.Failures, f)
}

func (c *collector) warn(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Warnings = append(c.summary.Warnings, f)
}

func (c *collector) won(method string, hintOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if method != "" {
		c.summary.MethodWins[method]++
	}
	if hintOnly {
		c.summary.HintOnly++
	}
}

// RunBatch processes every image and record of b and merges the results.
//
// Items run on a bounded worker pool. A failing item never stops the
// others; it is recorded in the summary instead. Items not started before
// ctx is done are reported as CANCELED, so the run always accounts for
// every input.
func (p *Processor) RunBatch(ctx context.Context, b Batch) *Summary {
	s := &Summary{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		Images:     len(b.Images),
		Records:    len(b.Records),
		MethodWins: map[string]int{},
	}
	c := &collector{summary: s, touched: map[string]bool{}}
	logger := p.logger.With("run_id", s.RunID)
	logger.Info("batch started", "images", s.Images, "records", s.Records, "concurrency", p.concurrency)

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for _, rec := range b.Records {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				c.fail(failureOf(rec.Source, errors.NewCanceledError(rec.Source, err)))
				return nil
			}
			res, err := p.IngestRecord(rec.Fields, rec.Source)
			if err != nil {
				c.fail(failureOf(rec.Source, err))
				return nil
			}
			if len(res.Rejected) > 0 {
				c.warn(failureOf(rec.Source, errors.NewValidationRejectedError(rec.Source, res.Rejected)))
			}
			c.succeed(res.Record.Key)
			return nil
		})
	}

	for _, raw := range b.Images {
		raw := raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				c.fail(failureOf(raw.Source, errors.NewCanceledError(raw.Source, err)))
				return nil
			}
			res, err := p.ProcessImage(ctx, raw)
			if err != nil {
				c.fail(failureOf(raw.Source, err))
				return nil
			}
			c.won(res.Method(), res.HintOnly)
			c.succeed(res.Record.Key)
			return nil
		})
	}
	_ = g.Wait()

	sortFailures(s.Failures)
	sortFailures(s.Warnings)
	p.fillEntityStats(s, c.touched)
	s.Duration = time.Since(s.StartedAt)

	logger.Info("batch finished",
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"warnings", len(s.Warnings),
		"entities", s.Entities,
		"complete_enough", s.CompleteEnough,
		"duration", s.Duration,
	)
	for _, f := range s.Failures {
		logger.Warn("batch item failed", "source", f.Source, "code", f.Code, "message", f.Message)
	}
	return s
}

// fillEntityStats computes fill rates and state counts over the entities
// the run touched.
func (p *Processor) fillEntityStats(s *Summary, touched map[string]bool) {
	s.FieldFillRates = map[string]float64{}
	counts := map[string]int{}
	for key := range touched {
		rec, ok := p.fusion.Get(key)
		if !ok {
			continue
		}
		s.Entities++
		if rec.State == record.StateCompleteEnough {
			s.CompleteEnough++
		}
		for _, name := range rec.Fields.Names() {
			counts[name]++
		}
	}
	if s.Entities == 0 {
		return
	}
	for name, n := range counts {
		s.FieldFillRates[name] = math.Round(1000*float64(n)/float64(s.Entities)) / 10
	}
}

func sortFailures(fs []Failure) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Source != fs[j].Source {
			return fs[i].Source < fs[j].Source
		}
		return fs[i].Code < fs[j].Code
	})
}

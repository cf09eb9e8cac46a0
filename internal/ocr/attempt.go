package ocr

import (
	"context"
	"image"
	"time"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// Recognizer is the external text-recognition collaborator.
//
// Implementations should honour ctx; the engine also enforces its own
// per-call deadline, so a recognizer that ignores ctx only delays the
// release of its own resources.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, cfg Configuration) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image, cfg Configuration) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, cfg Configuration) (string, error) {
	return f(ctx, img, cfg)
}

// Outcome is the result class of one recognition attempt.
type Outcome int

const (
	// Success means the recognizer returned non-blank text.
	Success Outcome = iota
	// Empty means the recognizer returned nothing usable.
	Empty
	// Failed means the call errored, panicked or timed out.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Attempt is one (variant, configuration) recognition trial. Empty and
// Failed attempts always score zero and carry no fields.
type Attempt struct {
	Variant      string        `json:"variant"`
	Config       string        `json:"configuration"`
	Text         string        `json:"-"`
	Length       int           `json:"output_length"`
	Outcome      Outcome       `json:"outcome"`
	Reason       string        `json:"reason,omitempty"`
	Fields       record.Fields `json:"-"`
	Score        int           `json:"score"`
	Completeness float64       `json:"completeness"`
	Duration     time.Duration `json:"-"`
	Err          error         `json:"-"`
}

// Method names the (variant, configuration) pair, e.g. "grayscale/standard".
func (a Attempt) Method() string {
	return a.Variant + "/" + a.Config
}

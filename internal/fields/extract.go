package fields

import (
	"regexp"
	"strings"
	"time"

	"github.com/ironsheep/roster-ocr/internal/record"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	parasiticChar = regexp.MustCompile(`[^\p{L}\p{N}\s/.,:°#\-]`)
)

// CleanText prepares recognized text for pattern matching: parasitic
// punctuation becomes a space and whitespace runs collapse to one space.
func CleanText(text string) string {
	text = parasiticChar.ReplaceAllString(text, " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Extractor applies a Registry to recognized text.
//
// Extraction is a pure function of the text and the registry: the same text
// always yields the same field set. The only other input is the reference
// year used to derive an age from a birth date, fixed at construction.
type Extractor struct {
	registry      *Registry
	referenceYear int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithReferenceYear pins the year ages are derived against.
func WithReferenceYear(year int) Option {
	return func(e *Extractor) {
		if year > 0 {
			e.referenceYear = year
		}
	}
}

// NewExtractor builds an extractor over reg. A nil registry uses Default().
func NewExtractor(reg *Registry, opts ...Option) *Extractor {
	if reg == nil {
		reg = Default()
	}
	e := &Extractor{
		registry:      reg,
		referenceYear: time.Now().Year(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the registry the extractor was built with.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Extract runs every field's patterns over text and returns the validated
// fields, each stamped with prov.
//
// For each field the patterns are tried in declared order and, within one
// pattern, matches in text order; the first match that survives
// normalization and validation wins. A rejected match never stops the
// search for that field.
func (e *Extractor) Extract(text string, prov record.Provenance) record.Fields {
	cleaned := CleanText(text)
	out := record.Fields{}
	if cleaned == "" {
		return out
	}

	for _, fp := range e.registry.fields {
		if v, ok := matchField(fp, cleaned); ok {
			out.Set(fp.Name, v, prov)
		}
	}

	if !out.Has(record.FieldAge) {
		if born, ok := out.Get(record.FieldBirthDate); ok && born.Kind == record.KindDate {
			age := e.referenceYear - born.Date.Year()
			if age >= MinAge && age <= MaxAge {
				out.Set(record.FieldAge, record.Int(age), prov)
			}
		}
	}
	return out
}

func matchField(fp FieldPattern, text string) (record.Value, bool) {
	for _, re := range fp.Patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := fp.Accept(captured(m)); ok {
				return v, true
			}
		}
	}
	return record.Value{}, false
}

// captured picks the value out of a submatch: the last capture group when
// it is non-empty, otherwise the first.
func captured(m []string) string {
	if len(m) < 2 {
		return strings.TrimSpace(m[0])
	}
	if last := strings.TrimSpace(m[len(m)-1]); last != "" {
		return last
	}
	return strings.TrimSpace(m[1])
}

// Normalize validates a single harvested value for name. Unknown fields are
// accepted as trimmed text.
func (e *Extractor) Normalize(name, raw string) (record.Value, bool) {
	fp, ok := e.registry.Lookup(name)
	if !ok {
		return validateText(collapseSpace(raw))
	}
	return fp.Accept(strings.TrimSpace(raw))
}

package fusion

import (
	"strings"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// rank is the position of one field value in the "more informative" order.
//
// Comparison is lexicographic: serialized length first (the longer value
// wins), then trial score with unscored values at -1, then value text, then
// provenance tags. It is a total order, so the kept value is the maximum
// over every value ever offered for the field, whatever the arrival order.
type rank struct {
	length  int
	score   int
	text    string
	source  string
	variant string
	config  string
}

func rankOf(f record.Field) rank {
	text := f.Value.String()
	score := -1
	if f.Provenance.HasScore {
		score = f.Provenance.Score
	}
	return rank{
		length:  len([]rune(text)),
		score:   score,
		text:    text,
		source:  f.Provenance.Source,
		variant: f.Provenance.Variant,
		config:  f.Provenance.Config,
	}
}

// moreInformative reports whether a strictly outranks b.
func moreInformative(a, b rank) bool {
	if a.length != b.length {
		return a.length > b.length
	}
	if a.score != b.score {
		return a.score > b.score
	}
	for _, c := range [][2]string{
		{a.text, b.text},
		{a.source, b.source},
		{a.variant, b.variant},
		{a.config, b.config},
	} {
		if cmp := strings.Compare(c[0], c[1]); cmp != 0 {
			return cmp > 0
		}
	}
	return false
}

package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// Plausibility bounds. Values outside them never reach a record.
const (
	MinStatureCM = 170
	MaxStatureCM = 220

	MinMassKG = 60
	MaxMassKG = 130

	MinAge = 16
	MaxAge = 45

	MinAppearances = 0
	MaxAppearances = 500

	MinNumber = 1
	MaxNumber = 99

	MaxStatistic = 9999

	minBirthYear = 1900
	maxBirthYear = 2100
)

// titleCase title-cases s. Casers carry state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.French).String(s)
}

// collapseSpace trims s and collapses internal whitespace runs.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// intInRange returns a validator accepting base-10 integers in [lo, hi].
func intInRange(lo, hi int) Validator {
	return func(s string) (record.Value, bool) {
		n, err := strconv.Atoi(s)
		if err != nil || n < lo || n > hi {
			return record.Value{}, false
		}
		return record.Int(n), true
	}
}

// stripUnit lowercases s, drops spaces and removes the given unit suffixes.
func stripUnit(units ...string) Normalizer {
	return func(s string) string {
		s = strings.ToLower(strings.Join(strings.Fields(s), ""))
		for _, u := range units {
			if strings.HasSuffix(s, u) {
				return strings.TrimSuffix(s, u)
			}
		}
		return s
	}
}

// normalizeStature accepts "195", "195cm", "1.95", "1,95m" and "1m95".
func normalizeStature(s string) string {
	s = stripUnit("cm", "m")(s)
	s = strings.NewReplacer(",", ".", "m", ".").Replace(s)
	return s
}

// validateStature accepts centimetres directly or converts fractional
// metres, then range-checks the result.
func validateStature(s string) (record.Value, bool) {
	var cm int
	if strings.Contains(s, ".") {
		m, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return record.Value{}, false
		}
		cm = int(math.Round(m * 100))
	} else {
		n, err := strconv.Atoi(s)
		if err != nil {
			return record.Value{}, false
		}
		cm = n
	}
	if cm < MinStatureCM || cm > MaxStatureCM {
		return record.Value{}, false
	}
	return record.Int(cm), true
}

var datePartSep = regexp.MustCompile(`[/.\-]`)

var monthNames = map[string]int{
	"janvier": 1, "january": 1,
	"février": 2, "fevrier": 2, "february": 2,
	"mars": 3, "march": 3,
	"avril": 4, "april": 4,
	"mai": 5, "may": 5,
	"juin": 6, "june": 6,
	"juillet": 7, "july": 7,
	"août": 8, "aout": 8, "august": 8,
	"septembre": 9, "september": 9,
	"octobre": 10, "october": 10,
	"novembre": 11, "november": 11,
	"décembre": 12, "decembre": 12, "december": 12,
}

// validateBirthDate accepts d/m/yyyy (any of / . - as separator),
// yyyy-m-d and "d month yyyy" with a French or English month name, and
// rejects dates that do not exist on the calendar.
func validateBirthDate(s string) (record.Value, bool) {
	s = strings.TrimSpace(s)
	if words := strings.Fields(s); len(words) == 3 {
		return monthNameDate(words)
	}
	parts := datePartSep.Split(s, -1)
	if len(parts) != 3 {
		return record.Value{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return record.Value{}, false
		}
		nums[i] = n
	}

	var y, m, d int
	switch {
	case len(parts[0]) == 4:
		y, m, d = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4:
		d, m, y = nums[0], nums[1], nums[2]
	default:
		return record.Value{}, false
	}
	return calendarDate(y, m, d)
}

// monthNameDate reads {"12", "mai", "1995"}; "1er" is accepted as a day.
func monthNameDate(words []string) (record.Value, bool) {
	d, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(words[0]), "er"))
	if err != nil {
		return record.Value{}, false
	}
	m, ok := monthNames[strings.ToLower(words[1])]
	if !ok {
		return record.Value{}, false
	}
	y, err := strconv.Atoi(words[2])
	if err != nil || len(words[2]) != 4 {
		return record.Value{}, false
	}
	return calendarDate(y, m, d)
}

func calendarDate(y, m, d int) (record.Value, bool) {
	if y < minBirthYear || y >= maxBirthYear || m < 1 || m > 12 || d < 1 {
		return record.Value{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return record.Value{}, false
	}
	return record.Date(t), true
}

var nonClubWords = map[string]bool{
	"volley": true,
	"ball":   true,
	"sport":  true,
	"france": true,
	"équipe": true,
	"equipe": true,
	"team":   true,
}

var knownAffiliations = []string{"Paris Volley", "Montpellier", "Tours VB", "Poitiers", "Chaumont"}

// validateAffiliation title-cases club names and snaps them onto the known
// club spelling when one is contained in the value.
func validateAffiliation(s string) (record.Value, bool) {
	n := len([]rune(s))
	if n < 3 || n > 30 {
		return record.Value{}, false
	}
	if nonClubWords[strings.ToLower(s)] {
		return record.Value{}, false
	}
	club := titleCase(s)
	lower := strings.ToLower(club)
	for _, known := range knownAffiliations {
		if strings.Contains(lower, strings.ToLower(known)) {
			return record.Text(known), true
		}
	}
	return record.Text(club), true
}

// validateName accepts any whitespace-collapsed string containing a letter.
func validateName(s string) (record.Value, bool) {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return record.Text(s), true
		}
	}
	return record.Value{}, false
}

// validateText accepts any non-empty text.
func validateText(s string) (record.Value, bool) {
	return record.Text(s), s != ""
}

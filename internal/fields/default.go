package fields

import (
	"sync"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// roleWords captures one free-form role word, or a compound whose second
// word is itself a role term.
const roleWords = `\p{L}{3,20}(?:[\s-](?:attaquant|pointu|opposite|hitter|central))?`

// monthWords matches French and English month names.
const monthWords = `(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre|january|february|march|april|may|june|july|august|september|october|november|december)`

// DefaultPatterns returns the built-in roster field table. Patterns run
// against cleaned text (single-spaced, punctuation stripped) and are tried
// in the order listed here. Numeric captures are fenced by non-digits so
// that a longer number is rejected rather than truncated into range.
func DefaultPatterns() []FieldPattern {
	return []FieldPattern{
		{
			Name:      record.FieldName,
			Kind:      record.KindText,
			Normalize: collapseSpace,
			Validate:  validateName,
		},
		{
			Name:      record.FieldNumber,
			Kind:      record.KindInt,
			Normalize: stripUnit(),
			Validate:  intInRange(MinNumber, MaxNumber),
		},
		{
			Name: record.FieldRole,
			Kind: record.KindText,
			Patterns: compile(
				`(?i)(?:^|\s)(ATTAQUANT\s+POINTU)(?:\s|$)`,
				`(?i)(?:^|\s)(ATTAQUANT|ATTACKANT)(?:\s|$)`,
				`(?i)(?:^|\s)(PASSEUR)(?:\s|$)`,
				`(?i)(?:^|\s)(CENTRAL|CENTRAUX)(?:\s|$)`,
				`(?i)(?:^|\s)(LIBÉRO|LIBERO)(?:\s|$)`,
				`(?i)(?:^|\s)(RÉCEPTIONNEUR|RECEPTIONNEUR)(?:\s|$)`,
				`(?i)(?:^|\s)(POINTU|OPPOSITE)(?:\s|$)`,
				`(?i)poste[\s:]*(`+roleWords+`)`,
				`(?i)position[\s:]*(`+roleWords+`)`,
				`(?i)(?:^|\s)(SPIKER|ATTACKER|HITTER)(?:\s|$)`,
				`(?i)(?:^|\s)(SETTER)(?:\s|$)`,
				`(?i)(?:^|\s)(MIDDLE)(?:\s|$)`,
				`(?i)(?:^|\s)(OUTSIDE)(?:\s|$)`,
			),
			Normalize: collapseSpace,
			Validate:  validateRole,
		},
		{
			Name: record.FieldStature,
			Kind: record.KindInt,
			Patterns: compile(
				`(?i)(?:taille|height)[\s:]*(\d{3})(?:\s*cm)?(?:\D|$)`,
				`(?i)(?:^|\D)(\d{3})\s*cm(?:\s|$)`,
				`(?i)(?:^|\s)(\d[.,m]\d{2})(?:\s*m)?(?:\s|$)`,
				`(?i)(?:^|\D)(\d{1,3})\s*centim[eè]tres?`,
				`(?:^|\s)(1[7-9]\d|2[01]\d)(?:\s|$)`,
				`(?i)(?:mensurations?|physique)\D{0,50}?(\d{3})(?:\D|$)`,
			),
			Normalize: normalizeStature,
			Validate:  validateStature,
		},
		{
			Name: record.FieldMass,
			Kind: record.KindInt,
			Patterns: compile(
				`(?i)(?:poids|weight|masse)[\s:]*(\d{2,3})(?:\s*kg)?(?:\D|$)`,
				`(?i)(?:^|\D)(\d{2,3})\s*kg(?:\s|$)`,
				`(?i)(?:^|\D)(\d{2,3})\s*kilos?(?:\s|$)`,
				`(?i)(?:^|\s)([6-9]\d|1[0-2]\d|130)(?:\s*kg|\s|$)`,
			),
			Normalize: stripUnit("kg", "kilos", "kilo"),
			Validate:  intInRange(MinMassKG, MaxMassKG),
		},
		{
			Name: record.FieldAge,
			Kind: record.KindInt,
			Patterns: compile(
				`(?i)(?:^|\s)(?:âge|age)[\s:]*(\d{1,2})(?:\s*ans?)?(?:\D|$)`,
				`(?i)(?:^|\s)(\d{1,2})\s*ans?(?:\s|$)`,
			),
			Normalize: stripUnit("ans", "an"),
			Validate:  intInRange(MinAge, MaxAge),
		},
		{
			Name: record.FieldBirthDate,
			Kind: record.KindDate,
			Patterns: compile(
				`(?i)(?:naissance|née?|birth|born)[\s:]*(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4})(?:\D|$)`,
				`(?:^|\D)(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4})(?:\D|$)`,
				`(?:^|\D)(\d{4}[/.\-]\d{1,2}[/.\-]\d{1,2})(?:\D|$)`,
				`(?i)(?:^|\D)(\d{1,2}(?:er)?\s+`+monthWords+`\s+\d{4})(?:\D|$)`,
			),
			Normalize: collapseSpace,
			Validate:  validateBirthDate,
		},
		{
			Name: record.FieldAffiliation,
			Kind: record.KindText,
			Patterns: compile(
				`(?i)(?:club|équipe|team)[\s:]*(\p{L}[\p{L}\s]{2,30})`,
				`(?i)\b(PARIS VOLLEY|MONTPELLIER|TOURS|POITIERS|NANTES|CHAUMONT|CANNES|AJACCIO)\b`,
				`(?i)\b(CUCINE LUBE|PERUGIA|MODENA|MILANO|RAVENNA|CIVITANOVA|LATINA)\b`,
				`(?i)\b(ZAKSA|RESOVIA|BERLIN|FRIEDRICHSHAFEN|KAZAN)\b`,
				`(?:^|\s)([A-Z]{2,}(?:\s+[A-Z]{2,})*\s+(?:VOLLEY|VOLLEYBALL|VB))(?:\s|$)`,
				`(?:^|\s)(AS|AC|US|USC|VB|VOLLEY)\s+([A-Z][A-Za-z\s]{2,20})(?:\s|$)`,
			),
			Normalize: collapseSpace,
			Validate:  validateAffiliation,
		},
		{
			Name: record.FieldAppearanceCount,
			Kind: record.KindInt,
			Patterns: compile(
				`(?i)(?:sélections?|selections?|caps?)[\s:]*(\d+)`,
				`(?i)(\d+)\s*sélections?`,
				`(?i)(\d+)\s*caps?\b`,
				`(?i)équipe de france[\s\S]{0,50}?(\d+)`,
			),
			Normalize: stripUnit(),
			Validate:  intInRange(MinAppearances, MaxAppearances),
		},
		{
			Name: record.FieldJerseyNumber,
			Kind: record.KindInt,
			Patterns: compile(
				`(?i)(?:n°|#|numéro|numero|number)[\s:]*(\d{1,2})\b`,
				`(?i)maillot[\s:]*(\d{1,2})\b`,
			),
			Normalize: stripUnit(),
			Validate:  intInRange(MinNumber, MaxNumber),
		},
		statistic(record.FieldMatchCount, `(?i)(\d+)\s*(?:matchs|matches|match|rencontres?)\b`),
		statistic(record.FieldPointsScored, `(?i)(\d+)\s*points?\b`),
		statistic(record.FieldVictoryCount, `(?i)(\d+)\s*victoires?\b`),
		statistic(record.FieldTournamentCount, `(?i)(\d+)\s*tournois?\b`),
		statistic(record.FieldTitleCount, `(?i)(\d+)\s*titres?\b`),
	}
}

func statistic(name, expr string) FieldPattern {
	return FieldPattern{
		Name:      name,
		Kind:      record.KindInt,
		Patterns:  compile(expr),
		Normalize: stripUnit(),
		Validate:  intInRange(0, MaxStatistic),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry built from DefaultPatterns.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = MustRegistry(DefaultPatterns()...)
	})
	return defaultRegistry
}

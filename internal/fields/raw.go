package fields

import (
	"sort"
	"strings"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// harvestAliases maps the keys used by the roster harvesting passes onto
// canonical field names.
var harvestAliases = map[string]string{
	"nom":            record.FieldName,
	"nom_joueur":     record.FieldName,
	"nom_complet":    record.FieldName,
	"numero":         record.FieldNumber,
	"poste":          record.FieldRole,
	"position":       record.FieldRole,
	"taille":         record.FieldStature,
	"height":         record.FieldStature,
	"poids":          record.FieldMass,
	"weight":         record.FieldMass,
	"naissance":      record.FieldBirthDate,
	"date_naissance": record.FieldBirthDate,
	"club":           record.FieldAffiliation,
	"club_actuel":    record.FieldAffiliation,
	"selections":     record.FieldAppearanceCount,
	"numero_maillot": record.FieldJerseyNumber,
	"matches_joues":  record.FieldMatchCount,
	"matches_totaux": record.FieldMatchCount,
	"points_marques": record.FieldPointsScored,
	"victoires":      record.FieldVictoryCount,
	"tournois":       record.FieldTournamentCount,
	"titres":         record.FieldTitleCount,
}

// CanonicalName resolves a harvested key to its field name.
func CanonicalName(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := harvestAliases[k]; ok {
		return alias
	}
	return k
}

// FromRaw converts a harvesting pass's raw field map into a Candidate.
//
// Every key is resolved through the alias table and every known field goes
// through the same validator as recognized text, so out-of-domain values
// never reach fusion. The names of rejected fields are returned sorted.
// Empty values are skipped without being reported.
func (e *Extractor) FromRaw(raw map[string]string, source string) (record.Candidate, []string) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	prov := record.Provenance{Source: source}
	fields := record.Fields{}
	var rejected []string
	for _, k := range keys {
		v := strings.TrimSpace(raw[k])
		if v == "" {
			continue
		}
		name := CanonicalName(k)
		if name == "" {
			continue
		}
		value, ok := e.Normalize(name, v)
		if !ok {
			rejected = append(rejected, name)
			continue
		}
		if existing, dup := fields.Get(name); dup && len(existing.String()) >= len(value.String()) {
			continue
		}
		fields.Set(name, value, prov)
	}

	return record.Candidate{
		Key:    record.KeyFor(fields),
		Fields: fields,
		Source: source,
	}, rejected
}

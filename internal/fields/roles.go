package fields

import (
	"strings"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// Canonical role labels.
const (
	RoleAttacker = "Attaquant"
	RoleOpposite = "Attaquant (Pointu)"
	RoleSetter   = "Passeur"
	RoleMiddle   = "Central"
	RoleLibero   = "Libéro"
	RoleOutside  = "Réceptionneur-Attaquant"
)

type roleSynonym struct {
	token string
	label string
}

// roleSynonyms is scanned in order; more specific tokens come first so that
// "attaquant pointu", harvested or captured whole by the registry, resolves
// to the opposite rather than the generic attacker.
var roleSynonyms = []roleSynonym{
	{"pointu", RoleOpposite},
	{"opposite", RoleOpposite},
	{"réceptionneur", RoleOutside},
	{"receptionneur", RoleOutside},
	{"outside", RoleOutside},
	{"attaquant", RoleAttacker},
	{"attackant", RoleAttacker},
	{"spiker", RoleAttacker},
	{"attacker", RoleAttacker},
	{"hitter", RoleAttacker},
	{"passeur", RoleSetter},
	{"setter", RoleSetter},
	{"central", RoleMiddle},
	{"centraux", RoleMiddle},
	{"middle", RoleMiddle},
	{"libéro", RoleLibero},
	{"libero", RoleLibero},
}

var canonicalRoles = []string{RoleAttacker, RoleOpposite, RoleSetter, RoleMiddle, RoleLibero, RoleOutside}

var nonRoleWords = []string{"volley", "ball", "sport"}

const maxRoleLength = 20

// CanonicalRole maps a recognized or harvested role onto its canonical
// label. Values that are already canonical are kept as-is. Unmapped values
// that look like a role are title-cased; anything else is rejected.
func CanonicalRole(s string) (string, bool) {
	s = collapseSpace(s)
	if s == "" {
		return "", false
	}
	for _, label := range canonicalRoles {
		if strings.EqualFold(s, label) {
			return label, true
		}
	}

	lower := strings.ToLower(s)
	for _, syn := range roleSynonyms {
		if strings.Contains(lower, syn.token) {
			return syn.label, true
		}
	}
	for _, w := range nonRoleWords {
		if strings.Contains(lower, w) {
			return "", false
		}
	}
	if len([]rune(s)) >= maxRoleLength {
		return "", false
	}
	return titleCase(s), true
}

func validateRole(s string) (record.Value, bool) {
	label, ok := CanonicalRole(s)
	if !ok {
		return record.Value{}, false
	}
	return record.Text(label), true
}

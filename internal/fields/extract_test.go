package fields

import (
	"regexp"
	"testing"

	"github.com/ironsheep/roster-ocr/internal/record"
)

func newTestExtractor() *Extractor {
	return NewExtractor(Default(), WithReferenceYear(2024))
}

func TestNewRegistry_Errors(t *testing.T) {
	valid := func(s string) (record.Value, bool) { return record.Text(s), true }

	tests := []struct {
		name     string
		patterns []FieldPattern
	}{
		{"empty", nil},
		{"missing name", []FieldPattern{{Validate: valid}}},
		{"missing validator", []FieldPattern{{Name: "role"}}},
		{"duplicate", []FieldPattern{{Name: "role", Validate: valid}, {Name: "role", Validate: valid}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.patterns...); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestRegistry_PreservesOrder(t *testing.T) {
	reg := Default()
	got := reg.Fields()
	want := DefaultPatterns()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("field %d = %s, want %s", i, got[i].Name, want[i].Name)
		}
	}
}

func TestStatureValidation(t *testing.T) {
	fp, _ := Default().Lookup(record.FieldStature)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"190", "190", true},
		{"230", "", false},
		{"169", "", false},
		{"1.95", "195", true},
		{"1,95", "195", true},
		{"1m95", "195", true},
		{"195 cm", "195", true},
		{"2.30", "", false},
		{"abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := fp.Accept(tt.in)
			if ok != tt.ok {
				t.Fatalf("Accept(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && v.String() != tt.want {
				t.Errorf("Accept(%q) = %q, want %q", tt.in, v.String(), tt.want)
			}
		})
	}
}

func TestRangeValidators(t *testing.T) {
	tests := []struct {
		field string
		in    string
		ok    bool
	}{
		{record.FieldMass, "59", false},
		{record.FieldMass, "60", true},
		{record.FieldMass, "130", true},
		{record.FieldMass, "131", false},
		{record.FieldAppearanceCount, "0", true},
		{record.FieldAppearanceCount, "500", true},
		{record.FieldAppearanceCount, "501", false},
		{record.FieldAppearanceCount, "-1", false},
		{record.FieldNumber, "0", false},
		{record.FieldNumber, "1", true},
		{record.FieldNumber, "99", true},
		{record.FieldNumber, "100", false},
		{record.FieldJerseyNumber, "12", true},
		{record.FieldAge, "15", false},
		{record.FieldAge, "24", true},
		{record.FieldAge, "24 ans", true},
		{record.FieldBirthDate, "02/04/1991", true},
		{record.FieldBirthDate, "1991-04-02", true},
		{record.FieldBirthDate, "31/02/1991", false},
		{record.FieldBirthDate, "02/13/1991", false},
		{record.FieldBirthDate, "12 mai 1995", true},
		{record.FieldBirthDate, "1er Août 1990", true},
		{record.FieldBirthDate, "3 March 1992", true},
		{record.FieldBirthDate, "31 février 1991", false},
		{record.FieldBirthDate, "12 moi 1995", false},
		{record.FieldAffiliation, "AB", false},
		{record.FieldAffiliation, "Volley", false},
		{record.FieldName, "12", false},
		{record.FieldName, " Kevin  Tillie ", true},
	}

	reg := Default()
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.in, func(t *testing.T) {
			fp, ok := reg.Lookup(tt.field)
			if !ok {
				t.Fatalf("field %s not registered", tt.field)
			}
			if _, got := fp.Accept(tt.in); got != tt.ok {
				t.Errorf("Accept(%q) = %v, want %v", tt.in, got, tt.ok)
			}
		})
	}
}

func TestBirthDateNormalized(t *testing.T) {
	fp, _ := Default().Lookup(record.FieldBirthDate)
	v, ok := fp.Accept("2.4.1991")
	if !ok {
		t.Fatal("expected date to validate")
	}
	if v.String() != "1991-04-02" {
		t.Errorf("date = %s, want 1991-04-02", v.String())
	}
}

func TestCanonicalRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"attacker", RoleAttacker, true},
		{"SPIKER", RoleAttacker, true},
		{"hitter", RoleAttacker, true},
		{"ATTACKANT", RoleAttacker, true},
		{"Attaquant (Pointu)", RoleOpposite, true},
		{"attaquant pointu", RoleOpposite, true},
		{"opposite", RoleOpposite, true},
		{"setter", RoleSetter, true},
		{"centraux", RoleMiddle, true},
		{"LIBERO", RoleLibero, true},
		{"Réceptionneur-Attaquant", RoleOutside, true},
		{"outside", RoleOutside, true},
		{"universal", "Universal", true},
		{"beach volley", "", false},
		{"a very long string that is no role", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalRole(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("CanonicalRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtract_RosterCard(t *testing.T) {
	e := newTestExtractor()
	prov := record.Provenance{Source: "cv", Variant: "grayscale", Config: "standard"}

	got := e.Extract("ATTACKANT 195 92 24 ans PARIS VOLLEY", prov)

	want := map[string]string{
		record.FieldRole:        "Attaquant",
		record.FieldStature:     "195",
		record.FieldMass:        "92",
		record.FieldAge:         "24",
		record.FieldAffiliation: "Paris Volley",
	}
	if len(got) != len(want) {
		t.Errorf("extracted %v, want exactly %v", got.Strings(), want)
	}
	for name, w := range want {
		v, ok := got.Get(name)
		if !ok {
			t.Errorf("%s missing", name)
			continue
		}
		if v.String() != w {
			t.Errorf("%s = %q, want %q", name, v.String(), w)
		}
		if got[name].Provenance != prov {
			t.Errorf("%s provenance = %+v, want %+v", name, got[name].Provenance, prov)
		}
	}
}

func TestExtract_RejectedMatchFallsThrough(t *testing.T) {
	e := newTestExtractor()

	// "taille 230" is the highest-priority stature match but fails range
	// validation; the later standalone "198" must be used instead.
	got := e.Extract("taille 230 puis 198", record.Provenance{})
	v, ok := got.Get(record.FieldStature)
	if !ok || v.String() != "198" {
		t.Fatalf("stature = %v (%v), want 198", v, ok)
	}
}

func TestExtract_OutOfRangeNeverStored(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		absent []string
	}{
		{"beyond bounds", "taille: 230 cm poids: 150 kg 600 sélections",
			[]string{record.FieldStature, record.FieldMass, record.FieldAppearanceCount}},
		{"four digit stature with unit", "Taille: 2005 cm", []string{record.FieldStature}},
		{"four digit stature", "Taille 1950", []string{record.FieldStature}},
		{"four digit mass", "Poids 1050", []string{record.FieldMass}},
		{"three digit age", "Age 245 Central", []string{record.FieldAge}},
		{"unit after long number", "poids 1250kg", []string{record.FieldMass}},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, record.Provenance{})
			for _, name := range tt.absent {
				if got.Has(name) {
					t.Errorf("%s should have been rejected, got %v", name, got[name].Value)
				}
			}
		})
	}
}

func TestExtract_AgeKeywordNeedsWordStart(t *testing.T) {
	got := newTestExtractor().Extract("Né le 02/04/1991 Stage 2019", record.Provenance{})
	if v, _ := got.Get(record.FieldAge); v.String() != "33" {
		t.Errorf("age = %q, want 33 derived from the birth date", v.String())
	}

	got = newTestExtractor().Extract("Passage 20 image 19", record.Provenance{})
	if got.Has(record.FieldAge) {
		t.Errorf("age = %v, want none", got[record.FieldAge].Value)
	}
}

func TestExtract_MonthNameBirthDate(t *testing.T) {
	got := newTestExtractor().Extract("Né le 12 mai 1995 à Nantes", record.Provenance{})
	if v, _ := got.Get(record.FieldBirthDate); v.String() != "1995-05-12" {
		t.Errorf("birth_date = %q, want 1995-05-12", v.String())
	}
	if v, _ := got.Get(record.FieldAge); v.String() != "29" {
		t.Errorf("age = %q, want 29", v.String())
	}
}

func TestExtract_RolePhrases(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"ATTAQUANT POINTU 197", RoleOpposite},
		{"ATTAQUANT 197", RoleAttacker},
		{"Poste Ailier Club Nantes", "Ailier"},
		{"Position: Ailier gauche", "Ailier"},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text, record.Provenance{})
			if v, _ := got.Get(record.FieldRole); v.String() != tt.want {
				t.Errorf("role = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestExtract_FractionalMetres(t *testing.T) {
	got := newTestExtractor().Extract("Taille 1,97 m Poids 88 kg", record.Provenance{})
	if v, _ := got.Get(record.FieldStature); v.String() != "197" {
		t.Errorf("stature = %q, want 197", v.String())
	}
	if v, _ := got.Get(record.FieldMass); v.String() != "88" {
		t.Errorf("mass = %q, want 88", v.String())
	}
}

func TestExtract_AgeFromBirthDate(t *testing.T) {
	got := newTestExtractor().Extract("Né le 02/04/1998 Central", record.Provenance{})
	if v, _ := got.Get(record.FieldBirthDate); v.String() != "1998-04-02" {
		t.Errorf("birth_date = %q", v.String())
	}
	if v, _ := got.Get(record.FieldAge); v.String() != "26" {
		t.Errorf("age = %q, want 26", v.String())
	}
	if v, _ := got.Get(record.FieldRole); v.String() != RoleMiddle {
		t.Errorf("role = %q, want %s", v.String(), RoleMiddle)
	}
}

func TestExtract_Statistics(t *testing.T) {
	got := newTestExtractor().Extract("Maillot 7 - 120 sélections, 340 matchs, 12 titres", record.Provenance{})
	want := map[string]string{
		record.FieldJerseyNumber:    "7",
		record.FieldAppearanceCount: "120",
		record.FieldMatchCount:      "340",
		record.FieldTitleCount:      "12",
	}
	for name, w := range want {
		if v, _ := got.Get(name); v.String() != w {
			t.Errorf("%s = %q, want %q", name, v.String(), w)
		}
	}
}

func TestExtract_NoisyTextYieldsNothing(t *testing.T) {
	got := newTestExtractor().Extract("ATT CKANT 19X", record.Provenance{})
	if len(got) != 0 {
		t.Errorf("expected no fields, got %v", got.Strings())
	}
	if s := QualityScore(got, len("ATT CKANT 19X")); s != 0 {
		t.Errorf("score = %d, want 0", s)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor()
	text := "PASSEUR 1.92 m 85 kg MONTPELLIER 45 sélections"
	first := e.Extract(text, record.Provenance{})
	firstScore := QualityScore(first, len(text))
	for i := 0; i < 20; i++ {
		again := e.Extract(text, record.Provenance{})
		if s := QualityScore(again, len(text)); s != firstScore {
			t.Fatalf("run %d score = %d, want %d", i, s, firstScore)
		}
		for name, f := range first {
			if again[name].Value != f.Value {
				t.Fatalf("run %d %s = %v, want %v", i, name, again[name].Value, f.Value)
			}
		}
	}
}

func TestQualityScore(t *testing.T) {
	f := record.Fields{}
	f.Set(record.FieldRole, record.Text(RoleAttacker), record.Provenance{})
	f.Set(record.FieldStature, record.Int(195), record.Provenance{})
	f.Set(record.FieldMass, record.Int(92), record.Provenance{})
	f.Set(record.FieldAge, record.Int(24), record.Provenance{})
	f.Set(record.FieldAffiliation, record.Text("Paris Volley"), record.Provenance{})

	// 3 + 2 + 2 + 1 + 2 = 10, +1 consistency.
	if got := QualityScore(f, 36); got != 11 {
		t.Errorf("score = %d, want 11", got)
	}
	if got := QualityScore(f, LongTextThreshold+1); got != 12 {
		t.Errorf("score with long text = %d, want 12", got)
	}
	if got := QualityScore(record.Fields{}, 0); got != 0 {
		t.Errorf("empty score = %d, want 0", got)
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  ATTAQUANT |  195\n\n92 ; « PARIS »  ")
	if got != "ATTAQUANT 195 92 PARIS" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestFromRaw(t *testing.T) {
	e := newTestExtractor()
	raw := map[string]string{
		"nom_joueur":   "Kevin  Tillie",
		"numero":       "",
		"poste":        "Attaquant (Pointu)",
		"taille":       "1m97",
		"poids":        "250",
		"url_cv_image": "http://example.test/cv.png",
	}

	c, rejected := e.FromRaw(raw, "roster-page")

	if c.Key != "kevin-tillie" {
		t.Errorf("key = %q, want kevin-tillie", c.Key)
	}
	if c.Source != "roster-page" {
		t.Errorf("source = %q", c.Source)
	}
	if v, _ := c.Fields.Get(record.FieldRole); v.String() != RoleOpposite {
		t.Errorf("role = %q, want %q", v.String(), RoleOpposite)
	}
	if v, _ := c.Fields.Get(record.FieldStature); v.String() != "197" {
		t.Errorf("stature = %q, want 197", v.String())
	}
	if c.Fields.Has(record.FieldMass) {
		t.Error("out-of-range mass should be rejected")
	}
	if len(rejected) != 1 || rejected[0] != record.FieldMass {
		t.Errorf("rejected = %v, want [mass_kg]", rejected)
	}
	if v, _ := c.Fields.Get("url_cv_image"); v.String() != "http://example.test/cv.png" {
		t.Errorf("unknown field should pass through, got %q", v.String())
	}
	if c.HasScore {
		t.Error("harvested candidates carry no trial score")
	}
}

func TestPatternsCompileCaseInsensitive(t *testing.T) {
	// Guard against a pattern silently losing its flag when edited.
	fp, _ := Default().Lookup(record.FieldRole)
	caseFlag := regexp.MustCompile(`^\(\?i\)`)
	for i, re := range fp.Patterns {
		if !caseFlag.MatchString(re.String()) {
			t.Errorf("role pattern %d is case-sensitive: %s", i, re.String())
		}
	}
}

package record

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IdentityHint is the minimal identity a harvesting collaborator can supply
// alongside image bytes, independent of recognition.
type IdentityHint struct {
	Name   string `json:"name,omitempty"`
	Number int    `json:"number,omitempty"`
}

// IsZero reports whether the hint carries no usable identity.
func (h IdentityHint) IsZero() bool {
	return strings.TrimSpace(h.Name) == "" && h.Number == 0
}

// hintFilePattern matches file names like "12 Kevin Tillie.png".
var hintFilePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+(.+?)\.(?:png|jpe?g|gif|bmp|tiff?)$`)

// ParseIdentityHint derives a hint from the last path segment of a source
// URL or file path. It returns false when the segment does not follow the
// "<number> <name>.<ext>" convention.
func ParseIdentityHint(source string) (IdentityHint, bool) {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	p = strings.ReplaceAll(p, `\`, "/")

	m := hintFilePattern.FindStringSubmatch(path.Base(p))
	if m == nil {
		return IdentityHint{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 99 {
		return IdentityHint{}, false
	}
	name := strings.Join(strings.Fields(m[2]), " ")
	if name == "" {
		return IdentityHint{}, false
	}
	return IdentityHint{Name: name, Number: n}, true
}

// Slug folds a display name into its identity form: accents removed,
// lowercased, runs of non-alphanumerics collapsed to single hyphens.
// "  Kévin   TILLIE " and "kevin tillie" both become "kevin-tillie".
func Slug(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Key derives the identity key from a name and an optional number.
// It returns "" when the name carries no identity.
func Key(name string, number int) string {
	slug := Slug(name)
	if slug == "" {
		return ""
	}
	if number > 0 {
		return fmt.Sprintf("%s_%d", slug, number)
	}
	return slug
}

// NormalizeKey brings a caller-supplied key into canonical form, so that
// "Kevin Tillie_12" and "kevin-tillie_12" name the same entity. Fallback
// keys are returned unchanged.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, fallbackPrefix) {
		return key
	}
	if i := strings.LastIndexByte(key, '_'); i > 0 {
		if n, err := strconv.Atoi(key[i+1:]); err == nil && n > 0 {
			if k := Key(key[:i], n); k != "" {
				return k
			}
		}
	}
	return Slug(key)
}

// IsFallbackKey reports whether key was produced by FallbackKey.
func IsFallbackKey(key string) bool {
	return strings.HasPrefix(key, fallbackPrefix)
}

// KeyFor derives the identity key from the name and number fields.
func KeyFor(fields Fields) string {
	name, ok := fields.Get(FieldName)
	if !ok {
		return ""
	}
	number := 0
	if v, ok := fields.Get(FieldNumber); ok && v.Kind == KindInt {
		number = v.Int
	}
	return Key(name.String(), number)
}

const fallbackPrefix = "unknown-"

// FallbackKey hashes the full field set into a stable key for records with
// no recoverable identity. Two records with identical fields collide on
// purpose.
func FallbackKey(fields Fields) string {
	h := xxhash.New()
	for _, name := range fields.Names() {
		_, _ = h.WriteString(name)
		_, _ = h.WriteString("=")
		_, _ = h.WriteString(fields[name].Value.String())
		_, _ = h.WriteString("\x00")
	}
	return fmt.Sprintf("%s%016x", fallbackPrefix, h.Sum64())
}

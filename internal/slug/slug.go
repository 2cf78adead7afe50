// Package slug derives URL-safe identifiers from human-entered names and
// keeps them unique within a sibling scope. Both the category and catalog
// services share this one implementation; only the fallback token and the
// scope lookup differ between them.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength matches the width of the slug columns.
const MaxLength = 220

var (
	// invalidChars matches anything that is not a lowercase letter, digit,
	// whitespace, or hyphen. Applied after diacritics have been stripped.
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]+`)
	// whitespaceRun collapses runs of whitespace into a single hyphen.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses runs of hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// stroked maps letters that canonical decomposition leaves intact to their
// base Latin letter. đ is the common case (Vietnamese names); ł and ø have
// the same property. Applied after lowercasing, before NFD.
var stroked = strings.NewReplacer(
	"đ", "d",
	"ł", "l",
	"ø", "o",
)

// stripMarks decomposes to NFD and removes combining diacritical marks,
// so "Cà phê" folds to "ca phe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize converts a human-readable name into slug form:
// "Đồ uống & Trà" -> "do-uong-tra". The result may be empty when the
// input contains no usable characters. Normalize is idempotent.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = stroked.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Make returns the base slug for a name: Normalize, then the entity's
// fallback token when nothing survives normalization, then the length cap.
func Make(name, fallback string) string {
	s := Normalize(name)
	if s == "" {
		s = fallback
	}
	return truncate(s)
}

// LookupFunc reports whether a candidate slug is already taken within the
// caller's scope. The caller binds the scope (parent or owning category)
// and excludes the record being edited, if any.
type LookupFunc func(ctx context.Context, slug string) (bool, error)

// Resolve returns a slug for name that is free within the caller's scope.
// It probes the base slug first, then base-2, base-3, and so on until the
// lookup reports a free candidate. The store's unique index remains the
// final arbiter: Resolve and the eventual write are not atomic, so a
// concurrent writer can still claim the slug between probe and insert.
func Resolve(ctx context.Context, name, fallback string, taken LookupFunc) (string, error) {
	base := Make(name, fallback)
	candidate := base
	for n := 2; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probing slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = withSuffix(base, n)
	}
}

// withSuffix appends -n to base, shortening base when needed so the result
// stays within MaxLength. Cutting the suffix instead would make the probe
// loop spin on the same candidate once base is at full length.
func withSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}

// truncate cuts a slug to MaxLength without re-normalizing. The input is
// ASCII at this point, so a byte cut is a character cut; a hyphen exposed
// at the cut edge is trimmed.
func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	return strings.TrimRight(s[:MaxLength], "-")
}

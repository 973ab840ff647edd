package series

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptyReference is the only way reference parsing can fail: every
// non-empty string classifies into exactly one kind.
var ErrEmptyReference = errors.New("series reference is empty")

type RefKind string

const (
	RefUUID     RefKind = "uuid"
	RefLegacyID RefKind = "legacy_id"
	RefSlug     RefKind = "slug"
)

// Reference is a caller-supplied series identifier after classification.
// Slug is always populated and is the canonical cache key for the reference.
type Reference struct {
	Raw  string
	Kind RefKind
	Slug string
}

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// ParseReference classifies a raw reference as a UUID shape, a legacy numeric
// id, or a human-readable slug. The UUID check is shape-only: 36 characters in
// five hyphen-delimited groups, with no version or variant validation.
func ParseReference(raw string) (Reference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Reference{}, ErrEmptyReference
	}

	ref := Reference{Raw: trimmed, Slug: Slugify(trimmed)}
	switch {
	case looksLikeUUID(trimmed):
		ref.Kind = RefUUID
	case isDecimalInteger(trimmed):
		ref.Kind = RefLegacyID
	default:
		ref.Kind = RefSlug
	}

	return ref, nil
}

// Slugify derives a canonical URL-safe identifier from a name: lowercase,
// strip everything outside [a-z0-9\s-], collapse whitespace runs to a single
// hyphen, collapse hyphen runs, trim boundary hyphens. Idempotent.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func looksLikeUUID(value string) bool {
	if len(value) != 36 {
		return false
	}
	return len(strings.Split(value, "-")) == 5
}

func isDecimalInteger(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

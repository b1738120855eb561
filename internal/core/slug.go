package core

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	minSlugLength = 3
	maxSlugLength = 60
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs would collide with client routes.
var reservedSlugs = map[string]bool{
	"admin": true, "api": true, "dashboard": true, "forms": true, "login": true,
	"signup": true, "settings": true, "templates": true, "new": true, "public": true,
}

// validSlug reports whether s is a well-formed, unreserved slug.
func validSlug(s string) bool {
	return len(s) >= minSlugLength && len(s) <= maxSlugLength && slugPattern.MatchString(s) && !reservedSlugs[s]
}

// slugify lower-cases s, strips accents and joins words with dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxSlugLength-7 {
		out = strings.Trim(out[:maxSlugLength-7], "-")
	}
	return out
}

// candidateSlug derives a slug from a title with a random suffix.
func candidateSlug(title string) string {
	base := slugify(title)
	if base == "" {
		base = "form"
	}
	return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

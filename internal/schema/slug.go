package schema

import (
	"context"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	slugMinLen = 3
	slugMaxLen = 200

	// DefaultNamespace scopes slug uniqueness when no namespace is chosen.
	DefaultNamespace = "global"
)

var slugPattern = regexp.MustCompile(`(?i)^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slug validates a URL-safe identifier and reserves it build-wide. The same
// literal slug may appear in different namespaces but at most once per
// namespace per build.
type Slug struct {
	Namespace string
	Reserved  []string
}

func (s Slug) Apply(_ context.Context, value any, inv *Invocation) any {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case nil:
		// Absent slugs default to the slugified file name stem.
		base := path.Base(inv.Doc.Path)
		str = Slugify(strings.TrimSuffix(base, path.Ext(base)))
	default:
		inv.Issuef(CodeInvalidType, "expected string, got %T", value)
		return nil
	}

	n := utf8.RuneCountInString(str)
	if n < slugMinLen {
		inv.Issuef(CodeTooShort, "slug must be at least %d characters, got %d", slugMinLen, n)
		return nil
	}
	if n > slugMaxLen {
		inv.Issuef(CodeTooLong, "slug must be at most %d characters, got %d", slugMaxLen, n)
		return nil
	}
	if !slugPattern.MatchString(str) {
		inv.Issuef(CodePattern, "slug %q must match %s", str, slugPattern.String())
		return nil
	}
	for _, word := range s.Reserved {
		if strings.EqualFold(str, word) {
			inv.Issuef(CodeReserved, "slug %q is a reserved word", str)
			return nil
		}
	}

	ns := s.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	prev, ok := inv.Build.Reserve(ns, str, inv.Doc.Path)
	if !ok && prev != inv.Doc.Path {
		// A collision is reported but does not null the value; whether it
		// fails the build is the caller's policy.
		inv.Issuef(CodeDuplicate, "duplicate slug %q in namespace %q: already used by %s (found again in %s)", str, ns, prev, inv.Doc.Path)
	}
	return str
}

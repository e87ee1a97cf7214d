package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	forgeerrors "git.home.luguber.info/inful/contentforge/internal/errors"
)

// Accepted public base path forms: "/", "/x/", "./x/", "scheme:x/" including
// full origins like "https://cdn.example.com/x/".
var (
	basePattern   = regexp.MustCompile(`^(/|\./|[a-zA-Z][a-zA-Z0-9+.-]*:)`)
	namingPattern = regexp.MustCompile(`\[hash(:\d+)?\]`)
)

// Validate enforces the startup-fatal configuration rules.
func (c *Config) Validate() error {
	if !basePattern.MatchString(c.Output.Base) {
		return forgeerrors.ConfigInvalid("output.base",
			fmt.Sprintf("%q must be root (/), root-relative (/x/), relative (./x/) or a full origin (scheme:x/)", c.Output.Base))
	}
	if !namingPattern.MatchString(c.Output.Naming) {
		return forgeerrors.ConfigInvalid("output.naming",
			fmt.Sprintf("%q must contain a [hash] or [hash:N] token; names without content hashes are not collision-free", c.Output.Naming))
	}

	if len(c.Collections) == 0 {
		return forgeerrors.ConfigInvalid("collections", "at least one collection is required")
	}
	seen := make(map[string]bool, len(c.Collections))
	for _, col := range c.Collections {
		if col.Name == "" {
			return forgeerrors.ConfigInvalid("collections", "collection without a name")
		}
		if seen[col.Name] {
			return forgeerrors.ConfigInvalid("collections", fmt.Sprintf("duplicate collection name %q", col.Name))
		}
		seen[col.Name] = true

		if col.Glob == "" {
			return forgeerrors.ConfigInvalid("collections."+col.Name+".glob", "glob is required")
		}
		if _, err := path.Match(col.Glob, "probe"); err != nil {
			return forgeerrors.ConfigInvalid("collections."+col.Name+".glob", err.Error())
		}
		if strings.HasPrefix(col.Glob, "/") {
			return forgeerrors.ConfigInvalid("collections."+col.Name+".glob", "glob must be relative to the content dir")
		}

		if _, err := BuildShape(col.Fields); err != nil {
			return forgeerrors.ConfigInvalid("collections."+col.Name+".fields", err.Error())
		}
	}
	return nil
}

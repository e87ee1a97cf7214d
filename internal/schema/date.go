package schema

import (
	"context"
	"time"
)

// canonicalLayout is the fixed-precision UTC timestamp every accepted date is
// normalized to. Normalization is idempotent: the canonical form parses under
// the first accepted layout and reformats to itself.
const canonicalLayout = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date parses a calendar date/time string and normalizes it to one canonical
// UTC representation regardless of input format.
type Date struct{}

func (Date) Apply(_ context.Context, value any, inv *Invocation) any {
	switch v := value.(type) {
	case time.Time:
		// yaml.v3 decodes unquoted timestamps directly.
		return v.UTC().Format(canonicalLayout)
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format(canonicalLayout)
			}
		}
		inv.Issuef(CodeInvalidDate, "cannot parse %q as a date", v)
		return nil
	case nil:
		return nil
	default:
		inv.Issuef(CodeInvalidType, "expected date string, got %T", value)
		return nil
	}
}

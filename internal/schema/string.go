package schema

import (
	"context"
	"unicode/utf8"
)

// String validates a plain string value.
type String struct {
	Required bool
	MinLen   int
	MaxLen   int // 0 means unbounded
}

func (s String) Apply(_ context.Context, value any, inv *Invocation) any {
	if value == nil {
		if s.Required {
			inv.Issuef(CodeRequired, "value is required")
		}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		inv.Issuef(CodeInvalidType, "expected string, got %T", value)
		return nil
	}

	n := utf8.RuneCountInString(str)
	if n < s.MinLen {
		inv.Issuef(CodeTooShort, "string must be at least %d characters, got %d", s.MinLen, n)
		return nil
	}
	if s.MaxLen > 0 && n > s.MaxLen {
		inv.Issuef(CodeTooLong, "string must be at most %d characters, got %d", s.MaxLen, n)
		return nil
	}
	return str
}

package pipeline

import (
	"regexp"
	"strings"
	"sync"
)

var (
	globMu    sync.Mutex
	globCache = map[string]*regexp.Regexp{}
)

// globMatch matches a slash-separated relative path against a glob. `*` and
// `?` do not cross path separators; `**` does.
func globMatch(glob, relPath string) bool {
	globMu.Lock()
	re, ok := globCache[glob]
	if !ok {
		re = compileGlob(glob)
		globCache[glob] = re
	}
	globMu.Unlock()
	return re.MatchString(relPath)
}

func compileGlob(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

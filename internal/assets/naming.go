package assets

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultNaming is the asset naming template applied when the configuration
// does not override it.
const DefaultNaming = "[name]-[hash:8][ext]"

var hashToken = regexp.MustCompile(`\[hash(?::(\d+))?\]`)

// ExpandName substitutes the [name], [hash:N] and [ext] tokens of a naming
// template. hash is the full hex content hash; [hash:N] truncates it to N
// characters, bare [hash] keeps it whole. ext includes the leading dot, so a
// template written as ".[ext]" is normalized to avoid doubling it. The result
// is a pure function of its inputs.
func ExpandName(template, hash, name, ext string) string {
	out := strings.ReplaceAll(template, ".[ext]", "[ext]")
	out = hashToken.ReplaceAllStringFunc(out, func(tok string) string {
		m := hashToken.FindStringSubmatch(tok)
		if m[1] == "" {
			return hash
		}
		n, _ := strconv.Atoi(m[1])
		if n > len(hash) {
			n = len(hash)
		}
		return hash[:n]
	})
	out = strings.ReplaceAll(out, "[name]", name)
	out = strings.ReplaceAll(out, "[ext]", ext)
	return out
}

// PublicURL joins the configured public base path with an output file name.
// The base may be root ("/"), root-relative ("/static/"), relative
// ("./static/") or a full origin ("https://cdn.example.com/static/").
func PublicURL(base, name string) string {
	if base == "" {
		base = "/"
	}
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

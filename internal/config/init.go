package config

import (
	"os"
	"path/filepath"

	forgeerrors "git.home.luguber.info/inful/contentforge/internal/errors"
)

const starterConfig = `# contentforge configuration
root: .
content: content

output:
  data: public/data
  assets: public/assets
  base: /assets/
  naming: "[name]-[hash:8][ext]"

collections:
  - name: posts
    glob: "posts/**"
    fields:
      title:
        type: string
        required: true
        max: 120
      slug:
        type: slug
        namespace: posts
      date:
        type: date
      excerpt:
        type: excerpt
        limit: 260
      cover:
        type: image
`

// Init writes a starter configuration file. Existing files are preserved
// unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return forgeerrors.ConfigInvalid(path, "file already exists, use --force to overwrite")
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return forgeerrors.Wrap(err, forgeerrors.CategoryConfig, forgeerrors.SeverityFatal, "create config dir")
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return forgeerrors.Wrap(err, forgeerrors.CategoryConfig, forgeerrors.SeverityFatal, "write configuration")
	}
	return nil
}

package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint computes a content fingerprint over the metadata (in
// declaration order, excluding any stored fingerprint) and the body.
func Fingerprint(fm *FrontMatter, body []byte) string {
	var b strings.Builder
	for _, key := range fm.Keys() {
		if key == mdfp.FingerprintField {
			continue
		}
		v, _ := fm.Get(key)
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(b.String(), "\n"), string(body))
}

package storage

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a project name into a filesystem-safe key: lowercase
// letters and digits, with every other run of characters collapsed to a
// single '-'. Accented Latin letters are folded to their base letter.
// Letters or digits that still fall outside ASCII are dropped and a hash
// of the name is appended, so distinct names keep distinct slugs. An
// otherwise empty result becomes "roadmap".
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	lossy := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = true
			continue
		}
		if r >= unicode.MaxASCII {
			lossy = true
			pendingDash = true
			continue
		}
		if pendingDash && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingDash = false
		b.WriteRune(r)
	}

	slug := b.String()
	if slug == "" {
		slug = "roadmap"
	}
	if lossy {
		slug += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(name)))
	}
	return slug
}

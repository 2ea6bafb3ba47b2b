package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidFileName is returned when nothing usable remains of a name.
var ErrInvalidFileName = errors.New("invalid file name")

const unsafeFileChars = `:*?"<>|`

// SanitizeFileName keeps the last path element of name, so client supplied
// directories never reach storage, and replaces control and reserved
// characters with underscores.
func SanitizeFileName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	switch base {
	case ".", "..", "/":
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(unsafeFileChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

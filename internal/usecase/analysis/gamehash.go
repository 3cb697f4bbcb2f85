package analysis

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// GameHash identifies a game record independently of its whitespace layout.
func GameHash(record string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, record)

	sum := md5.Sum([]byte(stripped))
	return hex.EncodeToString(sum[:])
}

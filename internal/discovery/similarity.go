package discovery

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var dice = metrics.NewSorensenDice()

// Similarity scores two tags with the Sørensen-Dice coefficient over character bigrams.
// Case and whitespace are ignored. The result is in [0, 1].
func Similarity(a, b string) float64 {
	a, b = squash(a), squash(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, dice)
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

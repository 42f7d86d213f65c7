package validation

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/secure/precis"
	"golang.org/x/text/unicode/norm"

	"github.com/siohaza/hyperio/internal/protocol"
)

const MaxPlayerIDLen = 64

func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsValidTarget accepts any finite world-space point. Targets outside the arena are allowed,
// the player is clamped when it moves.
func IsValidTarget(x, y float64) bool {
	return IsFinite(x, y)
}

func IsValidPlayerID(id string) bool {
	return id != "" && len(id) <= MaxPlayerIDLen
}

// SanitizeName applies the PRECIS nickname profile and keeps at most PlayerNameLen
// user-perceived characters. It reports false when nothing usable is left.
func SanitizeName(raw string) (string, bool) {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)

	name, err := precis.Nickname.String(stripped)
	if err != nil || name == "" {
		return "", false
	}

	return truncate(name, protocol.PlayerNameLen), true
}

// truncate cuts s after max normalization segments so combining marks stay with their base.
func truncate(s string, max int) string {
	var it norm.Iter
	it.InitString(norm.NFC, s)

	var b strings.Builder
	for n := 0; !it.Done() && n < max; n++ {
		b.Write(it.Next())
	}
	return strings.TrimSpace(b.String())
}

package animepicker

import (
	"math/rand/v2"
	"strings"
)

var discoveryEmoji = []string{
	"🎲", "🌸", "🍙", "🎴", "🗡️", "🚀", "🐉", "🌙", "⛩️", "🍜",
	"🎐", "🦊", "👾", "🌊", "🔮", "🎏", "🍡", "⚔️", "🤖", "✨",
}

// RandomEmoji returns n emoji drawn at random, shown while a discovery pick
// has no library context to describe.
func RandomEmoji(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(discoveryEmoji[rand.IntN(len(discoveryEmoji))])
	}
	return b.String()
}

package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncatePath shortens p to maxWidth cells by dropping leading characters,
// keeping the file name visible.
func TruncatePath(p string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(p) <= maxWidth {
		return p
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	runes := []rune(p)
	width, start := 0, len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > maxWidth-3 {
			break
		}
		width += w
		start--
	}
	return "..." + string(runes[start:])
}

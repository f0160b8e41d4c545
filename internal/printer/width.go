package printer

import (
	"os"
	"strconv"

	"golang.org/x/text/width"
)

// displayWidth measures s the way a terminal would lay it out: wide
// and fullwidth runes (CJK, full-width punctuation) count for two
// columns, everything else for one.
func displayWidth(s string) int {
	total := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
	}
	return total
}

// defaultTerminalWidth is used whenever COLUMNS is unset or not a
// positive integer; truncation falls back to a conventional 80-column
// width, and the controlling tty is never queried.
const defaultTerminalWidth = 80

// terminalWidth reports how many columns to wrap display output to.
func terminalWidth() int {
	if s := os.Getenv("COLUMNS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return defaultTerminalWidth
}

package command

import "strings"

// MaxMessageLength is Discord's limit for message content.
const MaxMessageLength = 2000

// SplitMessage cuts content into chunks of at most max bytes, preferring line
// breaks, then spaces. It always returns at least one chunk.
func SplitMessage(content string, max int) []string {
	if len(content) <= max {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if current.Len()+len(line) <= max {
			current.WriteString(line)
			continue
		}
		flush()
		for len(line) > max {
			cut := breakPoint(line, max)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}

// breakPoint picks where to cut a line longer than max: the last space in the
// final stretch of the window, else a rune boundary at max.
func breakPoint(line string, max int) int {
	for i := max - 1; i > max-50 && i > 0; i-- {
		if line[i] == ' ' {
			return i + 1
		}
	}
	cut := max
	for cut > 0 && !isRuneStart(line[cut]) {
		cut--
	}
	if cut == 0 {
		return max
	}
	return cut
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Package chunker splits long text into pieces that fit a message size limit.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Split splits text on line boundaries into chunks of at most limit runes.
// Lines are trimmed before they are accumulated. A line longer than limit
// is cut into consecutive slices of limit runes and each non-blank slice
// becomes its own chunk. Empty text yields no chunks.
func Split(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var (
		chunks  []string
		current []string
		size    int // rune length of strings.Join(current, "\n")
	)

	// blank chunks are dropped everywhere: the platform rejects empty messages
	flush := func() {
		if joined := strings.Join(current, "\n"); strings.TrimSpace(joined) != "" {
			chunks = append(chunks, joined)
		}
		current = current[:0]
		size = 0
	}

	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) > limit {
			if len(current) > 0 {
				flush()
			}
			for _, slice := range hardSplit(line, limit) {
				if strings.TrimSpace(slice) != "" {
					chunks = append(chunks, slice)
				}
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		n := utf8.RuneCountInString(trimmed)

		// +1 for the newline that joins this line to the chunk
		if len(current) > 0 && size+1+n > limit {
			flush()
		}

		if len(current) > 0 {
			size++
		}
		current = append(current, trimmed)
		size += n
	}

	if len(current) > 0 {
		flush()
	}

	return chunks
}

func hardSplit(line string, limit int) []string {
	runes := []rune(line)
	out := make([]string, 0, (len(runes)+limit-1)/limit)
	for i := 0; i < len(runes); i += limit {
		end := min(i+limit, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}

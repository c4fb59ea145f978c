package blog

import (
	"strings"

	"github.com/eringen/spacetraveling/richtext"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// WordCount counts whitespace-separated tokens in every heading and every
// body block of the post.
func WordCount(p PostDetail) int {
	n := 0
	for _, s := range p.Content {
		n += len(strings.Fields(s.Heading))
		n += len(strings.Fields(richtext.Text(s.Body)))
	}
	return n
}

// ReadingTime is the estimated reading time in whole minutes, rounded up.
func ReadingTime(p PostDetail) int {
	return (WordCount(p) + WordsPerMinute - 1) / WordsPerMinute
}

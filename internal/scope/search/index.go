package search

import (
	"strconv"
	"strings"

	"github.com/dsjohal14/listmatch/internal/catalog"
)

// IndexSeparator delimits entries of the flattened listing index
const IndexSeparator = "\n"

// BuildIndex flattens listings into one "<position>:<title>" line per listing.
// A "\n" inside a title is written as "\r": the title can never start a line
// of its own, and "\r" matches neither the gap space nor a gap token.
func BuildIndex(listings []catalog.Listing) string {
	size := 0
	for i := range listings {
		size += len(listings[i].Title) + 8
	}

	var b strings.Builder
	b.Grow(size)
	for i := range listings {
		if i > 0 {
			b.WriteString(IndexSeparator)
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(':')
		b.WriteString(strings.ReplaceAll(listings[i].Title, IndexSeparator, "\r"))
	}
	return b.String()
}

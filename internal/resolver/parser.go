package resolver

import (
	"strings"
)

// queryReservedChars are engine query-syntax characters stripped from raw
// user input before it is used as a query text.
const queryReservedChars = `+-&|!(){}[]^"~*?:\/`

// ParseSearchText normalizes raw user search input: reserved query-syntax
// characters are removed and whitespace is collapsed.
func ParseSearchText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if strings.ContainsRune(queryReservedChars, r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

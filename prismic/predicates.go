package prismic

import (
	"strconv"
	"strings"
)

// Predicate is one clause of the q parameter, e.g. [at(document.type, "posts")].
type Predicate struct {
	name  string
	path  string
	value string
}

// At matches documents whose path equals value.
func At(path, value string) Predicate {
	return Predicate{name: "at", path: path, value: value}
}

func (p Predicate) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(p.name)
	b.WriteString("(")
	b.WriteString(p.path)
	b.WriteString(", ")
	b.WriteString(strconv.Quote(p.value))
	b.WriteString(")]")
	return b.String()
}

// encodePredicates renders the q parameter: [[at(...)][at(...)]].
func encodePredicates(ps []Predicate) string {
	var b strings.Builder
	b.WriteString("[")
	for _, p := range ps {
		b.WriteString(p.String())
	}
	b.WriteString("]")
	return b.String()
}

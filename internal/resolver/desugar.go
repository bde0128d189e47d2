package resolver

import (
	"sort"
	"strings"
)

// Desugar strips pointer decoration and cv-qualifiers from a raw type string,
// producing the key used against the type catalog: "const Foo *" -> "Foo".
// Tokens are split on single spaces only.
func Desugar(typename string) string {
	typename = strings.ReplaceAll(typename, "*", "")

	var kept []string
	for _, tok := range strings.Split(typename, " ") {
		switch tok {
		case "", "const", "volatile":
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// TypeSet is an unordered set of canonical type names.
type TypeSet map[string]struct{}

func (s TypeSet) add(name string) {
	s[name] = struct{}{}
}

func (s TypeSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s TypeSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order.
func (s TypeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

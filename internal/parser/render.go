package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opkgforge/corebuild/internal/shellbridge"
)

// renderAssignments serializes a symbol table back into Bash declaration
// syntax, so a split-package function body (itself a sequence of bare
// assignment statements) can be re-evaluated layered on top of the
// architecture-specialized defaults it overrides.
func renderAssignments(vars shellbridge.Symbols) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		sym := vars[name]
		switch sym.Kind {
		case shellbridge.KindScalar:
			fmt.Fprintf(&b, "%s=%s\n", name, quote(sym.Scalar))
		case shellbridge.KindIndexed:
			b.WriteString(name)
			b.WriteString("=(")
			for i, v := range sym.Indexed {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(quote(v))
			}
			b.WriteString(")\n")
		case shellbridge.KindAssoc:
			b.WriteString("declare -A ")
			b.WriteString(name)
			b.WriteString("=(")
			keys := make([]string, 0, len(sym.Assoc))
			for k := range sym.Assoc {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "[%s]=%s ", quote(k), quote(sym.Assoc[k]))
			}
			b.WriteString(")\n")
		}
	}
	return b.String()
}

// quote renders s as a single-quoted Bash word, escaping embedded quotes
// with the standard '\'' idiom.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

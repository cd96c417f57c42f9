package recipe

import (
	"fmt"
	"regexp"
)

var comparatorRe = regexp.MustCompile(`<<|<=|=|>=|>>`)

// ParseDependency parses a recipe-authored dependency specification of the
// form "[build:|host:]package[(<<|<=|=|>=|>>)version]", e.g. "build:gcc",
// "libfoo>=1.2.3-1", or bare "libbar". Absent a "build:" prefix the
// dependency targets the host/target side.
func ParseDependency(spec string) (Dependency, error) {
	host := TargetHost
	name := spec

	if len(spec) > 6 && spec[:6] == "build:" {
		host = BuildHost
		name = spec[6:]
	} else if len(spec) > 5 && spec[:5] == "host:" {
		name = spec[5:]
	}

	loc := comparatorRe.FindStringIndex(name)
	if loc == nil {
		return Dependency{Name: name, Host: host}, nil
	}

	op := VersionComparator(name[loc[0]:loc[1]])
	ver := name[loc[1]:]
	pkg := name[:loc[0]]

	if pkg == "" || ver == "" {
		return Dependency{}, fmt.Errorf("%w: malformed dependency spec %q", ErrParse, spec)
	}

	return Dependency{Name: pkg, Operator: op, Version: ver, Host: host}, nil
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/opkgforge/corebuild/internal/recipe"
)

// makedependsScript renders the shell snippet that installs a build
// variant's makedepends inside the build container before build() runs:
// build-host dependencies go through apt-get, target-host dependencies
// through a generated opkg.conf pointing at the in-progress dist
// directory plus the upstream entware feed.
func makedependsScript(bv *recipe.BuildRecipe) string {
	var buildDeps, hostDeps []string
	for _, dep := range bv.MakeDepends {
		if dep.Host == recipe.BuildHost {
			buildDeps = append(buildDeps, dep.Name)
		} else {
			hostDeps = append(hostDeps, dep.Name)
		}
	}

	var lines []string

	if len(buildDeps) > 0 {
		lines = append(lines,
			"export DEBIAN_FRONTEND=noninteractive",
			"apt-get update -qq",
			`apt-get install -qq --no-install-recommends -o Dpkg::Options::="--force-confdef" -o Dpkg::Options::="--force-confold" -- `+strings.Join(buildDeps, " "),
		)
	}

	if len(hostDeps) > 0 {
		const opkgConfPath = "$SYSROOT/etc/opkg/opkg.conf"

		var conf strings.Builder
		conf.WriteString("dest root /\n")
		conf.WriteString("arch all 100\n")
		conf.WriteString("arch armv7-3.2 160\n")
		conf.WriteString("src/gz entware https://bin.entware.net/armv7sf-k3.2\n")
		conf.WriteString("arch rmall 200\n")
		fmt.Fprintf(&conf, "src/gz corebuild-rmall file://%s/rmall\n", mountDist)

		if bv.Arch != "rmall" {
			fmt.Fprintf(&conf, "arch %s 250\n", bv.Arch)
			fmt.Fprintf(&conf, "src/gz corebuild-%s file://%s/%s\n", bv.Arch, mountDist, bv.Arch)
		}

		lines = append(lines,
			fmt.Sprintf("echo -n %s > %s", shellQuote(conf.String()), opkgConfPath),
			"opkg update --verbosity=0",
			"opkg install --verbosity=0 --no-install-recommends -- "+strings.Join(hostDeps, " "),
		)
	}

	return strings.Join(lines, "\n")
}

// shellQuote wraps s in single quotes, escaping any embedded single
// quote.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

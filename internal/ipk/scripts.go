package ipk

import (
	"fmt"
	"strings"

	"github.com/opkgforge/corebuild/internal/recipe"
)

// scriptHeader is the fixed prelude every generated maintainer script
// carries.
const scriptHeader = "#!/usr/bin/env bash\nset -euo pipefail\n"

// MaintainerScripts converts a [recipe.Package]'s optional shell function
// bodies into the four Debian maintainer scripts (preinst, postinst, prerm,
// postrm), each wrapped in a conditional dispatch on opkg's invocation
// argument. Only scripts
// with at least one non-empty function are returned.
func MaintainerScripts(pkg *recipe.Package) map[string]string {
	scripts := make(map[string]string)

	if pkg.PreInstall != "" {
		scripts["preinst"] = wrapConditional(scriptHeader, []conditionalBlock{
			{action: "install", body: pkg.PreInstall},
		})
	}
	if pkg.PostInstall != "" || pkg.Configure != "" {
		var blocks []conditionalBlock
		if pkg.PostInstall != "" {
			blocks = append(blocks, conditionalBlock{action: "install", body: pkg.PostInstall})
		}
		if pkg.Configure != "" {
			blocks = append(blocks, conditionalBlock{action: "configure", body: pkg.Configure})
		}
		scripts["postinst"] = wrapConditional(scriptHeader, blocks)
	}

	if pkg.PreUpgrade != "" || pkg.PreRemove != "" {
		var blocks []conditionalBlock
		if pkg.PreUpgrade != "" {
			blocks = append(blocks, conditionalBlock{action: "upgrade", body: pkg.PreUpgrade})
		}
		if pkg.PreRemove != "" {
			blocks = append(blocks, conditionalBlock{action: "remove", body: pkg.PreRemove})
		}
		scripts["prerm"] = wrapConditional(scriptHeader, blocks)
	}

	if pkg.PostUpgrade != "" || pkg.PostRemove != "" {
		var blocks []conditionalBlock
		if pkg.PostUpgrade != "" {
			blocks = append(blocks, conditionalBlock{action: "upgrade", body: pkg.PostUpgrade})
		}
		if pkg.PostRemove != "" {
			blocks = append(blocks, conditionalBlock{action: "remove", body: pkg.PostRemove})
		}
		scripts["postrm"] = wrapConditional(scriptHeader, blocks)
	}

	return scripts
}

type conditionalBlock struct {
	action string
	body   string
}

// wrapConditional renders header followed by one "if [[ $1 = <action> ]];
// then script() { <body> }; script; fi" block per entry in blocks.
func wrapConditional(header string, blocks []conditionalBlock) string {
	var b strings.Builder
	b.WriteString(header)
	for _, blk := range blocks {
		fmt.Fprintf(&b, "\nif [[ $1 = %s ]]; then\n\tscript() {\n%s\n\t}\n\tscript\nfi\n", blk.action, blk.body)
	}
	return b.String()
}

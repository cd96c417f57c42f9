package pipeline

import (
	"strings"
	"testing"

	"github.com/opkgforge/corebuild/internal/recipe"
)

func TestMakedependsScriptEmptyWhenNoDeps(t *testing.T) {
	bv := &recipe.BuildRecipe{Arch: "armv7"}
	if got := makedependsScript(bv); got != "" {
		t.Errorf("makedependsScript() = %q, want empty", got)
	}
}

func TestMakedependsScriptBuildHostUsesAptGet(t *testing.T) {
	bv := &recipe.BuildRecipe{
		Arch: "armv7",
		MakeDepends: []recipe.Dependency{
			{Name: "gcc", Host: recipe.BuildHost},
			{Name: "make", Host: recipe.BuildHost},
		},
	}

	script := makedependsScript(bv)
	if !strings.Contains(script, "apt-get install") {
		t.Errorf("script missing apt-get install: %q", script)
	}
	if !strings.Contains(script, "gcc make") {
		t.Errorf("script missing dependency names in order: %q", script)
	}
	if strings.Contains(script, "opkg") {
		t.Errorf("script should not reference opkg when there are no host deps: %q", script)
	}
}

func TestMakedependsScriptTargetHostUsesOpkg(t *testing.T) {
	bv := &recipe.BuildRecipe{
		Arch: "rm1",
		MakeDepends: []recipe.Dependency{
			{Name: "libfoo", Host: recipe.TargetHost},
		},
	}

	script := makedependsScript(bv)
	if !strings.Contains(script, "opkg install") {
		t.Errorf("script missing opkg install: %q", script)
	}
	if !strings.Contains(script, "libfoo") {
		t.Errorf("script missing dependency name: %q", script)
	}
	if !strings.Contains(script, "arch rm1 250") {
		t.Errorf("script missing this architecture's own feed line: %q", script)
	}
}

func TestMakedependsScriptRmallOmitsOwnFeedLine(t *testing.T) {
	bv := &recipe.BuildRecipe{
		Arch: "rmall",
		MakeDepends: []recipe.Dependency{
			{Name: "libfoo", Host: recipe.TargetHost},
		},
	}

	script := makedependsScript(bv)
	if strings.Contains(script, "arch rmall 250") {
		t.Errorf("rmall should not get a second, redundant feed line: %q", script)
	}
}

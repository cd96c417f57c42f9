package builtin

import (
	"context"
	"debug/elf"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opkgforge/corebuild/internal/executor"
	"github.com/opkgforge/corebuild/internal/hooks"
)

const nostripFlag = "nostrip"

// StripHook implements [hooks.PostBuild]. Register it on a
// [hooks.Registry] to strip ELF binaries out of srcdir right after the
// recipe's build() body runs.
type StripHook struct{}

var _ hooks.PostBuild = StripHook{}

// PostBuild walks args.SrcDir for ELF binaries with a symbol table,
// strips the ARM ones with "${CROSS_COMPILE}strip" and the x86 ones
// with plain "strip" (both run inside args.Container), and restores
// each stripped file's original mtime.
func (StripHook) PostBuild(ctx context.Context, args hooks.BuildArgs) error {
	if _, skip := args.Build.Flags[nostripFlag]; skip {
		return nil
	}

	var armFiles, x86Files []string
	mtimes := map[string]int64{}

	err := filepath.WalkDir(args.SrcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		arch, ok := elfArch(path)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		mtimes[path] = info.ModTime().UnixNano()

		switch arch {
		case elf.EM_ARM:
			armFiles = append(armFiles, path)
		case elf.EM_386, elf.EM_X86_64:
			x86Files = append(x86Files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("builtin strip hook: walk %s: %w", args.SrcDir, err)
	}

	if len(armFiles) == 0 && len(x86Files) == 0 {
		return nil
	}

	script := stripScript(args.SrcDir, args.SrcMount, x86Files, armFiles)
	res, err := args.Container.Exec(ctx, executor.RunOptions{
		WorkDir: args.SrcMount,
		Script:  script,
	})
	if err != nil {
		return fmt.Errorf("builtin strip hook: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("builtin strip hook: %w", &executor.BuildScriptError{
			Phase: "strip", ExitCode: res.ExitCode, Stderr: res.Stderr,
		})
	}

	for path, mtime := range mtimes {
		ts := time.Unix(0, mtime)
		if err := os.Chtimes(path, ts, ts); err != nil {
			return fmt.Errorf("builtin strip hook: restore mtime of %s: %w", path, err)
		}
	}

	return nil
}

// elfArch reports the machine architecture of path if it is a
// symbol-bearing ELF binary; already-stripped binaries and non-ELF
// files are skipped alike.
func elfArch(path string) (elf.Machine, bool) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	if f.Section(".symtab") == nil {
		return 0, false
	}
	return f.Machine, true
}

// stripScript builds the shell snippet that strips x86Files with
// "strip" and armFiles with "${CROSS_COMPILE}strip", each path
// rewritten from its host-side srcDir-relative form to its
// mount-relative form.
func stripScript(srcDir, srcMount string, x86Files, armFiles []string) string {
	var lines []string

	if len(x86Files) > 0 {
		lines = append(lines, "strip --strip-all -- "+quoteMounted(srcDir, srcMount, x86Files))
	}
	if len(armFiles) > 0 {
		lines = append(lines, `"${CROSS_COMPILE}strip" --strip-all -- `+quoteMounted(srcDir, srcMount, armFiles))
	}

	return strings.Join(lines, "\n")
}

func quoteMounted(srcDir, srcMount string, paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		quoted[i] = shellQuote(filepath.Join(srcMount, rel))
	}
	return strings.Join(quoted, " ")
}

// shellQuote wraps s in single quotes, escaping any embedded single
// quote.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

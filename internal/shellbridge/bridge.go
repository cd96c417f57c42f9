package shellbridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Evaluate parses and evaluates the recipe file at path in a sandboxed
// in-process shell: variable assignments and parameter/arithmetic expansion
// are resolved exactly as Bash would, but no external command is ever run.
// env pre-populates the evaluation environment (srcdir/pkgdir placeholders,
// the arch tag, and any parse-phase sentinel the recipe can branch on).
func Evaluate(ctx context.Context, path string, env map[string]string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &EvaluationError{Path: path, Cause: err}
	}

	return evaluateSource(ctx, src, path, env)
}

// EvaluateString evaluates a literal shell source fragment, named for error
// reporting. The parser package uses this to re-evaluate a split-package
// function's body as a flat script layered on top of rendered recipe-level
// variable assignments, deriving that package's own symbol table.
func EvaluateString(ctx context.Context, src string, name string, env map[string]string) (*Result, error) {
	return evaluateSource(ctx, []byte(src), name, env)
}

func evaluateSource(ctx context.Context, src []byte, name string, env map[string]string) (*Result, error) {
	file, err := syntax.NewParser().Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, &EvaluationError{Path: name, Cause: err}
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(envPairs(env)...)),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandlers(rejectSideEffects),
	)
	if err != nil {
		return nil, &EvaluationError{Path: name, Cause: err}
	}

	if err := runner.Run(ctx, file); err != nil {
		var sideEffect *SideEffectError
		if errors.As(err, &sideEffect) {
			return nil, sideEffect
		}
		return nil, &EvaluationError{Path: name, Cause: err}
	}

	return &Result{
		Vars:  harvestVars(runner.Vars),
		Funcs: harvestFuncs(src, file),
	}, nil
}

// rejectSideEffects refuses every external command: parse-phase evaluation requires
// that the recipe evaluator "MUST NOT allow network, filesystem, or subshell
// side effects at parse time." Commands built into the interpreter itself
// (":", "true", "cd", ...) never reach this handler; only a genuine attempt
// to exec an external program does.
func rejectSideEffects(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		return &SideEffectError{Command: args[0]}
	}
}

func envPairs(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	return pairs
}

func harvestVars(vars map[string]expand.Variable) Symbols {
	out := make(Symbols, len(vars))
	for name, v := range vars {
		switch v.Kind {
		case expand.String:
			out[name] = Symbol{Kind: KindScalar, Scalar: v.Str}
		case expand.Indexed:
			out[name] = Symbol{Kind: KindIndexed, Indexed: append([]string(nil), v.List...)}
		case expand.Associative:
			m := make(map[string]string, len(v.Map))
			for k, val := range v.Map {
				m[k] = val
			}
			out[name] = Symbol{Kind: KindAssoc, Assoc: m}
		default:
			// Unset/NameRef variables are not part of the declared symbol
			// table the parser consumes.
		}
	}
	return out
}

// harvestFuncs collects every top-level function declaration's raw source
// text (the declaration is never evaluated, only its body text is needed for
// later use as a build-phase script).
func harvestFuncs(src []byte, file *syntax.File) Functions {
	funcs := make(Functions)
	syntax.Walk(file, func(node syntax.Node) bool {
		decl, ok := node.(*syntax.FuncDecl)
		if !ok {
			return true
		}
		funcs[decl.Name.Value] = extractBody(src, decl.Body)
		return false
	})
	return funcs
}

// extractBody slices the raw source between a function's braces. Falling
// back to re-printing the statement covers the rarer subshell-bodied
// function form ("name() ( ... )").
func extractBody(src []byte, stmt *syntax.Stmt) string {
	if blk, ok := stmt.Cmd.(*syntax.Block); ok {
		start := int(blk.Lbrace.Offset()) + 1
		end := int(blk.Rbrace.Offset())
		if start >= 0 && end <= len(src) && start <= end {
			return strings.Trim(string(src[start:end]), "\n")
		}
	}
	var buf bytes.Buffer
	syntax.NewPrinter().Print(&buf, stmt)
	return buf.String()
}

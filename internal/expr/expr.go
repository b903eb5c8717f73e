// Package expr implements the Expression Evaluator (spec.md §4.4): lazy,
// scoped, recursive `${name}` substitution interleaved with `$ cmd` exec
// expressions.
package expr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gardencli/garden/internal/shellenv"
)

// Kind classifies a Diagnostic so callers can tell an exec-expression
// failure apart from a merely-unresolved or cyclic variable reference.
type Kind int

const (
	// KindUnresolved is an unresolved or cyclic ${name} reference.
	KindUnresolved Kind = iota
	// KindExecFailure is a "$ cmd" exec expression that failed to run or
	// exited non-zero (spec.md §4.4 step 5).
	KindExecFailure
)

// Diagnostic is a non-fatal evaluation finding: an unresolved name, a cyclic
// reference, or an exec failure. Evaluation never aborts because of one.
type Diagnostic struct {
	Expression string
	Message    string
	Kind       Kind
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Expression, d.Message)
}

// Scope resolves a variable name to its unevaluated template string. Looked
// up in the order the Evaluator's Scopes slice lists them: innermost first.
type Scope interface {
	Lookup(name string) (template string, ok bool)
}

// MapScope is a Scope backed by a plain map of already-unevaluated
// templates, used for variables/gitconfig blocks.
type MapScope map[string]string

func (m MapScope) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Runner executes a single shell command and returns its trimmed standard
// output (spec.md §4.4 step 4).
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ShellRunner invokes the configured shell via os/exec.
type ShellRunner struct {
	Shell shellenv.Shell
}

func (r ShellRunner) Run(ctx context.Context, command string) (string, error) {
	program, args := r.Shell.ExecArgs(command)

	cmd := exec.CommandContext(ctx, program, args...) // #nosec G204 -- operator-configured exec expression
	out, err := cmd.Output()

	return strings.TrimSpace(string(out)), err
}

// HomeDirFunc resolves a username (empty for the current user) to a home
// directory, for tilde expansion.
type HomeDirFunc func(user string) (string, bool)

// Evaluator evaluates `${name}` and `$ cmd` expressions against a fixed
// scope stack for the lifetime of one Tree's execution context.
type Evaluator struct {
	// Builtins are resolved before any scope: GARDEN_CONFIG_DIR,
	// GARDEN_ROOT, TREE_NAME, TREE_PATH (spec.md §6).
	Builtins map[string]string
	// Scopes are searched innermost first after Builtins and before the
	// process environment.
	Scopes []Scope
	// Env looks up the process environment. Nil means no process fallback.
	Env func(name string) (string, bool)
	// Run executes exec expressions. Required only if an expression
	// begins with "$ ".
	Run Runner
	// HomeDir resolves tilde expansion. Nil disables it.
	HomeDir HomeDirFunc
	// Strict reports unresolved names as diagnostics even though they
	// still expand to empty string.
	Strict bool
}

type evalState struct {
	resolved  map[string]string
	visiting  map[string]bool
	execCache map[string]string
	diags     []Diagnostic
}

// Evaluate resolves expr to its final string value, along with any
// diagnostics recorded while doing so. Each call is one top-level
// evaluation: its exec cache and cycle-visited set are not shared with any
// other call, matching spec.md §4.4's "cached... within one top-level
// evaluation".
func (e *Evaluator) Evaluate(ctx context.Context, expression string) (string, []Diagnostic) {
	state := &evalState{
		resolved:  map[string]string{},
		visiting:  map[string]bool{},
		execCache: map[string]string{},
	}

	result := e.evalExpr(ctx, expression, state)

	return result, state.diags
}

func (e *Evaluator) evalExpr(ctx context.Context, expression string, state *evalState) string {
	isExec := strings.HasPrefix(expression, "$ ")

	body := expression
	if isExec {
		body = expression[2:]
	}

	expanded := e.expandRefs(ctx, body, state)

	result := expanded
	if isExec {
		result = e.runExec(ctx, expanded, state)
	}

	return e.expandTilde(result)
}

// expandRefs substitutes every `${name}` occurrence in s with its resolved
// value. It does not itself interpret a leading "$ " — that is handled only
// once, at the top of evalExpr, matching the documented rule that exec
// applies to "the original expression" and not to every nested reference.
func (e *Evaluator) expandRefs(ctx context.Context, s string, state *evalState) string {
	var out strings.Builder

	for {
		start := strings.Index(s, "${")
		if start == -1 {
			out.WriteString(s)
			break
		}

		end := strings.Index(s[start:], "}")
		if end == -1 {
			out.WriteString(s)
			break
		}

		end += start

		out.WriteString(s[:start])

		name := s[start+2 : end]
		out.WriteString(e.resolveName(ctx, name, state))

		s = s[end+1:]
	}

	return out.String()
}

func (e *Evaluator) resolveName(ctx context.Context, name string, state *evalState) string {
	if v, ok := state.resolved[name]; ok {
		return v
	}

	if state.visiting[name] {
		state.diags = append(state.diags, Diagnostic{Expression: name, Message: "cyclic variable reference"})
		return ""
	}

	if v, ok := e.Builtins[name]; ok {
		state.resolved[name] = v
		return v
	}

	for _, scope := range e.Scopes {
		template, ok := scope.Lookup(name)
		if !ok {
			continue
		}

		state.visiting[name] = true
		value := e.evalExpr(ctx, template, state)
		delete(state.visiting, name)

		state.resolved[name] = value

		return value
	}

	if e.Env != nil {
		if v, ok := e.Env(name); ok {
			state.resolved[name] = v
			return v
		}
	}

	if e.Strict {
		state.diags = append(state.diags, Diagnostic{Expression: name, Message: "unresolved variable reference"})
	}

	state.resolved[name] = ""

	return ""
}

func (e *Evaluator) runExec(ctx context.Context, command string, state *evalState) string {
	if v, ok := state.execCache[command]; ok {
		return v
	}

	if e.Run == nil {
		state.diags = append(state.diags, Diagnostic{Expression: command, Message: "no shell configured for exec expression", Kind: KindExecFailure})
		return ""
	}

	out, err := e.Run.Run(ctx, command)
	if err != nil {
		state.diags = append(state.diags, Diagnostic{Expression: command, Message: fmt.Sprintf("exec failed: %v", err), Kind: KindExecFailure})
		state.execCache[command] = ""

		return ""
	}

	out = strings.TrimSpace(out)
	state.execCache[command] = out

	return out
}

// expandTilde expands a leading "~" or "~user" to a home directory
// (spec.md §4.4 step 3).
func (e *Evaluator) expandTilde(s string) string {
	if e.HomeDir == nil || !strings.HasPrefix(s, "~") {
		return s
	}

	rest := s[1:]

	user := rest
	tail := ""

	if idx := strings.IndexRune(rest, '/'); idx != -1 {
		user, tail = rest[:idx], rest[idx:]
	}

	home, ok := e.HomeDir(user)
	if !ok {
		return s
	}

	return home + tail
}

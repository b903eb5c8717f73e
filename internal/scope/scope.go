// Package scope implements the Scope Composer (spec.md §4.5): it builds the
// ordered variable scope stack and the applied environment for one
// (garden?, tree) execution context.
package scope

import (
	"github.com/gardencli/garden/internal/expr"
	"github.com/gardencli/garden/internal/model"
)

// Context is everything the Expression Evaluator needs to evaluate a
// variable, gitconfig entry, command, or environment operation scoped to one
// tree, optionally within one garden.
type Context struct {
	// Scopes is ordered innermost first: the garden's variables (when a
	// garden is given), then the tree's, then the global block, so the
	// first hit gives garden over tree over global (spec.md §4.5).
	Scopes []expr.Scope
	// Env is the ordered sequence of EnvOps to apply, in (global,
	// template-contributed, tree, garden) order. Template contributions
	// are already folded into Tree.Env by the Template/Extend Expander.
	Env []model.EnvOp
}

// Variables returns a MapScope built from vars, later entries overwriting
// earlier ones of the same name (only the last declaration within one block
// is reachable, matching a YAML mapping's own key uniqueness).
func Variables(vars []model.Variable) expr.MapScope {
	m := expr.MapScope{}
	for _, v := range vars {
		m[v.Name] = v.Template
	}

	return m
}

// Compose builds the Context for evaluating tree t, optionally within
// garden g (nil when the operation is not garden-scoped). global is the
// root Configuration's own Scoped block.
func Compose(global model.Scoped, t *model.Tree, g *model.Garden) Context {
	scopes := []expr.Scope{Variables(global.Variables)}

	env := append([]model.EnvOp(nil), global.Env...)

	if t != nil {
		scopes = append([]expr.Scope{Variables(t.Variables)}, scopes...)
		env = append(env, t.Env...)
	}

	if g != nil {
		scopes = append([]expr.Scope{Variables(g.Variables)}, scopes...)
		env = append(env, g.Env...)
	}

	return Context{Scopes: scopes, Env: env}
}

// ApplyEnv applies ops in order onto base (a snapshot of the inherited
// process environment), evaluating each op's Value through eval before
// combining it with the existing value under the op's Mode. It returns the
// resulting environment as a "NAME=value" slice, the shape os/exec.Cmd.Env
// expects: base's names first, in no defined order, then each name an op
// introduced, in the order it was first set.
func ApplyEnv(ops []model.EnvOp, base map[string]string, eval func(expression string) string) []string {
	env := make(map[string]string, len(base))
	for k, v := range base {
		env[k] = v
	}

	order := make([]string, 0, len(base))
	for k := range base {
		order = append(order, k)
	}

	for _, op := range ops {
		name := eval(op.Name)
		value := eval(op.Value)

		existing, had := env[name]

		switch op.Mode {
		case model.Store:
			env[name] = value
		case model.Append:
			env[name] = joinColon(existing, had, value, false)
		default: // model.Prepend
			env[name] = joinColon(existing, had, value, true)
		}

		if !had {
			order = append(order, name)
		}
	}

	out := make([]string, 0, len(order))
	for _, name := range order {
		out = append(out, name+"="+env[name])
	}

	return out
}

// joinColon combines an existing colon-separated value with addition,
// avoiding leading/trailing colons when existing is empty (spec.md §4.5).
func joinColon(existing string, had bool, addition string, prepend bool) string {
	if !had || existing == "" {
		return addition
	}

	if addition == "" {
		return existing
	}

	if prepend {
		return addition + ":" + existing
	}

	return existing + ":" + addition
}

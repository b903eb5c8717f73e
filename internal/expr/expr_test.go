package expr_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/expr"
)

func TestExpr(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expr Suite")
}

type fakeRunner map[string]string

func (f fakeRunner) Run(_ context.Context, command string) (string, error) {
	return f[command], nil
}

var _ = Describe("Evaluator", func() {
	It("resolves built-ins before scope and environment", func() {
		e := &expr.Evaluator{
			Builtins: map[string]string{"TREE_PATH": "/workspace/tree"},
			Scopes:   []expr.Scope{expr.MapScope{"TREE_PATH": "ignored-scope-value"}},
			Env:      func(string) (string, bool) { return "ignored-env-value", true },
		}

		v, diags := e.Evaluate(context.Background(), "${TREE_PATH}/bin")
		Expect(diags).To(BeEmpty())
		Expect(v).To(Equal("/workspace/tree/bin"))
	})

	It("falls back through scope stack innermost first", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{
				expr.MapScope{"LANG": "inner"},
				expr.MapScope{"LANG": "outer"},
			},
		}

		v, _ := e.Evaluate(context.Background(), "${LANG}")
		Expect(v).To(Equal("inner"))
	})

	It("falls back to the process environment when no scope defines the name", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{}},
			Env:    func(name string) (string, bool) { return "from-env", name == "HOME" },
		}

		v, _ := e.Evaluate(context.Background(), "${HOME}")
		Expect(v).To(Equal("from-env"))
	})

	It("expands a missing name to empty without error by default", func() {
		e := &expr.Evaluator{}

		v, diags := e.Evaluate(context.Background(), "${MISSING}")
		Expect(v).To(Equal(""))
		Expect(diags).To(BeEmpty())
	})

	It("records a diagnostic for a missing name in strict mode", func() {
		e := &expr.Evaluator{Strict: true}

		_, diags := e.Evaluate(context.Background(), "${MISSING}")
		Expect(diags).NotTo(BeEmpty())
	})

	It("resolves a variable's template recursively, including forward references", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{
				"A": "${B}/a",
				"B": "root",
			}},
		}

		v, diags := e.Evaluate(context.Background(), "${A}")
		Expect(diags).To(BeEmpty())
		Expect(v).To(Equal("root/a"))
	})

	It("detects a cyclic variable reference and expands it to empty", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{
				"A": "${B}",
				"B": "${A}",
			}},
		}

		v, diags := e.Evaluate(context.Background(), "${A}")
		Expect(v).To(Equal(""))
		Expect(diags).NotTo(BeEmpty())
	})

	It("reuses a memoized value for a diamond reference without reporting a cycle", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{
				"ROOT": "root",
				"A":    "${ROOT}/a",
				"B":    "${ROOT}/b",
			}},
		}

		v, diags := e.Evaluate(context.Background(), "${A}-${B}")
		Expect(diags).To(BeEmpty())
		Expect(v).To(Equal("root/a-root/b"))
	})

	It("runs an exec expression and substitutes the trimmed stdout", func() {
		e := &expr.Evaluator{Run: fakeRunner{"echo hi": "hi\n"}}

		v, diags := e.Evaluate(context.Background(), "$ echo hi")
		Expect(diags).To(BeEmpty())
		Expect(v).To(Equal("hi"))
	})

	It("expands variable references inside an exec expression before running it", func() {
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{"NAME": "world"}},
			Run:    fakeRunner{"echo world": "hello world"},
		}

		v, _ := e.Evaluate(context.Background(), "$ echo ${NAME}")
		Expect(v).To(Equal("hello world"))
	})

	It("caches an exec expression's result within one top-level evaluation", func() {
		calls := 0
		e := &expr.Evaluator{
			Scopes: []expr.Scope{expr.MapScope{
				"X": "$ echo hi",
				"Y": "$ echo hi",
			}},
			Run: countingRunner{calls: &calls, result: "once"},
		}

		v, _ := e.Evaluate(context.Background(), "${X}-${Y}")
		Expect(v).To(Equal("once-once"))
		Expect(calls).To(Equal(1))
	})

	It("expands a leading tilde to the resolved home directory", func() {
		e := &expr.Evaluator{
			HomeDir: func(user string) (string, bool) {
				if user == "" {
					return "/home/me", true
				}

				return "", false
			},
		}

		v, _ := e.Evaluate(context.Background(), "~/workspace")
		Expect(v).To(Equal("/home/me/workspace"))
	})
})

type countingRunner struct {
	calls  *int
	result string
}

func (c countingRunner) Run(_ context.Context, _ string) (string, error) {
	*c.calls++
	return c.result, nil
}

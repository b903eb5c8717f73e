// Package executor implements the Executor (spec.md §4.7): for each
// resolved tree it composes scope, expands the tree's attributes, and
// either materializes the tree on disk or runs a named command sequence,
// optionally across a bounded worker pool (spec.md §5).
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/term"

	"github.com/gardencli/garden/internal/expr"
	"github.com/gardencli/garden/internal/gitcollab"
	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/scope"
	"github.com/gardencli/garden/internal/shellenv"
)

// Policy controls failure handling and concurrency across a run.
type Policy struct {
	// KeepGoing makes a single tree's own command list continue past a
	// failing line instead of stopping at the first one.
	KeepGoing bool
	// ExitOnError aborts scheduling of any tree not yet started once the
	// first tree fails.
	ExitOnError bool
	// Parallel bounds how many trees execute concurrently. 0 or 1 means
	// strictly sequential.
	Parallel int
}

// TreeResult is one tree's outcome from a Run or Init call.
type TreeResult struct {
	Tree *model.Tree
	Err  error
}

var ErrAborted = fmt.Errorf("run aborted after an earlier failure under exit-on-error")

// Executor runs commands or materializes trees against a resolved
// Configuration.
type Executor struct {
	Cfg *model.Configuration
	Git gitcollab.Collaborator

	// BaseEnv is the snapshot of the inherited process environment taken
	// once at startup (spec.md §9, "Global mutable state").
	BaseEnv map[string]string
	EnvLookup func(name string) (string, bool)
	HomeDir   expr.HomeDirFunc

	Stdout io.Writer
	Stderr io.Writer

	Policy Policy

	// Garden is the garden the current query was resolved through, or nil
	// when the query was not garden-scoped. It contributes the outermost
	// layer of the Scope Composer's stack (spec.md §4.5: "garden overrides
	// tree overrides global") for every tree in this Run/Init/Fetch call.
	Garden *model.Garden

	// Logger receives one structured entry per dispatch call and one per
	// tree outcome, tagged with a run-scoped correlation id. Defaults to
	// logrus's standard logger when nil.
	Logger *logrus.Logger

	// Strict reports unresolved variable references as an EvaluationError
	// in addition to expanding them to empty (spec.md §4.4 step 1).
	Strict bool
}

// EvaluationError reports expression diagnostics collected while evaluating
// one tree: under strict mode, every unresolved, cyclic or exec-failure
// diagnostic; in any mode, the exec failures of a command line, which keep
// that line from running. The underlying expansions still happened and
// produced empty strings where they failed.
type EvaluationError struct {
	Diagnostics []expr.Diagnostic
}

func (e *EvaluationError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = fmt.Sprintf("%s: %s", d.Expression, d.Message)
	}

	return fmt.Sprintf("%d evaluation diagnostic(s): %s", len(parts), strings.Join(parts, "; "))
}

func strictErr(strict bool, diags []expr.Diagnostic) error {
	if !strict || len(diags) == 0 {
		return nil
	}

	return &EvaluationError{Diagnostics: diags}
}

// execFailureErr reports a "$ cmd" exec expression that failed while
// evaluating a command line. Unlike strictErr, this is unconditional: spec.md
// §4.4 step 5 makes exec failure inside a command line propagate to the
// Executor regardless of Strict.
func execFailureErr(diags []expr.Diagnostic) error {
	var failures []expr.Diagnostic

	for _, d := range diags {
		if d.Kind == expr.KindExecFailure {
			failures = append(failures, d)
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return &EvaluationError{Diagnostics: failures}
}

func (e *Executor) logger() *logrus.Logger {
	if e.Logger != nil {
		return e.Logger
	}

	return logrus.StandardLogger()
}

// colorEnabled reports whether per-tree output prefixes should be colored:
// only when Stdout is an actual terminal, never when it has been
// redirected to a file or pipe.
func (e *Executor) colorEnabled() bool {
	f, ok := e.Stdout.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Run executes the named command across every tree in trees, honoring
// Policy, and returns one TreeResult per tree in trees' order.
func (e *Executor) Run(ctx context.Context, trees []*model.Tree, commandName string) []TreeResult {
	return e.dispatch(ctx, trees, func(ctx context.Context, t *model.Tree) error {
		return e.runCommand(ctx, t, commandName)
	})
}

// Init materializes every tree in trees onto disk: clones missing trees via
// the configured Collaborator, applies the tree's gitconfig entries, or
// creates the symlink for a symlink tree (spec.md §4.7 step 3, "honors them
// for init").
func (e *Executor) Init(ctx context.Context, trees []*model.Tree) []TreeResult {
	return e.dispatch(ctx, trees, e.initTree)
}

// Fetch updates every already-cloned, non-symlink tree's remotes via the
// configured Collaborator (spec.md §1, "fetching" is a first-class
// operation alongside cloning and running commands).
func (e *Executor) Fetch(ctx context.Context, trees []*model.Tree) []TreeResult {
	return e.dispatch(ctx, trees, e.fetchTree)
}

func (e *Executor) fetchTree(ctx context.Context, t *model.Tree) error {
	if t.Symlink != "" {
		return nil
	}

	_, path, diags, err := e.buildEvaluator(ctx, t, e.Garden)
	if err != nil {
		return err
	}

	if err := e.Git.Fetch(ctx, path); err != nil {
		return err
	}

	return strictErr(e.Strict, diags)
}

// TreePath returns t's expanded filesystem path, for callers (such as the
// `garden ls` command) that need to display it without running a command
// or materializing the tree.
func (e *Executor) TreePath(ctx context.Context, t *model.Tree) (string, error) {
	_, path, diags, err := e.buildEvaluator(ctx, t, e.Garden)
	if err != nil {
		return path, err
	}

	return path, strictErr(e.Strict, diags)
}

func (e *Executor) dispatch(ctx context.Context, trees []*model.Tree, fn func(context.Context, *model.Tree) error) []TreeResult {
	limit := e.Policy.Parallel
	if limit < 1 {
		limit = 1
	}

	runID := uuid.New().String()
	log := e.logger().WithFields(logrus.Fields{"run_id": runID, "trees": len(trees), "parallel": limit})
	log.Debug("dispatching trees")

	sem := semaphore.NewWeighted(int64(limit))
	results := make([]TreeResult, len(trees))

	var wg sync.WaitGroup

	var aborted atomic.Bool

	for i, t := range trees {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = TreeResult{Tree: t, Err: err}
			continue
		}

		wg.Add(1)

		go func(i int, t *model.Tree) {
			defer wg.Done()
			defer sem.Release(1)

			treeLog := log.WithField("tree", t.CanonicalName)

			if aborted.Load() {
				results[i] = TreeResult{Tree: t, Err: ErrAborted}
				treeLog.Debug("skipped after an earlier failure under exit-on-error")

				return
			}

			err := fn(ctx, t)
			results[i] = TreeResult{Tree: t, Err: err}

			if err != nil {
				treeLog.WithError(err).Debug("tree failed")

				if e.Policy.ExitOnError {
					aborted.Store(true)
				}
			} else {
				treeLog.Debug("tree succeeded")
			}
		}(i, t)
	}

	wg.Wait()

	return results
}

// buildEvaluator constructs the per-tree Expression Evaluator, resolving
// GARDEN_CONFIG_DIR/GARDEN_ROOT against t's graft namespace and TREE_PATH
// against t's own expanded path (spec.md §6, "Built-in variables").
func (e *Executor) buildEvaluator(ctx context.Context, t *model.Tree, g *model.Garden) (*expr.Evaluator, string, []expr.Diagnostic, error) {
	root, configDir := e.graftContext(t.GraftPath)

	composed := scope.Compose(e.Cfg.Scoped, t, g)

	preBuiltins := map[string]string{
		"GARDEN_CONFIG_DIR": configDir,
		"GARDEN_ROOT":       root,
		"TREE_NAME":         t.Name,
	}

	pathExpr := t.Path
	if !t.HasPath {
		pathExpr = "${GARDEN_ROOT}/" + t.Name
	}

	pathEval := &expr.Evaluator{
		Builtins: preBuiltins,
		Scopes:   composed.Scopes,
		Env:      e.EnvLookup,
		Run:      expr.ShellRunner{Shell: shellenv.Shell(e.Cfg.Shell)},
		HomeDir:  e.HomeDir,
		Strict:   e.Strict,
	}

	path, diags := pathEval.Evaluate(ctx, pathExpr)

	builtins := map[string]string{
		"GARDEN_CONFIG_DIR": configDir,
		"GARDEN_ROOT":       root,
		"TREE_NAME":         t.Name,
		"TREE_PATH":         path,
	}

	evaluator := &expr.Evaluator{
		Builtins: builtins,
		Scopes:   composed.Scopes,
		Env:      e.EnvLookup,
		Run:      expr.ShellRunner{Shell: shellenv.Shell(e.Cfg.Shell)},
		HomeDir:  e.HomeDir,
		Strict:   e.Strict,
	}

	return evaluator, path, diags, nil
}

// ComposedEnv returns t's fully composed process environment, onto
// BaseEnv, for callers (such as `garden env`) that need the materialized
// environment without running a command (spec.md §4.5).
func (e *Executor) ComposedEnv(ctx context.Context, t *model.Tree) ([]string, error) {
	evaluator, _, diags, err := e.buildEvaluator(ctx, t, e.Garden)
	if err != nil {
		return nil, err
	}

	composed := scope.Compose(e.Cfg.Scoped, t, e.Garden)

	env := scope.ApplyEnv(composed.Env, e.BaseEnv, func(s string) string {
		v, d := evaluator.Evaluate(ctx, s)
		diags = append(diags, d...)

		return v
	})

	return env, strictErr(e.Strict, diags)
}

func (e *Executor) graftContext(graftPath string) (root, configDir string) {
	if graftPath == "" {
		return e.Cfg.Root, e.Cfg.ConfigDir
	}

	if g, ok := e.Cfg.Grafts[graftPath]; ok {
		return g.Root, g.ConfigDir
	}

	return e.Cfg.Root, e.Cfg.ConfigDir
}

// runCommand expands and executes commandName's lines against t, in order,
// stopping at the first failure unless Policy.KeepGoing is set.
func (e *Executor) runCommand(ctx context.Context, t *model.Tree, commandName string) error {
	if t.Symlink != "" {
		return nil
	}

	evaluator, path, diags, err := e.buildEvaluator(ctx, t, e.Garden)
	if err != nil {
		return err
	}

	var cmd *model.Command

	for i := range t.Commands {
		if t.Commands[i].Name == commandName {
			cmd = &t.Commands[i]
			break
		}
	}

	if cmd == nil {
		return fmt.Errorf("tree %q has no command %q", t.CanonicalName, commandName)
	}

	composed := scope.Compose(e.Cfg.Scoped, t, e.Garden)
	env := scope.ApplyEnv(composed.Env, e.BaseEnv, func(s string) string {
		v, d := evaluator.Evaluate(ctx, s)
		diags = append(diags, d...)

		return v
	})

	var firstErr error

	for _, line := range cmd.Lines {
		expanded, d := evaluator.Evaluate(ctx, line)
		diags = append(diags, d...)

		lineErr := execFailureErr(d)
		if lineErr == nil {
			lineErr = e.runLine(ctx, t, path, env, expanded)
		}

		if lineErr != nil {
			if firstErr == nil {
				firstErr = lineErr
			}

			if !e.Policy.KeepGoing {
				break
			}
		}
	}

	if firstErr != nil {
		return firstErr
	}

	return strictErr(e.Strict, diags)
}

func (e *Executor) runLine(ctx context.Context, t *model.Tree, dir string, env []string, line string) error {
	program, args := shellenv.Shell(e.Cfg.Shell).ExecArgs(line)

	stdout := e.prefixWriter(t, e.Stdout)
	stderr := e.prefixWriter(t, e.Stderr)

	cmd := exec.CommandContext(ctx, program, args...) // #nosec G204 -- operator-configured command line
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	// Emit a final line the command left without a trailing newline.
	for _, w := range []io.Writer{stdout, stderr} {
		if p, ok := w.(*linePrefixWriter); ok && len(p.buf) > 0 {
			_, _ = p.Write([]byte("\n"))
		}
	}

	return err
}

func (e *Executor) prefixWriter(t *model.Tree, w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return &linePrefixWriter{name: t.CanonicalName, dest: w, color: e.colorEnabled()}
}

// linePrefixWriter prefixes every line written to it with the owning tree's
// name, serialized so concurrent workers never interleave mid-line
// (spec.md §5).
type linePrefixWriter struct {
	name  string
	dest  io.Writer
	color bool
	mu    sync.Mutex
	buf   []byte
}

func (p *linePrefixWriter) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := fmt.Sprintf("[%s]", p.name)
	if p.color {
		label = color.CyanString("[%s]", p.name)
	}

	p.buf = append(p.buf, b...)

	for {
		idx := indexByte(p.buf, '\n')
		if idx < 0 {
			break
		}

		if _, err := fmt.Fprintf(p.dest, "%s %s\n", label, p.buf[:idx]); err != nil {
			return 0, err
		}

		p.buf = p.buf[idx+1:]
	}

	return len(b), nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}

	return -1
}

// initTree clones a missing tree, or symlinks a symlink tree, via the
// configured Collaborator, then applies the tree's scoped gitconfig entries.
func (e *Executor) initTree(ctx context.Context, t *model.Tree) error {
	evaluator, path, diags, err := e.buildEvaluator(ctx, t, e.Garden)
	if err != nil {
		return err
	}

	if t.Symlink != "" {
		target, d := evaluator.Evaluate(ctx, t.Symlink)
		diags = append(diags, d...)

		if err := e.Git.Symlink(ctx, path, target); err != nil {
			return err
		}

		return strictErr(e.Strict, diags)
	}

	remotes := make([]gitcollab.Remote, 0, len(t.Remotes)+1)

	if t.HasURL {
		origin, d := evaluator.Evaluate(ctx, t.URL)
		diags = append(diags, d...)
		remotes = append(remotes, gitcollab.Remote{Name: "origin", URL: origin})
	}

	for _, r := range t.Remotes {
		url, d := evaluator.Evaluate(ctx, r.URL)
		diags = append(diags, d...)
		remotes = append(remotes, gitcollab.Remote{Name: r.Name, URL: url})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory of %s: %w", path, err)
	}

	if err := e.Git.Clone(ctx, gitcollab.CloneOptions{
		Path:         path,
		Remotes:      remotes,
		Depth:        t.Depth,
		SingleBranch: t.SingleBranch,
	}); err != nil {
		return err
	}

	gitConfigDiags, err := e.applyGitConfig(ctx, t, evaluator, path)
	if err != nil {
		return err
	}

	return strictErr(e.Strict, append(diags, gitConfigDiags...))
}

// applyGitConfig writes every scoped gitconfig entry declared on t via the
// configured Collaborator, evaluating both the key and the value as
// variable expressions.
func (e *Executor) applyGitConfig(ctx context.Context, t *model.Tree, evaluator *expr.Evaluator, path string) ([]expr.Diagnostic, error) {
	var diags []expr.Diagnostic

	for _, kv := range t.GitConfig {
		key, d := evaluator.Evaluate(ctx, kv.Name)
		diags = append(diags, d...)

		value, d := evaluator.Evaluate(ctx, kv.Template)
		diags = append(diags, d...)

		if err := e.Git.ConfigSet(ctx, path, key, value); err != nil {
			return diags, fmt.Errorf("tree %q: git config %s: %w", t.CanonicalName, key, err)
		}
	}

	return diags, nil
}

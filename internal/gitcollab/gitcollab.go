// Package gitcollab is the external collaborator boundary for the Git
// subprocess invocations the core deliberately treats as out of scope: the
// core decides *which* tree gets cloned, fetched, or symlinked and with what
// already-expanded arguments; this package is the thin thing that actually
// shells out.
package gitcollab

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Remote names a single Git remote to configure on a freshly initialized or
// already-cloned tree.
type Remote struct {
	Name string
	URL  string
}

// CloneOptions carries the already-expanded attributes of one Tree relevant
// to bringing it onto disk.
type CloneOptions struct {
	Path         string
	Remotes      []Remote
	Depth        int // 0 = full history
	SingleBranch bool
}

//go:generate mockgen -destination=./mocks/mock_collaborator.go -package=mocks github.com/gardencli/garden/internal/gitcollab Collaborator

// Collaborator is the interface the Executor drives; the core never invokes
// `git` directly.
type Collaborator interface {
	// Clone brings opts.Path into existence from opts.Remotes[0], or does
	// nothing if the path already contains a Git working tree.
	Clone(ctx context.Context, opts CloneOptions) error
	// Fetch updates every configured remote of an existing working tree.
	Fetch(ctx context.Context, path string) error
	// ConfigSet writes one `git config` key/value pair scoped to path's
	// repository.
	ConfigSet(ctx context.Context, path, key, value string) error
	// Symlink creates (or replaces) a symlink at linkPath pointing at
	// target.
	Symlink(ctx context.Context, linkPath, target string) error
}

// Exec is a Collaborator backed by the `git` binary on PATH.
type Exec struct {
	// GitBinary overrides the binary name; empty means "git".
	GitBinary string
}

func (e Exec) binary() string {
	if e.GitBinary == "" {
		return "git"
	}

	return e.GitBinary
}

func (e Exec) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, e.binary(), args...) // #nosec G204 -- arguments are core-constructed, not user strings
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %v: %w: %s", args, err, out)
	}

	return nil
}

func (e Exec) Clone(ctx context.Context, opts CloneOptions) error {
	if info, err := os.Stat(opts.Path); err == nil && info.IsDir() {
		if _, err := os.Stat(opts.Path + "/.git"); err == nil {
			return nil
		}
	}

	if len(opts.Remotes) == 0 {
		return fmt.Errorf("clone %s: no remote configured", opts.Path)
	}

	args := []string{"clone", opts.Remotes[0].URL, opts.Path}
	if opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprint(opts.Depth))
	}

	if opts.SingleBranch {
		args = append(args, "--single-branch")
	}

	if err := e.run(ctx, "", args...); err != nil {
		return err
	}

	for _, r := range opts.Remotes[1:] {
		if err := e.run(ctx, opts.Path, "remote", "add", r.Name, r.URL); err != nil {
			return err
		}
	}

	return nil
}

func (e Exec) Fetch(ctx context.Context, path string) error {
	return e.run(ctx, path, "fetch", "--all")
}

func (e Exec) ConfigSet(ctx context.Context, path, key, value string) error {
	return e.run(ctx, path, "config", key, value)
}

func (e Exec) Symlink(_ context.Context, linkPath, target string) error {
	if existing, err := os.Readlink(linkPath); err == nil {
		if existing == target {
			return nil
		}

		if err := os.Remove(linkPath); err != nil {
			return fmt.Errorf("replacing symlink %s: %w", linkPath, err)
		}
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("creating symlink %s -> %s: %w", linkPath, target, err)
	}

	return nil
}

package base

import (
	"os"
	"os/user"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/gardencli/garden/internal/executor"
	"github.com/gardencli/garden/internal/gitcollab"
	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
)

// NewExecutor wires an Executor against cfg with the process's own
// environment snapshot, tilde-expansion and a real `git`-backed
// Collaborator, the shared construction every query/run/env/init/fetch
// command needs (spec.md §9, "Global mutable state": the snapshot is taken
// once here, never mutated in place).
func NewExecutor(cfg *model.Configuration, streams util.IOStreams, policy executor.Policy, garden *model.Garden, strict bool) *executor.Executor {
	return &executor.Executor{
		Cfg:       cfg,
		Git:       gitcollab.Exec{},
		BaseEnv:   snapshotEnv(),
		EnvLookup: os.LookupEnv,
		HomeDir:   lookupHomeDir,
		Stdout:    streams.Out,
		Stderr:    streams.ErrOut,
		Policy:    policy,
		Garden:    garden,
		Strict:    strict,
	}
}

func snapshotEnv() map[string]string {
	env := map[string]string{}

	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}

	return env
}

// lookupHomeDir resolves "" to the current user's home directory and any
// other name to that named user's home directory, for `~`/`~user`
// expansion (spec.md §4.4 step 3).
func lookupHomeDir(name string) (string, bool) {
	if name == "" {
		dir, err := homedir.Dir()
		return dir, err == nil
	}

	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}

	return u.HomeDir, true
}

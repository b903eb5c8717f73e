package base

import (
	"github.com/gardencli/garden/internal/model"
	"github.com/gardencli/garden/internal/util"
	"github.com/gardencli/garden/pkg/config"
)

// LoadConfiguration runs the Loader/Graft/Expand pipeline against the
// configuration file named by the factory (or the documented search path
// when none was given) and returns the resolved Configuration and the path
// it was loaded from, for every query/run/env/config command to share.
func LoadConfiguration(f util.Factory) (*model.Configuration, string, error) {
	path := f.ConfigFile()
	if path == "" {
		found, err := config.Find()
		if err != nil {
			return nil, "", err
		}

		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

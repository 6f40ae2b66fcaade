package compose

import (
	"fmt"
	"os"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// Load parses a base compose document from path into a typed types.Project,
// without resolving ${VAR} interpolation — this package's transform rules
// intentionally write and read ${COMPOSE_PROJECT_NAME}/${PROJECT_ROOT}
// references literally, for Compose itself to interpolate at `up` time.
func Load(path string) (*types.Project, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := loader.ParseYAML(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	details := types.ConfigDetails{
		WorkingDir: "",
		ConfigFiles: []types.ConfigFile{
			{Filename: path, Content: content, Config: parsed},
		},
	}

	project, err := loader.Load(details, func(o *loader.Options) {
		o.SkipInterpolation = true
		o.SkipValidation = true
		o.SkipConsistencyCheck = true
		o.SkipNormalization = true
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return project, nil
}

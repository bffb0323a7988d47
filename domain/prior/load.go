package prior

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"transientfit/internal/errors"
)

// Load reads a prior dict from a YAML file mapping parameter names to
// distribution descriptors.
func Load(path string) (Dict, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading prior file %s", path)
	}
	var d Dict
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid,
			errors.Wrapf(err, "parsing prior file %s", path))
	}
	if err := d.Validate(nil); err != nil {
		return nil, errors.Wrapf(err, "prior file %s", path)
	}
	return d, nil
}

// LoadForModel loads the prior dict for a model from dir, keyed by the model
// name: {dir}/{model}.yaml.
func LoadForModel(dir, model string) (Dict, error) {
	return Load(filepath.Join(dir, fmt.Sprintf("%s.yaml", model)))
}

// Save writes the dict to a YAML file, creating parent directories.
func Save(path string, d Dict) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating prior directory for %s", path)
	}
	raw, err := yaml.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encoding prior dict")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing prior file %s", path)
	}
	return nil
}

package sampler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"transientfit/internal/errors"
	"transientfit/ports"
)

func resultPath(outdir, label string) string {
	return filepath.Join(outdir, fmt.Sprintf("%s_result.json", label))
}

func saveResult(path string, result *ports.RunResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", path)
	}
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run result")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing run result %s", path)
	}
	return nil
}

func loadResult(path string) (*ports.RunResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result ports.RunResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrapf(err, "decoding run result %s", path)
	}
	return &result, nil
}

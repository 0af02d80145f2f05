package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToolEntry is one desired tool state in a manifest. Unset fields fall
// back to the tool's built-in defaults when the entry is applied.
type ToolEntry struct {
	Name             string `yaml:"name"`
	State            string `yaml:"state"`
	DownloadURL      string `yaml:"download_url"`
	DownloadDir      string `yaml:"download_dir"`
	DownloadFileName string `yaml:"download_file_name"`
	BinDir           string `yaml:"bin_dir"`
	InstallDir       string `yaml:"install_dir"`
}

// Manifest is the top-level structure of a provisioning manifest file:
// the list of tools to bring to their desired states, in order.
type Manifest struct {
	Tools []ToolEntry `yaml:"tools"`
}

// LoadManifest reads and parses the YAML manifest at the given path.
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for i, entry := range m.Tools {
		if entry.Name == "" {
			return Manifest{}, fmt.Errorf("manifest %s: tool entry %d has no name", path, i)
		}
	}
	return m, nil
}

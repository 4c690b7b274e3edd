package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profilesFile is the on-disk shape of a profiles YAML file.
type profilesFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// LoadFile reads additional profile definitions from a YAML file and
// registers them in the store. A definition whose id matches an existing
// profile replaces it, so deployments can override the built-in archetypes.
func (s *Store) LoadFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read profiles file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal profiles YAML: %w", err)
	}

	for _, p := range file.Profiles {
		if err := s.register(p); err != nil {
			return fmt.Errorf("failed to register profile from %s: %w", filePath, err)
		}
	}
	return nil
}

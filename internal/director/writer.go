package director

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteCutList writes a cut list to a YAML file
func WriteCutList(list *CutList, path string) error {
	data, err := yaml.Marshal(list)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadCutList reads a cut list from a YAML file
func ReadCutList(path string) (*CutList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list CutList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

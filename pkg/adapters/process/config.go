package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tool names the build looks up in the registry.
const (
	ToolRender  = "render"
	ToolPublish = "publish"
)

// ToolConfig describes one allow-listed external command.
// Args may contain {input}, {output}, {source} and {target} placeholders.
type ToolConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of tools.yaml
type ConfigFile struct {
	Tools []ToolConfig `yaml:"tools" json:"tools"`
}

// DefaultTools rasterizes with graphviz and syncs with rsync.
func DefaultTools() map[string]ToolConfig {
	return map[string]ToolConfig{
		ToolRender: {
			Name:        ToolRender,
			Command:     "dot",
			Args:        []string{"-Tpng", "{input}", "-o{output}"},
			Description: "rasterize a DOT file to PNG",
		},
		ToolPublish: {
			Name:        ToolPublish,
			Command:     "rsync",
			Args:        []string{"-avz", "{source}", "{target}"},
			Description: "sync rendered images to the publication host",
		},
	}
}

// LoadTools reads a configuration file (YAML or JSON) and returns a map of tool names to configs.
// A missing file yields an empty map.
func LoadTools(path string) (map[string]ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ToolConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	tools := make(map[string]ToolConfig)
	for _, tool := range cfg.Tools {
		if tool.Name == "" {
			continue
		}
		tools[tool.Name] = tool
	}
	return tools, nil
}

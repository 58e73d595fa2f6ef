package tools

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
)

// ToolOverride renames a tool or replaces its description as seen by MCP
// clients. The handler and schema are untouched.
type ToolOverride struct {
	DisplayName string `yaml:"displayName"`
	Description string `yaml:"description"`
}

type yamlOverrideFile struct {
	Tools map[string]ToolOverride `yaml:"tools"`
}

// LoadOverridesFromYAML reads tool overrides from a YAML document keyed by
// tool name under a top-level "tools" section.
func LoadOverridesFromYAML(path string) (map[string]ToolOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tool override config %s: %w", path, err)
	}

	var file yamlOverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing tool override config %s: %w", path, err)
	}
	return file.Tools, nil
}

// cliOverridePattern matches "ToolName.field=value" entries, where field is
// name, displayName, or description.
var cliOverridePattern = regexp.MustCompile(`^(\w+)\.(name|displayName|description)=(.*)$`)

// ParseCLIOverrides parses --tool-override flag values. Later entries for the
// same tool and field win.
func ParseCLIOverrides(entries []string) (map[string]ToolOverride, error) {
	overrides := make(map[string]ToolOverride)
	for _, entry := range entries {
		m := cliOverridePattern.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			return nil, fmt.Errorf("malformed tool override %q, want Tool.displayName=... or Tool.description=...", entry)
		}
		tool, field, value := m[1], m[2], m[3]

		override := overrides[tool]
		switch field {
		case "name", "displayName":
			override.DisplayName = value
		case "description":
			override.Description = value
		}
		overrides[tool] = override
	}
	return overrides, nil
}

// ApplyOverrides returns definitions with file and CLI overrides applied,
// CLI winning where both set the same field. Overrides naming unknown tools
// are logged, not fatal.
func ApplyOverrides(defs []Definition, fromFile, fromCLI map[string]ToolOverride, logger *slog.Logger) []Definition {
	merged := make(map[string]ToolOverride, len(fromFile)+len(fromCLI))
	for tool, override := range fromFile {
		merged[tool] = override
	}
	for tool, override := range fromCLI {
		base := merged[tool]
		if override.DisplayName != "" {
			base.DisplayName = override.DisplayName
		}
		if override.Description != "" {
			base.Description = override.Description
		}
		merged[tool] = base
	}

	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		known[def.Name] = true
	}
	for tool := range merged {
		if !known[tool] {
			logger.Warn("tool override names unknown tool", logging.Tool(tool))
		}
	}

	out := make([]Definition, len(defs))
	for i, def := range defs {
		if override, ok := merged[def.Name]; ok {
			if override.DisplayName != "" {
				def.Name = override.DisplayName
			}
			if override.Description != "" {
				def.Description = override.Description
			}
		}
		out[i] = def
	}
	return out
}

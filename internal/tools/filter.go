package tools

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
)

// FilterConfig narrows the tool catalog before registration. Disabling can
// target tool names, named categories, or regular expressions, and write
// operations can be switched off wholesale.
type FilterConfig struct {
	DisabledTools      []string
	Categories         map[string][]string
	DisabledCategories []string
	DisabledRegex      []string
	AllowWrite         bool
}

type filterEnv struct {
	DisabledTools      []string `env:"OPENSEARCH_DISABLED_TOOLS" envSeparator:","`
	ToolCategories     string   `env:"OPENSEARCH_TOOL_CATEGORIES"`
	DisabledCategories []string `env:"OPENSEARCH_DISABLED_CATEGORIES" envSeparator:","`
	DisabledRegex      []string `env:"OPENSEARCH_DISABLED_TOOLS_REGEX" envSeparator:","`
	AllowWrite         bool     `env:"OPENSEARCH_SETTINGS_ALLOW_WRITE" envDefault:"true"`
}

// FilterFromEnv builds a FilterConfig from environment variables. Custom
// categories use the form "name=ToolA,ToolB;other=ToolC".
func FilterFromEnv() (FilterConfig, error) {
	var cfg filterEnv
	if err := env.Parse(&cfg); err != nil {
		return FilterConfig{}, fmt.Errorf("parsing tool filter environment: %w", err)
	}

	categories, err := parseCategorySpec(cfg.ToolCategories)
	if err != nil {
		return FilterConfig{}, err
	}

	return FilterConfig{
		DisabledTools:      trimAll(cfg.DisabledTools),
		Categories:         categories,
		DisabledCategories: trimAll(cfg.DisabledCategories),
		DisabledRegex:      trimAll(cfg.DisabledRegex),
		AllowWrite:         cfg.AllowWrite,
	}, nil
}

type yamlFilterFile struct {
	ToolCategory map[string][]string `yaml:"tool_category"`
	ToolFilters  struct {
		DisabledTools      []string `yaml:"disabled_tools"`
		DisabledCategories []string `yaml:"disabled_categories"`
		DisabledToolsRegex []string `yaml:"disabled_tools_regex"`
		Settings           struct {
			AllowWrite *bool `yaml:"allow_write"`
		} `yaml:"settings"`
	} `yaml:"tool_filters"`
}

// LoadFilterFromYAML reads a filter configuration document. Fields absent
// from the file keep their zero value except allow_write, which defaults to
// true.
func LoadFilterFromYAML(path string) (FilterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FilterConfig{}, fmt.Errorf("reading tool filter config %s: %w", path, err)
	}

	var file yamlFilterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return FilterConfig{}, fmt.Errorf("parsing tool filter config %s: %w", path, err)
	}

	allowWrite := true
	if file.ToolFilters.Settings.AllowWrite != nil {
		allowWrite = *file.ToolFilters.Settings.AllowWrite
	}

	return FilterConfig{
		DisabledTools:      trimAll(file.ToolFilters.DisabledTools),
		Categories:         file.ToolCategory,
		DisabledCategories: trimAll(file.ToolFilters.DisabledCategories),
		DisabledRegex:      trimAll(file.ToolFilters.DisabledToolsRegex),
		AllowWrite:         allowWrite,
	}, nil
}

// ApplyFilter returns the definitions that survive the filter. Tool name
// matching is case-insensitive. Disabled names and categories that match no
// known tool are logged, not fatal.
func ApplyFilter(defs []Definition, cfg FilterConfig, logger *slog.Logger) []Definition {
	known := make(map[string]string, len(defs))
	for _, def := range defs {
		known[strings.ToLower(def.Name)] = def.Name
	}

	disabled := make(map[string]bool)
	markDisabled := func(name, source string) {
		canonical, ok := known[strings.ToLower(name)]
		if !ok {
			logger.Warn("tool filter names unknown tool", logging.Tool(name), "source", source)
			return
		}
		disabled[canonical] = true
	}

	for _, name := range cfg.DisabledTools {
		markDisabled(name, "disabled_tools")
	}
	for _, category := range cfg.DisabledCategories {
		members, ok := cfg.Categories[category]
		if !ok {
			logger.Warn("tool filter names unknown category", "category", category)
			continue
		}
		for _, name := range members {
			markDisabled(name, "disabled_categories")
		}
	}
	for _, pattern := range cfg.DisabledRegex {
		// Patterns match from the start of the tool name, case-insensitively.
		re, err := regexp.Compile("(?i)^(?:" + pattern + ")")
		if err != nil {
			logger.Warn("skipping invalid tool filter regex", "pattern", pattern, logging.Err(err))
			continue
		}
		for _, def := range defs {
			if re.MatchString(def.Name) {
				disabled[def.Name] = true
			}
		}
	}

	kept := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if disabled[def.Name] {
			logger.Info("tool disabled by filter", logging.Tool(def.Name))
			continue
		}
		if !cfg.AllowWrite && !def.ReadOnly() {
			logger.Info("tool disabled, write operations are off", logging.Tool(def.Name))
			continue
		}
		kept = append(kept, def)
	}
	return kept
}

// parseCategorySpec parses "name=ToolA,ToolB;other=ToolC".
func parseCategorySpec(spec string) (map[string][]string, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	categories := make(map[string][]string)
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, members, found := strings.Cut(entry, "=")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed tool category entry %q, want name=ToolA,ToolB", entry)
		}
		categories[strings.TrimSpace(name)] = trimAll(strings.Split(members, ","))
	}
	return categories, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

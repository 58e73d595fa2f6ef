package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterDefinitions() []Definition {
	readOnly := func(name string) Definition {
		d := echoDefinition(name)
		d.HTTPMethods = []string{"GET"}
		return d
	}
	readWrite := func(name string) Definition {
		d := echoDefinition(name)
		d.HTTPMethods = []string{"GET", "POST"}
		return d
	}
	writeOnly := func(name string) Definition {
		d := echoDefinition(name)
		d.HTTPMethods = []string{"POST"}
		return d
	}
	return []Definition{
		readOnly("ListIndexTool"),
		readOnly("IndexMappingTool"),
		readWrite("SearchIndexTool"),
		writeOnly("BulkIngestTool"),
	}
}

func clearFilterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENSEARCH_DISABLED_TOOLS", "OPENSEARCH_TOOL_CATEGORIES",
		"OPENSEARCH_DISABLED_CATEGORIES", "OPENSEARCH_DISABLED_TOOLS_REGEX",
		"OPENSEARCH_SETTINGS_ALLOW_WRITE",
	} {
		t.Setenv(key, "")
	}
}

func definitionNames(defs []Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

func TestApplyFilterDisabledTools(t *testing.T) {
	cfg := FilterConfig{
		DisabledTools: []string{"listindextool", "Unknown"},
		AllowWrite:    true,
	}

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	names := definitionNames(kept)
	assert.NotContains(t, names, "ListIndexTool", "name matching is case-insensitive")
	assert.Contains(t, names, "SearchIndexTool")
	assert.Len(t, kept, 3, "unknown names are warnings, not removals")
}

func TestApplyFilterDisabledCategories(t *testing.T) {
	cfg := FilterConfig{
		Categories: map[string][]string{
			"mappings": {"IndexMappingTool", "GetShardsTool"},
		},
		DisabledCategories: []string{"mappings", "nonexistent"},
		AllowWrite:         true,
	}

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	names := definitionNames(kept)
	assert.NotContains(t, names, "IndexMappingTool")
	assert.Contains(t, names, "ListIndexTool")
}

func TestApplyFilterRegex(t *testing.T) {
	cfg := FilterConfig{
		DisabledRegex: []string{"^.*Index.*$", "[invalid"},
		AllowWrite:    true,
	}

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	names := definitionNames(kept)
	assert.NotContains(t, names, "ListIndexTool")
	assert.NotContains(t, names, "IndexMappingTool")
	assert.NotContains(t, names, "SearchIndexTool")
	assert.Contains(t, names, "BulkIngestTool", "invalid patterns are skipped, not fatal")
}

func TestApplyFilterRegexAnchorsAtNameStart(t *testing.T) {
	cfg := FilterConfig{
		DisabledRegex: []string{"Index"},
		AllowWrite:    true,
	}

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	names := definitionNames(kept)
	assert.NotContains(t, names, "IndexMappingTool")
	assert.Contains(t, names, "ListIndexTool", "patterns match from the start of the name, not anywhere in it")
	assert.Contains(t, names, "SearchIndexTool")
}

func TestApplyFilterWriteProtection(t *testing.T) {
	cfg := FilterConfig{AllowWrite: false}

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	names := definitionNames(kept)
	assert.NotContains(t, names, "BulkIngestTool")
	assert.Contains(t, names, "SearchIndexTool", "tools with a GET method stay visible")
	assert.Contains(t, names, "ListIndexTool")
}

func TestFilterFromEnv(t *testing.T) {
	clearFilterEnv(t)
	t.Setenv("OPENSEARCH_DISABLED_TOOLS", "ListIndexTool, SearchIndexTool")
	t.Setenv("OPENSEARCH_TOOL_CATEGORIES", "critical=ListIndexTool,SearchIndexTool;extra=GetShardsTool")
	t.Setenv("OPENSEARCH_DISABLED_CATEGORIES", "extra")
	t.Setenv("OPENSEARCH_SETTINGS_ALLOW_WRITE", "false")

	cfg, err := FilterFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"ListIndexTool", "SearchIndexTool"}, cfg.DisabledTools)
	assert.Equal(t, []string{"ListIndexTool", "SearchIndexTool"}, cfg.Categories["critical"])
	assert.Equal(t, []string{"GetShardsTool"}, cfg.Categories["extra"])
	assert.Equal(t, []string{"extra"}, cfg.DisabledCategories)
	assert.False(t, cfg.AllowWrite)
}

func TestFilterFromEnvDefaults(t *testing.T) {
	clearFilterEnv(t)

	cfg, err := FilterFromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.DisabledTools)
	assert.True(t, cfg.AllowWrite)
}

func TestFilterFromEnvMalformedCategories(t *testing.T) {
	clearFilterEnv(t)
	t.Setenv("OPENSEARCH_TOOL_CATEGORIES", "no-equals-sign")

	_, err := FilterFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed tool category")
}

func TestLoadFilterFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
tool_category:
  critical:
    - ListIndexTool
tool_filters:
  disabled_tools:
    - SearchIndexTool
  disabled_categories:
    - critical
  disabled_tools_regex:
    - ^Bulk.*$
  settings:
    allow_write: false
`), 0o600))

	cfg, err := LoadFilterFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SearchIndexTool"}, cfg.DisabledTools)
	assert.Equal(t, []string{"critical"}, cfg.DisabledCategories)
	assert.Equal(t, []string{"^Bulk.*$"}, cfg.DisabledRegex)
	assert.False(t, cfg.AllowWrite)

	kept := ApplyFilter(filterDefinitions(), cfg, discardLogger())
	assert.Equal(t, []string{"IndexMappingTool"}, definitionNames(kept))
}

func TestLoadFilterFromYAMLAllowWriteDefaultsTrue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
tool_filters:
  disabled_tools:
    - SearchIndexTool
`), 0o600))

	cfg, err := LoadFilterFromYAML(path)
	require.NoError(t, err)
	assert.True(t, cfg.AllowWrite)
}

func TestLoadFilterFromYAMLMissingFile(t *testing.T) {
	_, err := LoadFilterFromYAML(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

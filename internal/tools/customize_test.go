package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCLIOverrides(t *testing.T) {
	overrides, err := ParseCLIOverrides([]string{
		"ListIndexTool.displayName=IndexLister",
		"SearchIndexTool.description=Runs a DSL search",
		"GetShardsTool.name=ShardInfo",
	})
	require.NoError(t, err)

	assert.Equal(t, "IndexLister", overrides["ListIndexTool"].DisplayName)
	assert.Equal(t, "Runs a DSL search", overrides["SearchIndexTool"].Description)
	assert.Equal(t, "ShardInfo", overrides["GetShardsTool"].DisplayName, "name is an alias for displayName")
}

func TestParseCLIOverridesMalformed(t *testing.T) {
	tests := []string{
		"no-equals",
		"Tool.unknownField=x",
		".displayName=x",
	}
	for _, entry := range tests {
		t.Run(entry, func(t *testing.T) {
			_, err := ParseCLIOverrides([]string{entry})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "malformed tool override")
		})
	}
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  ListIndexTool:
    displayName: IndexLister
    description: Lists every index
  SearchIndexTool:
    description: Searches with query DSL
`), 0o600))

	overrides, err := LoadOverridesFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "IndexLister", overrides["ListIndexTool"].DisplayName)
	assert.Equal(t, "Lists every index", overrides["ListIndexTool"].Description)
	assert.Equal(t, "Searches with query DSL", overrides["SearchIndexTool"].Description)
}

func TestApplyOverrides(t *testing.T) {
	defs := []Definition{
		echoDefinition("ListIndexTool"),
		echoDefinition("SearchIndexTool"),
	}

	fromFile := map[string]ToolOverride{
		"ListIndexTool":   {DisplayName: "FromFile", Description: "file description"},
		"SearchIndexTool": {Description: "file description"},
	}
	fromCLI := map[string]ToolOverride{
		"ListIndexTool": {DisplayName: "FromCLI"},
		"UnknownTool":   {DisplayName: "Ignored"},
	}

	out := ApplyOverrides(defs, fromFile, fromCLI, discardLogger())
	require.Len(t, out, 2)

	assert.Equal(t, "FromCLI", out[0].Name, "CLI wins over file for the same field")
	assert.Equal(t, "file description", out[0].Description, "file fields survive when CLI does not set them")
	assert.Equal(t, "SearchIndexTool", out[1].Name)
	assert.Equal(t, "file description", out[1].Description)
}

func TestApplyOverridesLeavesUnnamedToolsAlone(t *testing.T) {
	defs := []Definition{echoDefinition("ListIndexTool")}

	out := ApplyOverrides(defs, nil, nil, discardLogger())
	require.Len(t, out, 1)
	assert.Equal(t, "ListIndexTool", out[0].Name)
	assert.Equal(t, defs[0].Description, out[0].Description)
}

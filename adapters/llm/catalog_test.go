package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "Gemini", c.DefaultModel)
	require.Len(t, c.Models, 3)
	require.Len(t, c.EngageLevels, 3)
	assert.Equal(t, "banana", c.EngageLevels[0].Password)
	assert.Contains(t, c.EngageLevels[0].SystemPrompt, "'banana'")
	assert.Equal(t, "serendipity", c.EngageLevels[2].Password)

	spec, ok := c.Lookup("GPT-4o mini")
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, spec.Provider)
	assert.Equal(t, "gpt-4o-mini", spec.ProviderModel)

	_, ok = c.Lookup("gpt-4o-mini")
	assert.False(t, ok)
}

func TestParseCatalog_Invalid(t *testing.T) {
	level := "\n[[engage_level]]\nsystem_prompt = \"s\"\npassword = \"p\"\n"

	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", "default_model = ", "decode catalog"},
		{"missing id", "[[model]]\nprovider = \"mock\"\n" + level, "has no id"},
		{"duplicate", "[[model]]\nid = \"A\"\nprovider = \"mock\"\n[[model]]\nid = \"A\"\nprovider = \"mock\"\n" + level, "duplicate model id"},
		{"unknown provider", "[[model]]\nid = \"A\"\nprovider = \"cohere\"\n" + level, "unknown provider"},
		{"missing provider model", "[[model]]\nid = \"A\"\nprovider = \"gemini\"\n" + level, "needs provider_model"},
		{"no levels", "[[model]]\nid = \"A\"\nprovider = \"mock\"\n", "engage_level"},
		{"empty password", "[[engage_level]]\nsystem_prompt = \"s\"\npassword = \" \"\n", "no password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseCatalog_NormalizesProvider(t *testing.T) {
	c, err := ParseCatalog([]byte(`
[[model]]
id = " Local "
provider = "MOCK"

[[engage_level]]
system_prompt = "keep it"
password = "secret"
`))
	require.NoError(t, err)

	spec, ok := c.Lookup("Local")
	require.True(t, ok)
	assert.Equal(t, ProviderMock, spec.Provider)
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.Models, 3)

	path := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_model = "Echo"

[[model]]
id = "Echo"
provider = "mock"

[[engage_level]]
system_prompt = "The word is 'kiwi'."
password = "kiwi"
`), 0o600))

	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "Echo", c.ResolveDefault(""))
	assert.Equal(t, "Mock", c.ResolveDefault("Mock"))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolveDefault_FallsBackToFirstModel(t *testing.T) {
	c := &Catalog{Models: []ModelSpec{{ID: "First", Provider: ProviderMock}}}
	assert.Equal(t, "First", c.ResolveDefault(""))
	assert.Equal(t, "Mock", (&Catalog{}).ResolveDefault(""))
}

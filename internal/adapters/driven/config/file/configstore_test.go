package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, FileName), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_HomeOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	t.Setenv(EnvHome, dir)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
	assert.DirExists(t, dir)
}

func TestDefaultDir_FallsBackToHome(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".storysmith"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("llm.max_tokens", 1024))
	require.NoError(t, store.Set("ingest.watch", true))
	require.NoError(t, store.Set("ingest.patterns", []string{"*.pdf", "*.xlsx"}))

	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
	assert.Equal(t, 1024, store.GetInt("llm.max_tokens"))
	assert.True(t, store.GetBool("ingest.watch"))
	assert.Equal(t, []string{"*.pdf", "*.xlsx"}, store.GetStringSlice("ingest.patterns"))

	// Wrong types read as zero values.
	assert.Equal(t, "", store.GetString("llm.max_tokens"))
	assert.Equal(t, 0, store.GetInt("llm.model"))
	assert.False(t, store.GetBool("llm.model"))
	assert.Nil(t, store.GetStringSlice("llm.model"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.dimensions", 1536))
	require.NoError(t, store.Set("jira.project_key", "BA"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[jira]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reloaded.GetString("embedding.provider"))
	assert.Equal(t, 1536, reloaded.GetInt("embedding.dimensions"))
	assert.Equal(t, "BA", reloaded.GetString("jira.project_key"))
	assert.Equal(t, []string{"embedding.dimensions", "embedding.provider", "jira.project_key"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[llm]
provider = "anthropic"
temperature = 0.1

[store]
backend = "bolt"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "bolt", store.GetString("store.backend"))
	v, ok := store.Get("llm.temperature")
	require.True(t, ok)
	assert.InDelta(t, 0.1, v, 1e-9)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("jira.api_token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("ingest.workers", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("ingest.workers")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"ingest.workers"}, store.Keys())
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{
		"a":       1,
		"a.b":     2,
		"x.y.z":   "deep",
		"x.y.w":   true,
		"top":     "level",
		"m.n":     "k",
		"m.n.sub": "shadowed",
	})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
	assert.Equal(t, "level", got["top"])
	assert.Equal(t, map[string]any{"y": map[string]any{"z": "deep", "w": true}}, got["x"])
	assert.Equal(t, map[string]any{"n": "k"}, got["m"])
	assert.Equal(t, "shadowed", got["m.n.sub"])

	// Round trip through flattenMap restores every flat key.
	flat := flattenMap(got, "")
	assert.Len(t, flat, 7)
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	writeFile(t, path, `[
		{"name": "Cables", "description": "Copper and fiber cabling"},
		{"name": "Switches"}
	]`)

	docs, err := LoadCategories(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Cables. Copper and fiber cabling", docs[0].Content)
	assert.Equal(t, "Cables", docs[0].Name())
	assert.Equal(t, "Switches", docs[1].Content)
}

func TestLoadCategoriesRejectsNamelessEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	writeFile(t, path, `[{"description": "orphan"}]`)

	_, err := LoadCategories(path)
	assert.Error(t, err)
}

func TestLoadProducts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cables.json"), `[
		{"name": "UTP cat5e 305m", "article": "UTP-5E-305", "brand": "Hyperline", "country": "CN"}
	]`)
	writeFile(t, filepath.Join(dir, "Switches.json"), `[
		{"name": "8-port gigabit switch", "productid": "p-100"}
	]`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not json, must be skipped")

	docs, err := LoadProducts(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byName := map[string]string{}
	for _, d := range docs {
		byName[d.Name()] = d.MetaString("category")
	}
	assert.Equal(t, "Cables", byName["UTP cat5e 305m"])
	assert.Equal(t, "Switches", byName["8-port gigabit switch"])
}

func TestLoadProductsEmptyDir(t *testing.T) {
	_, err := LoadProducts(t.TempDir())
	assert.Error(t, err)
}

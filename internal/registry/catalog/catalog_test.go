package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiclereg/internal/registration/models"
)

func TestLoadBuiltin(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Builtin(), c)
	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "Minibus", first.Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":" Bajaj ","category":"passenger","images":[" a.jpg","a.jpg","", "b.jpg"]},
		{"name":"Tanker","category":"cargo","capacity":"20000 l"}
	]`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bajaj", "Tanker"}, c.Names())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, c[0].Images)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.json")},
		{"bad json", write("bad.json", `{`)},
		{"empty list", write("empty.json", `[]`)},
		{"unnamed entry", write("unnamed.json", `[{"category":"cargo"}]`)},
		{"duplicate name", write("dup.json", `[{"name":"Pickup"},{"name":"Pickup"}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestCleanKeepsOrder(t *testing.T) {
	c, err := Clean(models.Catalog{{Name: "B"}, {Name: "A"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, c.Names())
}

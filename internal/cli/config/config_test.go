package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:5000/", want: "http://localhost:5000"},
		{in: " https://shop.example.com ", want: "https://shop.example.com"},
		{in: "shop.example.com", wantErr: true},
		{in: "ftp://shop.example.com", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindConfigFile_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	_, err := FindConfigFile(nested)
	require.True(t, errors.Is(err, ErrNotFound))

	path := filepath.Join(root, ConfigFileName)
	require.NoError(t, Save(path, &Config{Servers: []Server{{Alias: "local", URL: "http://localhost:5000"}}}))

	cfg, found, err := LoadFromDir(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "local", cfg.Servers[0].Alias)
}

func TestConfig_AddAndGetServer(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.AddServer(Server{Alias: "local", URL: "http://localhost:5000"}))
	assert.False(t, cfg.AddServer(Server{Alias: "dev", URL: "http://localhost:5000"}))
	assert.True(t, cfg.AddServer(Server{URL: "https://shop.example.com"}))
	require.Len(t, cfg.Servers, 2)

	s, err := cfg.GetServer("dev")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", s.URL)

	s, err = cfg.GetServer("https://shop.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", s.Label())

	_, err = cfg.GetServer("prod")
	assert.Error(t, err)
}

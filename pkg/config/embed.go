package config

import (
	"embed"
	"errors"
	"path"
	"strings"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

//go:embed presets/*.yaml
var presetFS embed.FS

// rawBytesProvider implements koanf's Provider over in-memory bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// PresetNames lists the embedded presets usable in an extends clause
func PresetNames() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

func presetBytes(name string) ([]byte, bool) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, false
	}
	return data, true
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveEndpoint sets the top-level endpoint key in the config file.
// Comments and formatting elsewhere are preserved by editing a yaml.Node.
func SaveEndpoint(configPath, endpoint string) error {
	if err := ValidateEndpoint(endpoint); err != nil {
		return err
	}
	return saveScalar(configPath, "endpoint", endpoint)
}

func saveScalar(configPath, key, value string) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: user-chosen config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Value: value}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, valueNode},
			}},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == key {
				// Keep the line comment attached to the old value.
				valueNode.LineComment = root.Content[i+1].LineComment
				root.Content[i+1] = valueNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, valueNode)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = enc.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".regform.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML with durations in their string form.
func Marshal(cfg Config) ([]byte, error) {
	type serverView struct {
		Addr           string   `yaml:"addr"`
		TakenUsernames []string `yaml:"taken_usernames"`
		Latency        string   `yaml:"latency"`
		RememberFor    string   `yaml:"remember_for"`
		AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	}
	view := struct {
		Endpoint string      `yaml:"endpoint"`
		Timeout  string      `yaml:"timeout"`
		Debug    bool        `yaml:"debug"`
		LogPath  string      `yaml:"log_path"`
		LogLevel string      `yaml:"log_level"`
		Theme    ThemeConfig `yaml:"theme"`
		Tracing  any         `yaml:"tracing"`
		Server   serverView  `yaml:"server"`
	}{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout.String(),
		Debug:    cfg.Debug,
		LogPath:  cfg.LogPath,
		LogLevel: cfg.LogLevel,
		Theme:    cfg.Theme,
		Tracing:  cfg.Tracing,
		Server: serverView{
			Addr:           cfg.Server.Addr,
			TakenUsernames: cfg.Server.TakenUsernames,
			Latency:        cfg.Server.Latency.String(),
			RememberFor:    cfg.Server.RememberFor.String(),
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = enc.Close()
	return buf.Bytes(), nil
}

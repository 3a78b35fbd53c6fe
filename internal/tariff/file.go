package tariff

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// codeFile is the structured registry file layout:
//
//	codes:
//	  - "8471.50"
//	  - "8517.62"
type codeFile struct {
	Codes []string `yaml:"codes" toml:"codes"`
}

// LoadFile reads a registry from disk. The format follows the extension:
// .yaml/.yml and .toml hold a "codes" list, anything else is plain text with
// one code per line and "#" comments.
func LoadFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariff file: %w", err)
	}

	codes, err := parseCodes(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse tariff file %s: %w", path, err)
	}
	return NewStaticRegistry(codes...), nil
}

func parseCodes(ext string, data []byte) ([]string, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var f codeFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f.Codes, nil
	case ".toml":
		var f codeFile
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, err
		}
		return f.Codes, nil
	default:
		return parseTextCodes(data)
	}
}

func parseTextCodes(data []byte) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			codes = append(codes, line)
		}
	}
	return codes, scanner.Err()
}

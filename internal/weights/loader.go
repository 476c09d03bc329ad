package weights

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/wonny/cohesion/internal/contracts"
)

// File is the on-disk layout of a weight table
type File struct {
	Weights []contracts.RolePairWeight `yaml:"weights" toml:"weights"`
}

// LoadFile reads and validates a YAML (.yaml, .yml) or TOML (.toml) weight file
func LoadFile(path string) ([]contracts.RolePairWeight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	case ".toml":
		return DecodeTOML(f)
	default:
		return nil, fmt.Errorf("unsupported weights file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// DecodeYAML decodes a YAML weight table. Unknown fields are rejected.
func DecodeYAML(r io.Reader) ([]contracts.RolePairWeight, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml weights: %w", err)
	}
	return finish(file)
}

// DecodeTOML decodes a TOML weight table ([[weights]] array of tables).
// Unknown keys are rejected.
func DecodeTOML(r io.Reader) ([]contracts.RolePairWeight, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read toml weights: %w", err)
	}

	var file File
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("decode toml weights: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode toml weights: unknown keys %v", undecoded)
	}
	return finish(file)
}

func finish(file File) ([]contracts.RolePairWeight, error) {
	if len(file.Weights) == 0 {
		return nil, &contracts.ValidationError{Field: "weights", Message: "weight table is empty"}
	}
	if err := Validate(file.Weights); err != nil {
		return nil, err
	}
	return file.Weights, nil
}

// Resolve returns the entries in path, or Default() when path is empty
func Resolve(path string) ([]contracts.RolePairWeight, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for definition and capture file loading.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("file is empty")
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the format from the file extension: .yaml and .yml are
// YAML, everything else is JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile reads a regular, non-empty file and expands ${VAR} and
// ${VAR:-default} references in it.
func ReadFile(path string) ([]byte, error) {
	data, err := ReadFileRaw(path)
	if err != nil {
		return nil, err
	}
	return []byte(ExpandEnvVars(string(data))), nil
}

// ReadFileRaw reads a regular, non-empty file as is.
func ReadFileRaw(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return data, nil
}

// DecodeList decodes a document holding either a single T or an array of
// them.
func DecodeList[T any](data []byte, format Format) ([]T, error) {
	if format == FormatYAML {
		return decodeYAMLList[T](data)
	}
	return decodeJSONList[T](data)
}

func decodeJSONList[T any](data []byte) ([]T, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return items, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return []T{item}, nil
}

func decodeYAMLList[T any](data []byte) ([]T, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind == yaml.SequenceNode {
		var items []T
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		return items, nil
	}
	var item T
	if err := root.Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return []T{item}, nil
}

// LoadList reads path with ReadFile and decodes it with DecodeList in the
// format its extension implies.
func LoadList[T any](path string) ([]T, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeFile[T](path, data)
}

// LoadListRaw is LoadList without environment expansion, for files holding
// recorded data.
func LoadListRaw[T any](path string) ([]T, error) {
	data, err := ReadFileRaw(path)
	if err != nil {
		return nil, err
	}
	return decodeFile[T](path, data)
}

func decodeFile[T any](path string, data []byte) ([]T, error) {
	items, err := DecodeList[T](data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Encode marshals v in the given format. JSON output is indented and ends
// with a newline.
func Encode(v any, format Format) ([]byte, error) {
	if format == FormatYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveFile writes v to path, in the format its extension implies, using a
// temporary file and rename so readers never see a partial file.
func SaveFile(path string, v any) error {
	data, err := Encode(v, DetectFormat(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

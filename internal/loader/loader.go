// Package loader reads configuration files into the flat key/value map the
// engine is built from. YAML documents and HCL files are flattened into dotted
// keys and Java-style .properties files are read verbatim.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	javaprops "github.com/magiconair/properties"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported configuration file format")

var supportedExtensions = []string{".properties", ".yaml", ".yml", ".hcl"}

// FileLoader loads configuration files in order; keys from later files win.
type FileLoader struct {
	paths  []string
	logger *zap.Logger

	mu     sync.RWMutex
	loaded []string
}

// NewFileLoader creates a loader over files and directories. A directory
// contributes its supported files in name order.
func NewFileLoader(logger *zap.Logger, paths ...string) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{
		paths:  slices.Clone(paths),
		logger: logger,
	}
}

// Load reads every configured file.
func (l *FileLoader) Load(ctx context.Context) (map[string]any, error) {
	files, err := l.expand()
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
		for k, v := range entries {
			out[k] = v
		}
		l.logger.Debug("configuration file loaded",
			zap.String("path", file),
			zap.Int("entries", len(entries)),
		)
	}

	l.mu.Lock()
	l.loaded = files
	l.mu.Unlock()

	return out, nil
}

// Info describes what the last Load read.
func (l *FileLoader) Info() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return map[string]any{
		"loader": "file",
		"files":  slices.Clone(l.loaded),
	}
}

func (l *FileLoader) expand() ([]string, error) {
	var files []string
	for _, path := range l.paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat config path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read config dir: %w", err)
		}
		// ReadDir returns entries sorted by filename.
		for _, entry := range entries {
			if entry.IsDir() || !supported(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

func supported(name string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(name)))
}

func loadFile(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return loadProperties(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".hcl":
		return loadHCL(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// loadProperties reads a .properties file without expanding ${} references;
// interpolation belongs to the engine.
func loadProperties(path string) (map[string]any, error) {
	l := &javaprops.Loader{Encoding: javaprops.UTF8, DisableExpansion: true}
	p, err := l.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}

	out := make(map[string]any, p.Len())
	for _, key := range p.Keys() {
		if v, ok := p.Get(key); ok {
			out[key] = v
		}
	}
	return out, nil
}

func loadYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	out := make(map[string]any)
	flatten(out, "", doc)
	return out, nil
}

// flatten writes nested mappings as dotted keys. Sequences become comma
// separated lists so they bind onto slice members.
func flatten(out map[string]any, prefix string, value any) {
	join := func(k string) string {
		return joinKey(prefix, k)
	}

	switch v := value.(type) {
	case map[string]any:
		for k, inner := range v {
			flatten(out, join(k), inner)
		}
	case map[any]any:
		for k, inner := range v {
			flatten(out, join(fmt.Sprint(k)), inner)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarText(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		if prefix != "" {
			out[prefix] = nil
		}
	case float64, float32:
		out[prefix] = scalarText(v)
	default:
		out[prefix] = v
	}
}

// scalarText renders floats in plain decimal notation; 1000000.0 stays
// "1000000" rather than "1e+06".
func scalarText(v any) string {
	switch f := v.(type) {
	case float64:
		return strconv.FormatFloat(f, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

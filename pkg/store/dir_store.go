package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DirStore reads definitions from a directory tree. It never writes.
type DirStore struct {
	root string
	fsys fs.FS
}

// NewDirStore reads definitions below root on the local filesystem.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root, fsys: os.DirFS(root)}
}

// NewFSStore reads definitions from fsys, e.g. an embed.FS or fstest.MapFS.
func NewFSStore(fsys fs.FS) *DirStore {
	return &DirStore{root: ".", fsys: fsys}
}

// Root returns the directory the store was created with.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) Load(ctx context.Context, kind Kind) (map[string]any, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.fsys, string(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", kind, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || formatOf(entry.Name()) == formatUnknown {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := map[string]any{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := path.Join(string(kind), name)
		raw, err := fs.ReadFile(s.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", file, err)
		}
		definitions, err := decodeDefinitions(formatOf(name), raw)
		if err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", file, err)
		}
		for key, value := range definitions {
			out[key] = value
		}
	}
	return out, nil
}

func (s *DirStore) Save(context.Context, Kind, string, any) error {
	return ErrReadOnly
}

func (s *DirStore) Clear(context.Context, Kind) error {
	return ErrReadOnly
}

type format int

const (
	formatUnknown format = iota
	formatJSON
	formatJSONC
	formatYAML
)

func formatOf(name string) format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return formatJSON
	case ".jsonc":
		return formatJSONC
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatUnknown
	}
}

// decodeDefinitions parses raw into a JSON-shaped object. YAML documents go
// through JSON so numbers come back as float64 like every other source.
func decodeDefinitions(f format, raw []byte) (map[string]any, error) {
	var decoded any
	switch f {
	case formatJSON:
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
	case formatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(raw), &decoded); err != nil {
			return nil, err
		}
	case formatYAML:
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		if doc == nil {
			return map[string]any{}, nil
		}
		buffer, err := json.Marshal(normalizeYAML(doc))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(buffer, &decoded); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file format")
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %T", decoded)
	}
	return object, nil
}

func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = normalizeYAML(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[fmt.Sprint(key)] = normalizeYAML(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = normalizeYAML(child)
		}
		return out
	default:
		return typed
	}
}

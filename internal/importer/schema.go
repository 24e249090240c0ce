package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/sisara/internal/domain"
	"gopkg.in/yaml.v3"
)

// MasterDataFile maps a row kind to its catalog entries.
type MasterDataFile map[domain.RowKind][]domain.MasterDataItem

// SeedFile is the combined bootstrap document: a full tree plus the catalog.
type SeedFile struct {
	Tree       []*domain.TreeNode `json:"tree"`
	MasterData MasterDataFile     `json:"masterData"`
}

// LoadForest reads a tree file. The document is either a bare list of root
// nodes or an object with a "tree" key.
func LoadForest(path string) ([]*domain.TreeNode, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	if isJSONArray(data) {
		var forest []*domain.TreeNode
		if err := json.Unmarshal(data, &forest); err != nil {
			return nil, fmt.Errorf("parsing tree file: %w", err)
		}
		return nonNilForest(forest), nil
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing tree file: %w", err)
	}
	return nonNilForest(seed.Tree), nil
}

// LoadMasterData reads a catalog file. The document is either an object keyed
// by kind or an object with a "masterData" key.
func LoadMasterData(path string) (MasterDataFile, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		MasterData MasterDataFile `json:"masterData"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.MasterData != nil {
		return wrapped.MasterData, nil
	}
	var byKind MasterDataFile
	if err := json.Unmarshal(data, &byKind); err != nil {
		return nil, fmt.Errorf("parsing master data file: %w", err)
	}
	if byKind == nil {
		byKind = MasterDataFile{}
	}
	return byKind, nil
}

// LoadSeed reads a combined tree and catalog file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	seed.Tree = nonNilForest(seed.Tree)
	if seed.MasterData == nil {
		seed.MasterData = MasterDataFile{}
	}
	return &seed, nil
}

// readJSON returns the file as JSON bytes. YAML files (.yaml, .yml) are
// converted so every format shares the same field names and the
// present-versus-absent rules of the JSON decoders.
func readJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
		}
		out, err := json.Marshal(stringKeys(doc))
		if err != nil {
			return nil, fmt.Errorf("converting YAML %s: %w", path, err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// stringKeys rewrites YAML maps with non-string keys (month indexes written
// as bare integers) into JSON-compatible maps.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func nonNilForest(forest []*domain.TreeNode) []*domain.TreeNode {
	if forest == nil {
		return []*domain.TreeNode{}
	}
	return forest
}

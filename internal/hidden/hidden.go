// Package hidden reads the per-page table of CSS selectors that are hidden
// before a visual snapshot. The YAML document is nested; its keys are
// flattened with dots so that
//
//	demo:
//	  LoginPage:
//	    - "#clock"
//
// is reachable as "demo.LoginPage".
package hidden

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

var ErrInvalidTable = errors.New("invalid hidden elements table")

// Table maps flattened page keys to ordered selector lists.
type Table struct {
	entries map[string][]string
}

func NewTable(entries map[string][]string) *Table {
	if entries == nil {
		entries = make(map[string][]string)
	}
	return &Table{entries: entries}
}

// Load reads and flattens the YAML file at path.
func Load(path string) (*Table, error) {
	m, err := LoadMap(path)
	if err != nil {
		return nil, err
	}
	entries, err := Flatten(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewTable(entries), nil
}

// LoadMap reads a YAML file into a nested mapping.
func LoadMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err = yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// Flatten turns a nested mapping into dotted keys. Every leaf must be a
// sequence of strings.
func Flatten(m map[string]any) (map[string][]string, error) {
	out := make(map[string][]string)
	if err := flatten("", m, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node any, out map[string][]string) error {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if err := flatten(join(prefix, key), child, out); err != nil {
				return err
			}
		}
	case map[any]any:
		for key, child := range v {
			if err := flatten(join(prefix, fmt.Sprint(key)), child, out); err != nil {
				return err
			}
		}
	case []any:
		if err := unique(prefix, out); err != nil {
			return err
		}
		selectors := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("%w: %s[%d] is %T, want string", ErrInvalidTable, prefix, i, item)
			}
			selectors = append(selectors, s)
		}
		out[prefix] = selectors
	case nil:
		if err := unique(prefix, out); err != nil {
			return err
		}
		out[prefix] = nil
	default:
		return fmt.Errorf("%w: %s is %T, want a mapping or a list of selectors", ErrInvalidTable, prefix, node)
	}
	return nil
}

// unique rejects a dotted key written both literally and as nested mappings.
func unique(key string, out map[string][]string) error {
	if _, ok := out[key]; ok {
		return fmt.Errorf("%w: %s is defined more than once", ErrInvalidTable, key)
	}
	return nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Lookup returns the selectors stored under key in authored order.
func (t *Table) Lookup(key string) ([]string, bool) {
	selectors, ok := t.entries[key]
	return selectors, ok
}

func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeyFor builds the table key of a page object: its package path and type
// name joined by a dot, with prefix stripped. v may be a value, a pointer or
// a reflect.Type.
func KeyFor(v any, prefix string) string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}
	return strings.TrimPrefix(name, prefix)
}

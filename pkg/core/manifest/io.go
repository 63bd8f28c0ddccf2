package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

const (
	keyDependencies     = "dependencies"
	keyScopedRegistries = "scopedRegistries"
	keyTestables        = "testables"
)

type rawField struct {
	Key   string
	Value json.RawMessage
}

// Parse decodes manifest JSON. Scoped registries with no scopes are kept;
// they are only dropped on write.
func Parse(data []byte) (*Manifest, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "manifest is not a JSON object")
	}

	m := New()
	for _, f := range fields {
		switch f.Key {
		case keyDependencies:
			m.Dependencies = nil
			if err := json.Unmarshal(f.Value, &m.Dependencies); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "invalid %q", f.Key)
			}
			if m.Dependencies == nil {
				m.Dependencies = map[upm.DomainName]string{}
			}
		case keyScopedRegistries:
			if err := json.Unmarshal(f.Value, &m.ScopedRegistries); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "invalid %q", f.Key)
			}
		case keyTestables:
			if err := json.Unmarshal(f.Value, &m.Testables); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "invalid %q", f.Key)
			}
		}
		// A repeated key keeps its first position and its last value.
		if i := slices.IndexFunc(m.extra, func(e rawField) bool { return e.Key == f.Key }); i >= 0 {
			m.extra[i].Value = f.Value
			continue
		}
		m.extra = append(m.extra, f)
	}
	return m, nil
}

// decodeObject reads the top-level keys of a JSON object in file order.
func decodeObject(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var fields []rawField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields = append(fields, rawField{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// Marshal encodes the manifest with two-space indentation and a trailing
// newline. Top-level keys keep their original order, with modelled keys
// that were absent appended in the order dependencies, scopedRegistries,
// testables. Dependencies are sorted by name. Scoped registries without
// scopes are omitted, as are empty scopedRegistries and testables lists.
func (m *Manifest) Marshal() ([]byte, error) {
	pruned := m.Clone().pruneScopedRegistries()

	values := map[string]any{keyDependencies: pruned.Dependencies}
	if len(pruned.ScopedRegistries) > 0 {
		values[keyScopedRegistries] = pruned.ScopedRegistries
	}
	if len(pruned.Testables) > 0 {
		values[keyTestables] = pruned.Testables
	}

	order := make([]string, 0, len(m.extra)+3)
	raw := make(map[string]json.RawMessage, len(m.extra))
	for _, f := range m.extra {
		order = append(order, f.Key)
		raw[f.Key] = f.Value
	}
	for _, k := range []string{keyDependencies, keyScopedRegistries, keyTestables} {
		if _, ok := values[k]; ok && !slices.Contains(order, k) {
			order = append(order, k)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	first := true
	for _, k := range order {
		var v any
		if mv, ok := values[k]; ok {
			v = mv
		} else if k == keyScopedRegistries || k == keyTestables {
			continue
		} else {
			v = raw[k]
		}
		encoded, err := encodeIndent(v)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode %q", k)
		}
		key, _ := encodeIndent(k)
		if !first {
			buf.WriteString(",")
		}
		first = false
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(encoded)
	}
	if !first {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// encodeIndent encodes v at the indentation of a top-level value without
// escaping HTML characters.
func encodeIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("  ", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Load reads the manifest of the project rooted at dir.
func Load(dir string) (*Manifest, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.New(errs.ErrCodeManifestNotFound, "no manifest at %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read %s", path)
	}
	return Parse(data)
}

// Save writes m to the project rooted at dir, replacing the file atomically.
func Save(dir string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	path := Path(dir)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// Path returns the manifest path for the project rooted at dir.
func Path(dir string) string {
	return filepath.Join(dir, filepath.FromSlash(RelativePath))
}

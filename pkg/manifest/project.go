package manifest

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/matzehuels/storelink/pkg/errors"
)

const (
	fieldDependencies    = "dependencies"
	fieldDevDependencies = "devDependencies"
)

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Project is the manifest of the project being installed.
type Project struct {
	Dir string
	Package

	raw   []byte
	mode  os.FileMode
	dirty bool
}

// Load reads <dir>/package.json. The document must be a JSON object.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no %s in %s", FileName, dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s is not a JSON object", path)
	}
	pkg, err := decodePackage(path, data)
	if err != nil {
		return nil, err
	}
	return &Project{Dir: dir, Package: *pkg, raw: data, mode: info.Mode().Perm()}, nil
}

// Path returns the manifest file path.
func (p *Project) Path() string {
	return filepath.Join(p.Dir, FileName)
}

// Deps returns the declared requirements keyed by package name. With
// includeDev, devDependencies are merged in; a name declared in both maps
// keeps its dependencies entry.
func (p *Project) Deps(includeDev bool) map[string]string {
	out := make(map[string]string, len(p.Dependencies)+len(p.DevDependencies))
	if includeDev {
		maps.Copy(out, p.DevDependencies)
	}
	maps.Copy(out, p.Dependencies)
	return out
}

// DepNames returns the names from Deps in sorted order.
func (p *Project) DepNames(includeDev bool) []string {
	return slices.Sorted(maps.Keys(p.Deps(includeDev)))
}

// AddDependency declares name with requirement in dependencies, or in
// devDependencies when dev is set, moving it out of the other map.
func (p *Project) AddDependency(name, requirement string, dev bool) {
	target, other := &p.Dependencies, &p.DevDependencies
	if dev {
		target, other = other, target
	}
	if *target == nil {
		*target = make(map[string]string)
	}
	if cur, ok := (*target)[name]; !ok || cur != requirement {
		(*target)[name] = requirement
		p.dirty = true
	}
	if _, ok := (*other)[name]; ok {
		delete(*other, name)
		p.dirty = true
	}
}

// RemoveDependency drops name from both maps and reports whether it was
// declared in either.
func (p *Project) RemoveDependency(name string) bool {
	removed := false
	if _, ok := p.Dependencies[name]; ok {
		delete(p.Dependencies, name)
		removed = true
	}
	if _, ok := p.DevDependencies[name]; ok {
		delete(p.DevDependencies, name)
		removed = true
	}
	p.dirty = p.dirty || removed
	return removed
}

// Dirty reports whether the dependency maps changed since Load or Save.
func (p *Project) Dirty() bool { return p.dirty }

// Save writes the dependency maps back into package.json. Only the two
// dependency keys are rewritten; each is emitted sorted by package name and
// removed when empty.
func (p *Project) Save() error {
	out, err := p.render()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(p.Path(), out, p.mode); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", p.Path())
	}
	p.raw = out
	p.dirty = false
	return nil
}

func (p *Project) render() ([]byte, error) {
	out := p.raw
	var err error
	for _, f := range []struct {
		key  string
		deps map[string]string
	}{
		{fieldDependencies, p.Dependencies},
		{fieldDevDependencies, p.DevDependencies},
	} {
		if len(f.deps) == 0 {
			if gjson.GetBytes(out, f.key).Exists() {
				if out, err = sjson.DeleteBytes(out, f.key); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInternal, err, "remove %s", f.key)
				}
			}
			continue
		}
		obj, err := marshalDeps(f.deps)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f.key)
		}
		if out, err = sjson.SetRawBytes(out, f.key, obj); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "set %s", f.key)
		}
	}
	return pretty.PrettyOptions(out, prettyOptions), nil
}

// marshalDeps encodes deps as a JSON object sorted by key. HTML escaping
// is disabled so ranges like ">=1.0.0 <2.0.0" stay readable.
func marshalDeps(deps map[string]string) ([]byte, error) {
	if deps == nil {
		deps = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(deps); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".package.json-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

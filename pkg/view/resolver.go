package view

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/waypoint/pkg/errors"
)

// DefaultSuffix is appended to template names that have no extension.
const DefaultSuffix = ".html"

// Template is resolved template source.
type Template struct {
	Name   string
	Source string
}

// Resolver maps a template name to its source.
type Resolver interface {
	Resolve(name string) (*Template, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (*Template, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (*Template, error) { return f(name) }

func notFound(name string) error {
	return errors.NewNotFoundError("template", name)
}

func readTemplate(fsys fs.FS, name, file string) (*Template, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, errors.WrapIO("read", file, err)
	}
	return &Template{Name: name, Source: string(data)}, nil
}

// MapResolver resolves names through an explicit name to file table.
type MapResolver struct {
	fsys fs.FS
	m    map[string]string
}

// NewMapResolver creates a MapResolver over fsys.
func NewMapResolver(fsys fs.FS, m map[string]string) *MapResolver {
	return &MapResolver{fsys: fsys, m: m}
}

// Resolve implements Resolver.
func (r *MapResolver) Resolve(name string) (*Template, error) {
	file, ok := r.m[name]
	if !ok {
		return nil, notFound(name)
	}
	return readTemplate(r.fsys, name, file)
}

// PathStack searches a stack of directories, most recently added first.
type PathStack struct {
	fsys   fs.FS
	mu     sync.RWMutex
	paths  []string
	suffix string
}

// NewPathStack creates a PathStack over fsys.
func NewPathStack(fsys fs.FS, paths ...string) *PathStack {
	s := &PathStack{fsys: fsys, suffix: DefaultSuffix}
	for _, p := range paths {
		s.AddPath(p)
	}
	return s
}

// AddPath pushes a directory onto the stack.
func (s *PathStack) AddPath(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path.Clean(strings.TrimPrefix(dir, "/")))
}

// SetSuffix changes the default file suffix.
func (s *PathStack) SetSuffix(suffix string) {
	s.suffix = "." + strings.TrimPrefix(suffix, ".")
}

// Resolve implements Resolver.
func (s *PathStack) Resolve(name string) (*Template, error) {
	if strings.Contains(name, "..") {
		return nil, errors.NewValidationError("template", name, "parent directory traversal is not allowed")
	}
	file := name
	if path.Ext(file) == "" {
		file += s.suffix
	}

	s.mu.RLock()
	paths := append([]string(nil), s.paths...)
	s.mu.RUnlock()

	for i := len(paths) - 1; i >= 0; i-- {
		t, err := readTemplate(s.fsys, name, path.Join(paths[i], file))
		if errors.IsNotFound(err) {
			continue
		}
		return t, err
	}
	return nil, notFound(name)
}

// PrefixResolver delegates names starting with a registered prefix to the
// resolver for that prefix, with the prefix removed.
type PrefixResolver struct {
	prefixes map[string]Resolver
}

// NewPrefixResolver creates a PrefixResolver.
func NewPrefixResolver(prefixes map[string]Resolver) *PrefixResolver {
	return &PrefixResolver{prefixes: prefixes}
}

// Resolve implements Resolver. Longer prefixes are tried first.
func (r *PrefixResolver) Resolve(name string) (*Template, error) {
	keys := make([]string, 0, len(r.prefixes))
	for k := range r.prefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, prefix := range keys {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		t, err := r.prefixes[prefix].Resolve(rest)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		t.Name = name
		return t, nil
	}
	return nil, notFound(name)
}

// AggregateResolver tries resolvers in order.
type AggregateResolver struct {
	resolvers []Resolver
}

// NewAggregateResolver creates an AggregateResolver.
func NewAggregateResolver(resolvers ...Resolver) *AggregateResolver {
	return &AggregateResolver{resolvers: resolvers}
}

// Attach appends a resolver.
func (a *AggregateResolver) Attach(r Resolver) {
	a.resolvers = append(a.resolvers, r)
}

// Resolve implements Resolver.
func (a *AggregateResolver) Resolve(name string) (*Template, error) {
	for _, r := range a.resolvers {
		t, err := r.Resolve(name)
		if errors.IsNotFound(err) {
			continue
		}
		return t, err
	}
	return nil, notFound(name)
}

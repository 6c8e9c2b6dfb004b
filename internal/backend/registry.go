package backend

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/msto63/skriptc/internal/emitter"
	"github.com/msto63/skriptc/internal/symtab"
	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

// Definition is the YAML form of a backend
type Definition struct {
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	SourceExt       string        `yaml:"source_ext"`
	IntermediateExt string        `yaml:"intermediate_ext"`
	Terminator      *string       `yaml:"terminator"`
	Headers         []string      `yaml:"headers"`
	IncludeFormat   string        `yaml:"include_format"`
	Prologue        string        `yaml:"prologue"`
	Epilogue        string        `yaml:"epilogue"`
	Compiler        string        `yaml:"compiler"`
	Args            []string      `yaml:"args"`
	Rules           []symtab.Rule `yaml:"rules"`
}

// Parse decodes and validates a YAML backend definition. Omitted fields
// take the value of the built-in C backend, except rules: a definition
// without rules translates nothing.
func Parse(data []byte, origin string) (*Backend, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, skerr.Wrap(err, "invalid backend definition").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("backend.Parse").
			WithDetail("origin", origin)
	}

	table, err := symtab.New(def.Rules...)
	if err != nil {
		return nil, skerr.Wrap(err, "invalid backend rules").
			WithDetail("backend", def.Name).
			WithDetail("origin", origin)
	}

	base := C()
	b := &Backend{
		Name:            def.Name,
		Description:     def.Description,
		SourceExt:       orDefault(def.SourceExt, base.SourceExt),
		IntermediateExt: orDefault(def.IntermediateExt, base.IntermediateExt),
		Table:           table,
		Terminator:      base.Terminator,
		Headers:         def.Headers,
		Skeleton: emitter.Skeleton{
			IncludeFormat: orDefault(def.IncludeFormat, base.Skeleton.IncludeFormat),
			Prologue:      orDefault(def.Prologue, base.Skeleton.Prologue),
			Epilogue:      orDefault(def.Epilogue, base.Skeleton.Epilogue),
		},
		Compiler: orDefault(def.Compiler, base.Compiler),
		Args:     def.Args,
		Origin:   origin,
	}
	if def.Terminator != nil {
		b.Terminator = *def.Terminator
	}
	if b.Headers == nil {
		b.Headers = base.Headers
	}
	if len(b.Args) == 0 {
		b.Args = base.Args
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadFile reads one YAML backend definition
func LoadFile(path string) (*Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, skerr.Wrap(err, "failed to read backend definition").
			WithCode(skerr.CodeIOError).
			WithOperation("backend.LoadFile").
			WithDetail("path", path)
	}
	return Parse(data, path)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Registry holds the backends available to a run
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*Backend
	logger   *logging.Logger
}

// NewRegistry creates a registry with the built-in backends
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{
		backends: make(map[string]*Backend),
		logger:   logger.WithName("backend"),
	}
	r.Register(C())
	r.Register(CPP())
	return r
}

// Register adds a backend, replacing one with the same name
func (r *Registry) Register(b *Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.backends[b.Name]; ok {
		r.logger.Debug("Backend replaced", "backend", b.Name, "previous", prev.Origin, "origin", b.Origin)
	}
	r.backends[b.Name] = b
}

// LoadDir loads every *.yaml and *.yml file in dir. Invalid files are
// logged and skipped. A missing directory loads nothing.
func (r *Registry) LoadDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		r.logger.Debug("Backend directory does not exist", "dir", dir)
		return 0, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return 0, skerr.Wrap(err, "failed to list backend files").
			WithCode(skerr.CodeIOError).
			WithOperation("backend.LoadDir")
	}
	ymlFiles, _ := filepath.Glob(filepath.Join(dir, "*.yml"))
	files = append(files, ymlFiles...)
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		b, err := LoadFile(file)
		if err != nil {
			r.logger.Warn("Failed to load backend file", "file", file, "error", err)
			continue
		}
		for _, pair := range b.Table.Shadowed() {
			r.logger.Warn("Backend rule can never match",
				"backend", b.Name, "pattern", pair[1].Pattern, "shadowed_by", pair[0].Pattern)
		}
		r.Register(b)
		loaded++
		r.logger.Debug("Backend loaded", "backend", b.Name, "file", filepath.Base(file))
	}
	return loaded, nil
}

// Get returns a backend by name
func (r *Registry) Get(name string) (*Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[name]
	if !ok {
		return nil, skerr.Newf("unknown backend %q", name).
			WithCode(skerr.CodeBackendNotFound).
			WithOperation("backend.Get").
			WithDetail("backend", name)
	}
	return b, nil
}

// List returns all backends sorted by name
func (r *Registry) List() []*Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

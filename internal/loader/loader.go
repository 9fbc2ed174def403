// Package loader implements the module registry (component E): lazy,
// cycle-detecting, namespace-mangling module loading (spec §4.E). Parsing
// itself is an external collaborator — the registry is constructed with a
// Parse function and never touches a lexer or parser directly (spec §1
// Non-goals).
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/types"
)

// ParseFunc parses a source file at absPath into a Program. Supplied by the
// caller; the loader never reads a lexer/parser itself.
type ParseFunc func(absPath string) (*ast.Program, error)

// Module is one loaded, parsed JSA source file together with the state the
// rest of the pipeline attaches to it (spec §3 Module).
type Module struct {
	AbsolutePath string
	RelativePath string
	Prefix       string // mangled module prefix, spec §4.E
	AST          *ast.Program

	TypeCtx *types.Context // per-module registry; created lazily by the caller

	Exports      map[string]ast.Decl
	Dependencies []*Module

	isLoading bool
	isParsed  bool

	loadCount int // SPEC_FULL.md supplement: proves Testable Property 5
}

// IsBuiltin reports whether this module is a synthetic `@`-prefixed module
// (e.g. `@io`) rather than a file on disk.
func (m *Module) IsBuiltin() bool { return strings.HasPrefix(m.RelativePath, "@") }

// Registry owns every Module loaded for one compilation (spec §3: "a
// ModuleRegistry owns all Modules").
type Registry struct {
	projectRoot string
	sink        *diag.Sink
	parse       ParseFunc

	modules map[string]*Module // keyed by absolute path / builtin name
	order   []string           // load order, oldest first

	builtins map[string]*Module
}

// NewRegistry creates a registry rooted at projectRoot (the directory of
// the entry file), reporting to sink, using parse to turn source files into
// ASTs.
func NewRegistry(projectRoot string, sink *diag.Sink, parse ParseFunc) *Registry {
	r := &Registry{
		projectRoot: projectRoot,
		sink:        sink,
		parse:       parse,
		modules:     make(map[string]*Module),
		builtins:    make(map[string]*Module),
	}
	r.registerIOModule()
	return r
}

// normalizeComponent NFC-normalizes a path component before it is used for
// identity or mangling, so two import paths that are byte-distinct but
// canonically equivalent collapse to the same module (SPEC_FULL.md: "NFC
// normalize ... before mangling").
func normalizeComponent(s string) string {
	return norm.NFC.String(s)
}

// Load resolves and loads importPath as seen from the module currently
// being loaded (current may be nil for the entry module). Paths starting
// with `@` load built-in modules; paths starting with `.` resolve relative
// to current's directory; otherwise relative to the project root (spec
// §4.E).
func (r *Registry) Load(importPath string, current *Module) (*Module, error) {
	importPath = normalizeComponent(importPath)

	if strings.HasPrefix(importPath, "@") {
		return r.loadBuiltin(importPath)
	}

	absPath, relPath, err := r.resolvePath(importPath, current)
	if err != nil {
		return nil, r.reportf("E501", "module not found: %s: %v", importPath, err)
	}

	if mod, ok := r.modules[absPath]; ok {
		if mod.isLoading {
			return nil, r.reportf("E502", "cyclic import detected loading %s", importPath)
		}
		mod.loadCount++
		return mod, nil
	}

	mod := &Module{
		AbsolutePath: absPath,
		RelativePath: relPath,
		Prefix:       mangleModulePrefix(relPath),
		isLoading:    true,
	}
	r.modules[absPath] = mod
	r.order = append(r.order, absPath)

	program, err := r.parse(absPath)
	if err != nil {
		mod.isLoading = false
		return nil, r.reportf("E503", "failed to parse %s: %v", absPath, err)
	}
	mod.AST = program
	mod.Exports = collectExports(program)

	for _, imp := range program.Imports {
		dep, err := r.Load(imp.Path, mod)
		if err != nil {
			mod.isLoading = false
			return nil, err
		}
		imp.ImportedModule = dep
		mod.Dependencies = append(mod.Dependencies, dep)
	}

	mod.isLoading = false
	mod.isParsed = true
	mod.loadCount = 1
	return mod, nil
}

func (r *Registry) reportf(code, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if r.sink != nil {
		r.sink.Addf(diag.SeverityError, code, "loader", msg)
	}
	return fmt.Errorf("%s: %s", code, msg)
}

// resolvePath implements the three path forms from spec §4.E.
func (r *Registry) resolvePath(importPath string, current *Module) (absPath, relPath string, err error) {
	switch {
	case strings.HasPrefix(importPath, "."):
		if current == nil {
			return "", "", fmt.Errorf("relative import %q with no current module", importPath)
		}
		dir := filepath.Dir(current.AbsolutePath)
		p := filepath.Join(dir, importPath)
		if !strings.HasSuffix(p, ".jsa") {
			p += ".jsa"
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", "", err
		}
		rel, err := filepath.Rel(r.projectRoot, abs)
		if err != nil {
			rel = abs
		}
		return abs, rel, nil

	default:
		p := filepath.Join(r.projectRoot, importPath)
		if !strings.HasSuffix(p, ".jsa") {
			p += ".jsa"
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", "", err
		}
		rel, err := filepath.Rel(r.projectRoot, abs)
		if err != nil {
			rel = importPath
		}
		return abs, rel, nil
	}
}

// mangleModulePrefix sanitizes a relative path into a symbol-name-safe
// prefix (spec §4.E: `/`,`\`,`.`,`-` -> `_`).
func mangleModulePrefix(relPath string) string {
	s := normalizeComponent(relPath)
	s = strings.TrimSuffix(s, ".jsa")
	replacer := strings.NewReplacer("/", "_", "\\", "_", ".", "_", "-", "_")
	return replacer.Replace(s)
}

// MangleSymbol returns the linker-visible name for a symbol exported as
// name from a module with the given prefix (spec §4.E, Testable Property
// 6). Built-in (`@`-prefixed) modules and externs are never mangled.
func MangleSymbol(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "__" + name
}

// collectExports walks top-level declarations and builds the module's
// export table (spec §4.E). A function is included only when it is marked
// `export`. Var, const, struct and enum declarations carry no export marker
// in the AST and are always included, whether or not the source marks them
// `export`, so `ns.Type` resolution (spec §4.E) always finds them.
func collectExports(p *ast.Program) map[string]ast.Decl {
	exports := make(map[string]ast.Decl)
	for _, d := range p.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if decl.IsExport {
				exports[decl.Name] = decl
			}
		case *ast.VarDecl:
			exports[decl.Name] = decl
		case *ast.ConstDecl:
			exports[decl.Name] = decl
		case *ast.StructDecl:
			exports[decl.Name] = decl
		case *ast.EnumDecl:
			exports[decl.Name] = decl
		}
	}
	return exports
}

// LoadOrder returns every non-builtin module's absolute path in the order
// it was first loaded (used to prove Testable Property 5: a module shared
// by two importers parses exactly once).
func (r *Registry) LoadOrder() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// LoadCount returns how many times Load was called for an already-resolved
// module (1 means "parsed exactly once, never re-requested").
func (m *Module) LoadCount() int { return m.loadCount }

// ModuleByPath returns the already-loaded module registered under
// absPath, used by the inference driver to walk LoadOrder() back into
// concrete *Module values.
func (r *Registry) ModuleByPath(absPath string) (*Module, bool) {
	m, ok := r.modules[absPath]
	return m, ok
}

// Module loader (spec §4.8): loadModule resolves a relative path literal
// against the current source name, loads and parses it, and evaluates it as
// a standalone program whose innermost scope frame becomes the module's
// exports.
//
// Grounded on gotypst's eval/import.go (Import/importFile/EvalSource): the
// teacher resolves a FileId relative to the importing file and evaluates it
// through the same Engine/World so nested imports share I/O; we keep that
// shape but pass loadBytes/currentTime/parse through directly instead of a
// World interface, and a fresh Evaluator instead of a fresh Vm.
package eval

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/diag"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

// replaceFileName resolves pathLiteral relative to the directory of
// currentSourceName, matching the teacher's resolvePathToFileId.
func replaceFileName(currentSourceName, pathLiteral string) string {
	if filepath.IsAbs(pathLiteral) {
		return filepath.Clean(pathLiteral)
	}
	dir := filepath.Dir(currentSourceName)
	return filepath.Clean(filepath.Join(dir, pathLiteral))
}

// moduleIdent derives an identifier from a module's base path (spec §4.8:
// "moduleId := basename(basePath) as an Identifier"), grounded on the
// teacher's makeValidIdent/deriveNameFromPath.
func moduleIdent(basePath string) string {
	base := filepath.Base(basePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "_"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// resolveImportPath resolves `@namespace/name:version` package
// specifications (spec §1.3) through the optional PackageResolver and
// returns the resolver's path as is, without replaceFileName. Bare
// relative paths never reach the resolver and go through replaceFileName.
func (e *Evaluator) resolveImportPath(pathLiteral string) (string, error) {
	if strings.HasPrefix(pathLiteral, "@") {
		if e.Resolver == nil {
			return "", fmt.Errorf("cannot import %q: no package resolver configured", pathLiteral)
		}
		resolved, err := e.Resolver.Resolve(pathLiteral)
		if err != nil {
			return "", diag.IO(pathLiteral, err)
		}
		return resolved, nil
	}
	return replaceFileName(e.SourceName, pathLiteral), nil
}

// loadModule implements spec §4.8: evaluate sourceExpr to a path literal
// (or pass an already-evaluated Module straight through), load, parse, and
// evaluate it as a standalone program, returning its exports as a Module
// value.
func (e *Evaluator) loadModule(sourceExpr ast.Expr) (*value.Module, error) {
	source, err := e.evalExpr(sourceExpr)
	if err != nil {
		return nil, err
	}
	if mod, ok := value.AsModule(source); ok {
		return mod, nil
	}
	pathLiteral, ok := value.AsString(source)
	if !ok {
		return nil, fmt.Errorf("expected a path string or module, found %s", source.Kind())
	}

	basePath, err := e.resolveImportPath(pathLiteral)
	if err != nil {
		return nil, err
	}
	if e.LoadBytes == nil {
		return nil, fmt.Errorf("import: no loadBytes available in this evaluator state")
	}

	bytes, err := e.LoadBytes(basePath)
	if err != nil {
		return nil, diag.IO(basePath, err)
	}
	markup, err := e.Parse(string(bytes))
	if err != nil {
		return nil, err
	}

	sub := &Evaluator{
		Identifiers: env.New(e.Identifiers.Base()),
		Styles:      make(map[string]*value.Dict),
		Counters:    make(map[string]int64),
		LoadBytes:   e.LoadBytes,
		CurrentTime: e.CurrentTime,
		Parse:       e.Parse,
		Resolver:    e.Resolver,
		SourceName:  basePath,
		Logger:      e.Logger,
		Flow:        FlowNormal{},
	}
	sub.Identifiers.Define("eval", sub.evalFunction())

	startDepth := sub.Identifiers.Depth()
	if _, err := sub.evalContentSeq(markup); err != nil {
		return nil, err
	}
	if sub.Identifiers.Depth() != startDepth {
		panic("eval: unbalanced scope stack after loadModule")
	}
	frames := sub.Identifiers.Frames()
	if len(frames) == 0 {
		panic("eval: empty scope stack after module evaluation")
	}
	exports := frames[len(frames)-1].Exports()

	return &value.Module{Ident: moduleIdent(basePath), Exports: exports}, nil
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file loads a Model from one or more .hcl files.
//
// A model may be split across many files and directories. All files are
// decoded first so that keys are known workspace-wide; values are built in
// a second pass, which lets an expression reference a key from any file.
package model

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridexpr/internal/ctxlog"
	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/fsutil"
	"github.com/specialistvlad/gridexpr/internal/loader/sqlite"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

type parsedFile struct {
	path string
	body *hclModelFile
}

// loadSession holds the state shared by all files of one load.
type loadSession struct {
	model    *Model
	files    []parsedFile
	sources  map[string]string // key -> file that defines it
	exprTags map[string]expr.Tags
	stores   map[string]*sqlite.Store
}

// newModelFileFromHCL parses and decodes a single model file.
func newModelFileFromHCL(filePath string, parser *hclparse.Parser) (*hclModelFile, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclModelFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}
	return &parsed, nil
}

// LoadRecursively finds and parses all HCL files under modelPath into a
// Model. modelPath may also name a single file. The returned model owns the
// SQLite files opened for loaded blocks; release them with Close.
func LoadRecursively(ctx context.Context, modelPath string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading model from path", "path", modelPath)

	files, err := fsutil.FindFilesByExtension(modelPath, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find model files in %s: %w", modelPath, err)
	}

	s := &loadSession{
		model:    New(),
		sources:  map[string]string{},
		exprTags: map[string]expr.Tags{},
		stores:   map[string]*sqlite.Store{},
	}
	if len(files) == 0 {
		logger.Warn("No .hcl model files found in path, returning empty model", "path", modelPath)
		return s.model, nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		body, err := newModelFileFromHCL(file, parser)
		if err != nil {
			return nil, err
		}
		s.files = append(s.files, parsedFile{path: file, body: body})
	}

	if err := s.build(ctx); err != nil {
		for _, store := range s.stores {
			_ = store.Close()
		}
		return nil, err
	}
	for _, store := range s.stores {
		s.model.closers = append(s.model.closers, store)
	}

	logger.Debug("Loaded model", "path", modelPath, "files", len(files), "keys", len(s.model.data))
	return s.model, nil
}

func (s *loadSession) declare(key, file string) error {
	if prev, ok := s.sources[key]; ok {
		return fmt.Errorf("%w: key %q in %s is already defined in %s", ErrInvalidValue, key, file, prev)
	}
	s.sources[key] = file
	return nil
}

func (s *loadSession) build(ctx context.Context) error {
	for _, f := range s.files {
		for _, b := range f.body.Constants {
			if err := s.declare(b.Name, f.path); err != nil {
				return err
			}
		}
		for _, b := range f.body.Series {
			if err := s.declare(b.Name, f.path); err != nil {
				return err
			}
		}
		for _, b := range f.body.Loaded {
			if err := s.declare(b.Name, f.path); err != nil {
				return err
			}
		}
		for _, b := range f.body.Transforms {
			if err := s.declare(b.Name, f.path); err != nil {
				return err
			}
		}
		for _, b := range f.body.Exprs {
			if err := s.declare(b.Name, f.path); err != nil {
				return err
			}
			tags, err := parseTags(b.Tags)
			if err != nil {
				return fmt.Errorf("expr %q in %s: %w", b.Name, f.path, err)
			}
			s.exprTags[b.Name] = tags
		}
	}

	// Vectors first: transforms and expressions refer to them.
	for _, f := range s.files {
		for _, b := range f.body.Constants {
			tv, err := buildConstant(b)
			if err != nil {
				return fmt.Errorf("constant %q in %s: %w", b.Name, f.path, err)
			}
			s.set(b.Name, tv)
		}
		for _, b := range f.body.Series {
			tv, err := buildSeries(b)
			if err != nil {
				return fmt.Errorf("series %q in %s: %w", b.Name, f.path, err)
			}
			s.set(b.Name, tv)
		}
		for _, b := range f.body.Loaded {
			v, err := s.buildLoaded(ctx, b, f.path)
			if err != nil {
				return fmt.Errorf("loaded %q in %s: %w", b.Name, f.path, err)
			}
			s.set(b.Name, v)
		}
	}
	transforms := map[string]pendingTransform{}
	for _, f := range s.files {
		for _, b := range f.body.Transforms {
			transforms[b.Name] = pendingTransform{block: b, path: f.path}
		}
	}
	for _, f := range s.files {
		for _, b := range f.body.Transforms {
			if _, err := s.transform(b.Name, transforms, map[string]bool{}); err != nil {
				return err
			}
		}
	}

	conv := &exprConverter{exprTags: s.exprTags, known: map[string]bool{}}
	for key := range s.sources {
		conv.known[key] = true
	}
	for _, f := range s.files {
		for _, b := range f.body.Exprs {
			e, err := s.buildExpr(conv, b)
			if err != nil {
				return fmt.Errorf("expr %q in %s: %w", b.Name, f.path, err)
			}
			s.set(b.Name, e)
		}
	}
	return nil
}

type pendingTransform struct {
	block *hclTransform
	path  string
}

// transform builds the named transform after its source, so a transform may
// refer to another one declared later or in another file.
func (s *loadSession) transform(name string, pending map[string]pendingTransform, visiting map[string]bool) (timevector.TimeVector, error) {
	if tv, ok := s.model.data[name].(timevector.TimeVector); ok {
		return tv, nil
	}
	t := pending[name]
	if visiting[name] {
		return nil, fmt.Errorf("transform %q in %s: %w: source %q refers back to it", name, t.path, ErrInvalidValue, t.block.Source)
	}
	visiting[name] = true

	source, ok := s.model.data[t.block.Source].(timevector.TimeVector)
	if _, isTransform := pending[t.block.Source]; isTransform && !ok {
		var err error
		if source, err = s.transform(t.block.Source, pending, visiting); err != nil {
			return nil, err
		}
	} else if !ok {
		return nil, fmt.Errorf("transform %q in %s: %w: source %q is not a constant, series, loaded vector or transform",
			name, t.path, ErrInvalidValue, t.block.Source)
	}
	tv, err := buildTransform(t.block, source)
	if err != nil {
		return nil, fmt.Errorf("transform %q in %s: %w", name, t.path, err)
	}
	s.set(name, tv)
	return tv, nil
}

// set stores a value that is known to be well typed.
func (s *loadSession) set(key string, value any) {
	if err := s.model.Set(key, value); err != nil {
		panic(err)
	}
}

func (s *loadSession) buildLoaded(ctx context.Context, b *hclLoaded, filePath string) (any, error) {
	if (b.Vector == "") == (b.Curve == "") {
		return nil, fmt.Errorf("%w: exactly one of vector and curve must be set", ErrInvalidValue)
	}
	path := b.SQLite
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(filePath), path)
	}
	store, ok := s.stores[path]
	if !ok {
		var err error
		if store, err = sqlite.Open(path, sqlite.DefaultCacheSize); err != nil {
			return nil, err
		}
		s.stores[path] = store
	}
	if b.Vector != "" {
		return timevector.NewLoadedTimeVector(ctx, b.Vector, store)
	}
	return curve.NewLoadedCurve(ctx, b.Curve, store)
}

func (s *loadSession) buildExpr(conv *exprConverter, b *hclExpr) (*expr.Expr, error) {
	tags := s.exprTags[b.Name]
	e, diags := conv.convert(b.Value, tags)
	if diags.HasErrors() {
		return nil, diags
	}
	if e.Tags() != tags {
		var err error
		if e, err = e.WithTags(tags); err != nil {
			return nil, err
		}
	}
	if isNull(b.Profile) {
		return e, nil
	}
	profile, diags := conv.convert(b.Profile, expr.Tags{Profile: true})
	if diags.HasErrors() {
		return nil, diags
	}
	if err := e.SetProfile(profile); err != nil {
		return nil, err
	}
	return e, nil
}

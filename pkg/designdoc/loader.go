// Package designdoc reads design documents (YAML, JSON, JSONC or TOML) into
// model.Design values. Documents are only ever read; designs are never
// written back.
package designdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// TypeChecker rejects element types that are not registered.
type TypeChecker interface {
	CheckType(model.ElementType) error
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the fs.FS used by SourceFromFS sources and Glob.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithTypeChecker rejects documents that use unregistered element types.
func WithTypeChecker(checker TypeChecker) Option {
	return func(l *Loader) {
		l.types = checker
	}
}

// Loader reads and decodes design documents.
type Loader struct {
	fs    fs.FS
	types TypeChecker
}

// New constructs a Loader.
func New(options ...Option) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads the document behind src and decodes it by file extension.
func (l *Loader) Load(ctx context.Context, src Source) (model.Design, error) {
	if src == nil {
		return model.Design{}, errors.New("designdoc: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return model.Design{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return model.Design{}, errors.New("designdoc: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	default:
		err = errors.New("designdoc: unsupported source kind")
	}
	if err != nil {
		return model.Design{}, fmt.Errorf("designdoc: read %s: %w", src.Location(), err)
	}

	design, err := Decode(src.Location(), data)
	if err != nil {
		return model.Design{}, err
	}
	if err := l.checkTypes(design); err != nil {
		return model.Design{}, fmt.Errorf("designdoc: %s: %w", src.Location(), err)
	}
	return design, nil
}

// Glob expands a doublestar pattern ("designs/**/*.yaml") against the
// loader's filesystem and returns the matching files sorted.
func (l *Loader) Glob(pattern string) ([]string, error) {
	if l.fs == nil {
		return nil, errors.New("designdoc: filesystem is not configured")
	}
	matches, err := doublestar.Glob(l.fs, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("designdoc: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadAll loads every document matching pattern in the loader's filesystem.
func (l *Loader) LoadAll(ctx context.Context, pattern string) ([]model.Design, error) {
	names, err := l.Glob(pattern)
	if err != nil {
		return nil, err
	}
	designs := make([]model.Design, 0, len(names))
	for _, name := range names {
		design, err := l.Load(ctx, SourceFromFS(name))
		if err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, nil
}

func (l *Loader) checkTypes(design model.Design) error {
	if l.types == nil {
		return nil
	}
	for _, element := range design.Elements {
		if err := l.types.CheckType(element.Type); err != nil {
			return fmt.Errorf("element %q: %w", element.ID, err)
		}
	}
	return nil
}

// Decode parses a document using the decoder chosen by the extension of name
// (.yaml, .yml, .json, .jsonc, .toml) and checks the design invariants.
func Decode(name string, data []byte) (model.Design, error) {
	var design model.Design
	var err error

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &design)
	case ".json":
		err = decodeJSON(data, &design)
	case ".jsonc":
		err = decodeJSON(jsonc.ToJSON(data), &design)
	case ".toml":
		err = toml.Unmarshal(data, &design)
	default:
		return model.Design{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return model.Design{}, fmt.Errorf("designdoc: decode %s: %w", name, err)
	}

	if err := Check(design); err != nil {
		return model.Design{}, fmt.Errorf("designdoc: %s: %w", name, err)
	}
	return design, nil
}

func decodeJSON(data []byte, dest *model.Design) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// Check enforces the design invariants: every element has a type and a
// unique, non-empty ID.
func Check(design model.Design) error {
	seen := make(map[string]struct{}, len(design.Elements))
	for idx, element := range design.Elements {
		id := strings.TrimSpace(element.ID)
		if id == "" {
			return fmt.Errorf("%w: element %d has no id", ErrInvalidDesign, idx)
		}
		if strings.TrimSpace(string(element.Type)) == "" {
			return fmt.Errorf("%w: element %q has no type", ErrInvalidDesign, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate element id %q", ErrInvalidDesign, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

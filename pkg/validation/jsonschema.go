package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Issue represents a validation error with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// FieldErrors groups issue messages by field. Issues without a field are
// keyed by "".
func (r Result) FieldErrors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

const resourcePrefix = "mem://formdesigner/"

// Validator compiles schemas once and caches them by name.
type Validator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
	printer  *message.Printer
}

// NewValidator returns an empty validator.
func NewValidator() *Validator {
	return &Validator{
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
		printer:  message.NewPrinter(language.English),
	}
}

// Compile registers and compiles a schema under name. Compiling the same name
// twice returns the cached schema.
func (v *Validator) Compile(name string, raw []byte) (*jsonschema.Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("validation: schema name is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.schemas[name]; ok {
		return schema, nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: decode schema %q: %w", name, err)
	}
	url := resourcePrefix + name + ".json"
	if err := v.compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("validation: add schema %q: %w", name, err)
	}
	schema, err := v.compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema %q: %w", name, err)
	}
	v.schemas[name] = schema
	return schema, nil
}

// Validate checks instance against the named schema, compiling raw on first
// use. Instance failures are reported in the Result; the error is reserved for
// schemas that do not compile or values that cannot be encoded.
func (v *Validator) Validate(name string, raw []byte, instance any) (Result, error) {
	schema, err := v.Compile(name, raw)
	if err != nil {
		return Result{}, err
	}
	value, err := normaliseInstance(instance)
	if err != nil {
		return Result{}, fmt.Errorf("validation: encode instance: %w", err)
	}

	err = schema.Validate(value)
	if err == nil {
		return Result{Valid: true}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{}, fmt.Errorf("validation: %w", err)
	}
	issues := v.collect(verr, nil)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return Result{Valid: false, Issues: issues}, nil
}

// CheckSchema reports whether raw compiles as a JSON Schema document.
func CheckSchema(raw []byte) Result {
	if _, err := NewValidator().Compile("check", raw); err != nil {
		return Result{Valid: false, Issues: []Issue{{Message: strings.TrimPrefix(err.Error(), "validation: ")}}}
	}
	return Result{Valid: true}
}

// normaliseInstance round-trips through JSON so named map types and Go
// integers reach the validator as plain JSON values.
func normaliseInstance(instance any) (any, error) {
	raw, err := json.Marshal(instance)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

func (v *Validator) collect(verr *jsonschema.ValidationError, out []Issue) []Issue {
	if verr == nil {
		return out
	}
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			out = v.collect(cause, out)
		}
		return out
	}
	return append(out, v.issues(verr)...)
}

func (v *Validator) issues(verr *jsonschema.ValidationError) []Issue {
	pointer := toPointer(verr.InstanceLocation)
	switch k := verr.ErrorKind.(type) {
	case *kind.Required:
		out := make([]Issue, 0, len(k.Missing))
		for _, missing := range k.Missing {
			out = append(out, newIssue(appendPointer(pointer, missing), "is required"))
		}
		return out
	case *kind.AdditionalProperties:
		out := make([]Issue, 0, len(k.Properties))
		for _, prop := range k.Properties {
			out = append(out, newIssue(appendPointer(pointer, prop), "is not allowed"))
		}
		return out
	case *kind.MinLength:
		return []Issue{newIssue(pointer, fmt.Sprintf("must be at least %d %s", k.Want, plural(k.Want, "character")))}
	case *kind.MaxLength:
		return []Issue{newIssue(pointer, fmt.Sprintf("must be at most %d %s", k.Want, plural(k.Want, "character")))}
	case *kind.Type:
		return []Issue{newIssue(pointer, "must be "+article(strings.Join(k.Want, " or ")))}
	case *kind.Minimum:
		return []Issue{newIssue(pointer, "must be at least "+k.Want.FloatString(precision(k.Want.IsInt())))}
	case *kind.Maximum:
		return []Issue{newIssue(pointer, "must be at most "+k.Want.FloatString(precision(k.Want.IsInt())))}
	case *kind.Pattern:
		return []Issue{newIssue(pointer, "does not match the expected format")}
	default:
		return []Issue{newIssue(pointer, verr.ErrorKind.LocalizedString(v.printer))}
	}
}

func newIssue(pointer, msg string) Issue {
	return Issue{Path: pointer, Field: fieldPathFromPointer(pointer), Message: msg}
}

func toPointer(location []string) string {
	if len(location) == 0 {
		return ""
	}
	var b strings.Builder
	for _, segment := range location {
		b.WriteByte('/')
		segment = strings.ReplaceAll(segment, "~", "~0")
		b.WriteString(strings.ReplaceAll(segment, "/", "~1"))
	}
	return b.String()
}

func appendPointer(pointer, segment string) string {
	return pointer + toPointer([]string{segment})
}

// fieldPathFromPointer turns "/address/street" into "address.street".
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(pointer), "#"), "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ".")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func article(noun string) string {
	switch noun {
	case "":
		return "valid"
	case "integer", "object", "array":
		return "an " + noun
	case "null":
		return noun
	}
	return "a " + noun
}

func precision(isInt bool) int {
	if isInt {
		return 0
	}
	return 2
}

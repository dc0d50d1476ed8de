// Package dsv provides the field-conversion pipeline and its registry of
// named converters.
package dsv

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FieldInfo carries the positional context handed to converters that ask
// for it: the field's zero-based position in its record and the 1-based
// count of logical records read so far.
type FieldInfo struct {
	Index int
	Line  int
}

// Converter transforms a single field value. The incoming value is the raw
// parsed field (nil for an absent field, string otherwise) or the result of
// an earlier converter in the pipeline.
//
// Built-in converters never fail: on a value they cannot convert they
// return it unchanged and a nil error. An error from a custom converter
// aborts the read and propagates to the caller unwrapped.
type Converter interface {
	Convert(value any) (any, error)
}

// FieldConverter is the variant of Converter that also receives positional
// context. Which variant a converter implements is fixed at registration
// time; there is no signature inspection.
type FieldConverter interface {
	ConvertField(value any, info FieldInfo) (any, error)
}

// ConverterFunc is a function adapter for the Converter interface.
type ConverterFunc func(value any) (any, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(value any) (any, error) {
	return f(value)
}

// FieldConverterFunc is a function adapter for the FieldConverter
// interface.
type FieldConverterFunc func(value any, info FieldInfo) (any, error)

// ConvertField implements FieldConverter.
func (f FieldConverterFunc) ConvertField(value any, info FieldInfo) (any, error) {
	return f(value, info)
}

// IntegerConverter converts decimal integer text to int64.
type IntegerConverter struct{}

// Convert implements Converter. Values that are not integer text pass
// through unchanged.
func (IntegerConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return value, nil
	}
	return n, nil
}

// FloatConverter converts floating-point text to float64.
type FloatConverter struct{}

// Convert implements Converter. Values that are not numeric text pass
// through unchanged.
func (FloatConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value, nil
	}
	return f, nil
}

// DateConverter converts date text to time.Time, trying each format in
// order.
type DateConverter struct {
	// Formats are the layouts tried in order. Empty uses common date
	// layouts.
	Formats []string
	// Location is the timezone for parsing. Nil uses UTC.
	Location *time.Location
}

// Convert implements Converter. Unparseable values pass through unchanged.
func (c DateConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	formats := c.Formats
	if len(formats) == 0 {
		formats = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02-Jan-2006"}
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, strings.TrimSpace(s), loc); err == nil {
			return t, nil
		}
	}
	return value, nil
}

// DateTimeConverter converts date-time text to time.Time, trying each
// format in order.
type DateTimeConverter struct {
	// Formats are the layouts tried in order. Empty uses common date-time
	// layouts.
	Formats []string
	// Location is the timezone for parsing. Nil uses UTC.
	Location *time.Location
}

// Convert implements Converter. Unparseable values pass through unchanged.
func (c DateTimeConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	formats := c.Formats
	if len(formats) == 0 {
		formats = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, strings.TrimSpace(s), loc); err == nil {
			return t, nil
		}
	}
	return value, nil
}

// DowncaseConverter lowercases header text.
type DowncaseConverter struct{}

// Convert implements Converter.
func (DowncaseConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return strings.ToLower(s), nil
}

// SymbolConverter normalizes header text into an identifier-like form:
// lowercased, trimmed, whitespace runs collapsed to underscores, other
// non-word characters dropped.
type SymbolConverter struct{}

// Convert implements Converter.
func (SymbolConverter) Convert(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSep = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String(), nil
}

// Registry maps well-known names to converters, or to ordered lists of
// other names (composable and nestable). Registries are mutable
// process-wide state when shared via the package defaults; callers that
// mutate a registry from multiple goroutines must serialize access
// themselves.
type Registry struct {
	converters map[string]any      // Converter or FieldConverter
	aliases    map[string][]string // name -> ordered list of other names
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: make(map[string]any),
		aliases:    make(map[string][]string),
	}
}

// Register binds a name to a converter that receives only the field value.
func (r *Registry) Register(name string, conv Converter) {
	delete(r.aliases, name)
	r.converters[name] = conv
}

// RegisterField binds a name to a converter that also receives positional
// context.
func (r *Registry) RegisterField(name string, conv FieldConverter) {
	delete(r.aliases, name)
	r.converters[name] = conv
}

// RegisterAlias binds a name to an ordered list of other names. Aliases
// may reference other aliases; cycles are rejected at lookup time.
func (r *Registry) RegisterAlias(name string, names ...string) {
	delete(r.converters, name)
	r.aliases[name] = names
}

// Lookup resolves a name to its flattened, ordered converter list.
func (r *Registry) Lookup(name string) ([]any, error) {
	return r.resolve(name, make(map[string]bool))
}

func (r *Registry) resolve(name string, seen map[string]bool) ([]any, error) {
	if seen[name] {
		return nil, fmt.Errorf("converter alias cycle through %q", name)
	}
	if conv, ok := r.converters[name]; ok {
		return []any{conv}, nil
	}
	names, ok := r.aliases[name]
	if !ok {
		return nil, fmt.Errorf("unknown converter %q", name)
	}
	seen[name] = true
	var out []any
	for _, n := range names {
		resolved, err := r.resolve(n, seen)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	delete(seen, name)
	return out, nil
}

// DefaultConverters is the process-wide registry consulted for data-field
// converter names. Seeded at initialization; callers may extend it. It has
// no teardown.
var DefaultConverters = seedConverters()

// DefaultHeaderConverters is the process-wide registry consulted for
// header-converter names.
var DefaultHeaderConverters = seedHeaderConverters()

func seedConverters() *Registry {
	r := NewRegistry()
	r.Register("integer", IntegerConverter{})
	r.Register("float", FloatConverter{})
	r.RegisterAlias("numeric", "integer", "float")
	r.Register("date", DateConverter{})
	r.Register("date_time", DateTimeConverter{})
	r.RegisterAlias("all", "date_time", "numeric")
	return r
}

func seedHeaderConverters() *Registry {
	r := NewRegistry()
	r.Register("downcase", DowncaseConverter{})
	r.Register("symbol", SymbolConverter{})
	return r
}

// RegisterConverter adds a named converter to the process-wide data
// registry.
func RegisterConverter(name string, conv Converter) {
	DefaultConverters.Register(name, conv)
}

// RegisterHeaderConverter adds a named converter to the process-wide
// header registry.
func RegisterHeaderConverter(name string, conv Converter) {
	DefaultHeaderConverters.Register(name, conv)
}

// Pipeline is an ordered list of converters applied to every field of a
// record. Conversion of a field short-circuits as soon as its current
// value is no longer a string: once converted to another type, later
// converters never see it. The first converter always runs, even on an
// absent (nil) field.
type Pipeline struct {
	convs []any // Converter or FieldConverter
}

// newPipeline resolves a mixed list of names and converter values against
// a registry. The field name is used for OptionsError reporting.
func newPipeline(specs []any, reg *Registry, field string) (*Pipeline, error) {
	var convs []any
	for _, spec := range specs {
		switch c := spec.(type) {
		case string:
			resolved, err := reg.Lookup(c)
			if err != nil {
				return nil, &OptionsError{Field: field, Message: err.Error()}
			}
			convs = append(convs, resolved...)
		case Converter:
			convs = append(convs, c)
		case FieldConverter:
			convs = append(convs, c)
		default:
			return nil, &OptionsError{Field: field, Message: fmt.Sprintf("unsupported converter type %T", spec)}
		}
	}
	return &Pipeline{convs: convs}, nil
}

// Empty reports whether the pipeline has no converters.
func (p *Pipeline) Empty() bool {
	return len(p.convs) == 0
}

// Apply converts every field of a record. line is the 1-based count of
// logical records read so far. The input slice is returned untouched when
// the pipeline is empty.
func (p *Pipeline) Apply(fields []any, line int) ([]any, error) {
	if p.Empty() {
		return fields, nil
	}
	out := make([]any, len(fields))
	for i, f := range fields {
		v, err := p.convert(f, FieldInfo{Index: i, Line: line})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *Pipeline) convert(value any, info FieldInfo) (any, error) {
	for i, c := range p.convs {
		if i > 0 {
			if _, ok := value.(string); !ok {
				break
			}
		}
		var err error
		switch c := c.(type) {
		case FieldConverter:
			value, err = c.ConvertField(value, info)
		case Converter:
			value, err = c.Convert(value)
		}
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

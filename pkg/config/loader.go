package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/openfroyo/muffler/pkg/engine"
	"github.com/openfroyo/muffler/pkg/option"
)

// Format is a sweep file format.
type Format string

const (
	// FormatCUE is CUE source (.cue), or a directory holding a CUE package.
	FormatCUE Format = "cue"

	// FormatJSON is JSON (.json), evaluated as CUE.
	FormatJSON Format = "json"

	// FormatYAML is YAML (.yaml, .yml).
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported sweep file extension: %q", filepath.Ext(path))
	}
}

var kindNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// newValidator creates a struct validator with the sweep-specific tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("kindname", func(fl validator.FieldLevel) bool {
		return kindNamePattern.MatchString(fl.Field().String())
	})
	return v
}

var defaultValidator = newValidator()

// Loader parses and validates sweep files.
type Loader struct {
	ctx            *cue.Context
	schemaRegistry *SchemaRegistry
	logger         zerolog.Logger
}

// NewLoader creates a new sweep loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		ctx:            cuecontext.New(),
		schemaRegistry: NewSchemaRegistry(),
		logger:         logger.With().Str("component", "config-loader").Logger(),
	}
}

// Load reads a sweep from a file or CUE package directory.
func Load(ctx context.Context, path string) (*SweepConfig, error) {
	return NewLoader(zerolog.Nop()).Load(ctx, path)
}

// Parse parses a sweep from raw bytes.
func Parse(ctx context.Context, data []byte, format Format) (*SweepConfig, error) {
	return NewLoader(zerolog.Nop()).Parse(ctx, data, format, "")
}

// Load reads a sweep from a file or CUE package directory.
func (l *Loader) Load(ctx context.Context, path string) (*SweepConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat sweep %s: %w", path, err)
	}

	var sweep *SweepConfig
	if info.IsDir() {
		sweep, err = l.loadDirectory(ctx, path)
	} else {
		format, ferr := FormatFromPath(path)
		if ferr != nil {
			return nil, ferr
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read sweep %s: %w", path, rerr)
		}
		sweep, err = l.Parse(ctx, data, format, path)
	}
	if err != nil {
		return nil, err
	}

	sweep.Source = path
	l.logger.Debug().
		Str("sweep", sweep.Name).
		Str("source", path).
		Int("options", len(sweep.Options)).
		Int("kinds", len(sweep.Kinds)).
		Msg("Sweep loaded")

	return sweep, nil
}

// Parse parses a sweep from raw bytes. filename is used in error positions.
func (l *Loader) Parse(ctx context.Context, data []byte, format Format, filename string) (*SweepConfig, error) {
	if filename == "" {
		filename = "sweep." + string(format)
	}

	var (
		sweep *SweepConfig
		err   error
	)
	switch format {
	case FormatCUE, FormatJSON:
		val := l.ctx.CompileBytes(data, cue.Filename(filename))
		if verr := val.Err(); verr != nil {
			return nil, convertCUEErrors(verr)
		}
		sweep, err = l.extractSweep(val)
	case FormatYAML:
		sweep, err = decodeYAML(data, filename)
	default:
		return nil, fmt.Errorf("unsupported sweep format: %q", format)
	}
	if err != nil {
		return nil, err
	}

	sweep.Source = filename
	sweep.LoadedAt = time.Now()

	if err := l.schemaRegistry.ValidateSweep(ctx, sweep); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := sweep.Validate(); err != nil {
		return nil, err
	}

	return sweep, nil
}

// loadDirectory loads a directory as a CUE package.
func (l *Loader) loadDirectory(ctx context.Context, dir string) (*SweepConfig, error) {
	buildInstances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(buildInstances) == 0 {
		return nil, ValidationErrors{{File: dir, Message: "no CUE files found"}}
	}

	inst := buildInstances[0]
	if inst.Err != nil {
		return nil, convertCUEErrors(inst.Err)
	}

	val := l.ctx.BuildInstance(inst)
	if err := val.Err(); err != nil {
		return nil, convertCUEErrors(err)
	}

	sweep, err := l.extractSweep(val)
	if err != nil {
		return nil, err
	}
	sweep.LoadedAt = time.Now()

	if err := l.schemaRegistry.ValidateSweep(ctx, sweep); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if err := sweep.Validate(); err != nil {
		return nil, err
	}

	return sweep, nil
}

// extractSweep decodes a concrete CUE value into a sweep.
func (l *Loader) extractSweep(val cue.Value) (*SweepConfig, error) {
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, convertCUEErrors(err)
	}

	raw, err := val.MarshalJSON()
	if err != nil {
		return nil, convertCUEErrors(err)
	}

	var sweep SweepConfig
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&sweep); err != nil {
		return nil, fmt.Errorf("failed to decode sweep: %w", err)
	}
	normalizeOptions(sweep.Options)

	return &sweep, nil
}

func decodeYAML(data []byte, filename string) (*SweepConfig, error) {
	var sweep SweepConfig
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, ValidationErrors{{File: filename, Message: err.Error()}}
	}
	normalizeOptions(sweep.Options)
	return &sweep, nil
}

// normalizeOptions gives option values the same Go types regardless of the
// source format: int for integers, float64 for other numbers, []any and
// map[string]any for collections.
func normalizeOptions(options []OptionConfig) {
	for i := range options {
		for j, v := range options[i].Values {
			options[i].Values[j] = normalizeValue(v)
		}
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case int64:
		return int(val)
	case uint64:
		return int(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeValue(val[k])
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Validate checks the sweep for structural problems: required fields, kind
// names, duplicate declarations and the command template syntax.
func (s *SweepConfig) Validate() error {
	var errs ValidationErrors

	if err := defaultValidator.Struct(s); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				File:    s.Source,
				Path:    fieldPath(fe.Namespace()),
				Message: fmt.Sprintf("failed on '%s' validation", fe.Tag()),
			})
		}
	}

	declared := make(map[string]bool, len(s.Kinds))
	for i, k := range s.Kinds {
		if declared[k.Name] {
			errs = append(errs, ValidationError{
				File:    s.Source,
				Path:    fmt.Sprintf("kinds[%d].name", i),
				Message: fmt.Sprintf("kind %s declared twice", k.Name),
			})
		}
		declared[k.Name] = true
	}

	if _, err := engine.ParseTemplate(s.Command); err != nil {
		errs = append(errs, ValidationError{File: s.Source, Path: "command", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// fieldPath turns a validator namespace ("SweepConfig.Options[0].Name") into
// a sweep field path ("options[0].name").
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// Build registers the declared kinds with reg and constructs the options in
// order. Options with a Param are reported under that key.
func (s *SweepConfig) Build(ctx context.Context, reg *option.Registry) ([]option.Option, error) {
	return s.BuildWith(ctx, reg, NewStarlarkEvaluator(0, 0))
}

// BuildWith is like Build but runs kind scripts with the given evaluator.
func (s *SweepConfig) BuildWith(ctx context.Context, reg *option.Registry, evaluator *StarlarkEvaluator) ([]option.Option, error) {
	scripted := make(map[option.Kind]*ScriptedKind, len(s.Kinds))
	for _, kc := range s.Kinds {
		kind, err := NewScriptedKind(ctx, kc, evaluator)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(kind.Spec(reg)); err != nil {
			return nil, fmt.Errorf("failed to register kind %s: %w", kc.Name, err)
		}
		scripted[kind.Name()] = kind
	}

	options := make([]option.Option, 0, len(s.Options))
	for i, oc := range s.Options {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			opt option.Option
			err error
		)
		if kind, ok := scripted[option.Kind(oc.Kind)]; ok {
			opt, err = kind.NewOption(ctx, reg, oc.Name, oc.Values)
		} else {
			opt, err = reg.New(option.Kind(oc.Kind), oc.Name, oc.Values)
		}
		if err != nil {
			return nil, fmt.Errorf("options[%d] %s: %w", i, oc.Name, err)
		}

		options = append(options, option.Rename(opt, oc.Param))
	}

	return options, nil
}

// convertCUEErrors converts CUE errors to ValidationErrors.
func convertCUEErrors(err error) ValidationErrors {
	var validationErrors ValidationErrors

	for _, e := range errors.Errors(err) {
		pos := errors.Positions(e)
		var file string
		var line, column int

		if len(pos) > 0 {
			file = pos[0].Filename()
			line = pos[0].Line()
			column = pos[0].Column()
		}

		validationErrors = append(validationErrors, ValidationError{
			File:    file,
			Line:    line,
			Column:  column,
			Path:    strings.Join(e.Path(), "."),
			Message: errors.Details(e, nil),
		})
	}

	return validationErrors
}

package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// SweepSchema is the name of the built-in sweep schema.
const SweepSchema = "sweep"

// SchemaRegistry manages CUE schemas for validation.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]schemaEntry
	mu      sync.RWMutex
}

// schemaEntry is a compiled schema and the definition data is unified with.
type schemaEntry struct {
	value      cue.Value
	definition string
}

// NewSchemaRegistry creates a new schema registry with the built-in sweep
// schema.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]schemaEntry),
	}

	if err := sr.RegisterSchema(SweepSchema, "#Sweep", builtinSweepSchema); err != nil {
		panic(err)
	}

	return sr
}

// RegisterSchema compiles schema and registers it under name. Data validated
// against name is unified with the given definition (e.g., "#Sweep").
func (sr *SchemaRegistry) RegisterSchema(name, definition, schema string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(schema, cue.Filename(name+".cue"))
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	def := val.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return fmt.Errorf("schema %s does not define %s", name, definition)
	}

	sr.schemas[name] = schemaEntry{value: val, definition: definition}
	return nil
}

// GetSchema retrieves the definition value of a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	entry, ok := sr.schemas[name]
	if !ok {
		return cue.Value{}, false
	}
	return entry.value.LookupPath(cue.ParsePath(entry.definition)), true
}

// ValidateAgainstSchema validates data against a named schema.
func (sr *SchemaRegistry) ValidateAgainstSchema(ctx context.Context, schemaName string, data any) error {
	schema, ok := sr.GetSchema(schemaName)
	if !ok {
		return fmt.Errorf("schema %s not found", schemaName)
	}

	sr.mu.RLock()
	dataVal := sr.ctx.Encode(data)
	sr.mu.RUnlock()
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	unified := schema.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ValidateSweep validates a sweep against the sweep schema.
func (sr *SchemaRegistry) ValidateSweep(ctx context.Context, sweep *SweepConfig) error {
	return sr.ValidateAgainstSchema(ctx, SweepSchema, sweep)
}

// ListSchemas returns all registered schema names, sorted.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const builtinSweepSchema = `
#Kind: {
	// Name is the kind name as it appears in templates.
	name: string & =~"^[A-Za-z_][A-Za-z0-9_]*$"

	// Parents are the kinds this kind specializes.
	parents?: [...string & !=""]

	description?: string

	// Joiner separates fragments of this kind.
	joiner?: string

	// Script is Starlark source.
	script?: string
}

#Option: {
	name:   string & !=""
	kind:   string & !=""
	values?: [...]
	param?: string
}

#Sweep: {
	name:         string & !=""
	description?: string

	// Command is the command template.
	command:   string
	progress?: bool
	kinds?: [...#Kind]
	options: [#Option, ...#Option]
}
`

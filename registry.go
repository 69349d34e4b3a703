package scriptbridge

import (
	"context"
	"fmt"
	"sync"
)

// IntrospectionCategory is the category name under which the built-in
// list_functions and help functions are reported.
const IntrospectionCategory = "introspection"

// Registry groups host functions into named categories and bulk-registers
// them onto an engine together with the introspection builtins. Category
// names are unique and write-once; categories keep insertion order.
type Registry struct {
	mu         sync.Mutex
	categories []category
}

type category struct {
	name      string
	functions []Function
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddCategory registers a named group of functions. The name must be
// non-empty and not yet present; categories cannot be replaced or extended
// after the fact.
func (r *Registry) AddCategory(name string, functions []Function) error {
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}
	}
	fns := make([]Function, len(functions))
	copy(fns, functions)
	r.categories = append(r.categories, category{name: name, functions: fns})
	return nil
}

// AllFunctions flattens every category's functions in insertion order.
func (r *Registry) AllFunctions() []Function {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Function
	for _, c := range r.categories {
		out = append(out, c.functions...)
	}
	return out
}

// SchemasByCategory returns the schema view per category, for host-side
// introspection and export. It is never exposed to the interpreter directly;
// scripts reach the same data through the list_functions builtin.
func (r *Registry) SchemasByCategory() map[string][]FunctionSchema {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]FunctionSchema, len(r.categories))
	for _, c := range r.categories {
		schemas := make([]FunctionSchema, 0, len(c.functions))
		for _, fn := range c.functions {
			schemas = append(schemas, fn.Schema)
		}
		out[c.name] = schemas
	}
	return out
}

// RegisterAll registers every category function onto the engine, plus the two
// introspection builtins. Call it before each execution: registrations may
// change between runs, and Register replaces by name.
func (r *Registry) RegisterAll(e *Engine) error {
	for _, fn := range r.AllFunctions() {
		if err := e.Register(fn); err != nil {
			return err
		}
	}
	for _, fn := range r.builtins() {
		if err := e.Register(fn); err != nil {
			return err
		}
	}
	return nil
}

// introspectionSchemas returns the schemas of the two builtins, in the order
// they are reported under the introspection category.
func introspectionSchemas() []FunctionSchema {
	return []FunctionSchema{
		{
			Name:        "list_functions",
			Description: "List every callable host function, grouped by category.",
		},
		{
			Name:        "help",
			Description: "Describe one host function by name.",
			Params: []Param{
				{Name: "name", Type: TypeString, Required: true, Description: "Function name to describe"},
			},
		},
	}
}

// builtins pairs the introspection schemas with handlers that read the
// registry live, so a script always sees the current registrations.
func (r *Registry) builtins() []Function {
	schemas := introspectionSchemas()
	return []Function{
		{Schema: schemas[0], Handler: r.listFunctions},
		{Schema: schemas[1], Handler: r.help},
	}
}

// listFunctions returns {tools: {category: [summary, ...]}}, including the
// introspection category with exactly its own two entries.
func (r *Registry) listFunctions(_ context.Context, _ map[string]any) (any, error) {
	byCategory := make(map[string]any)
	for name, schemas := range r.SchemasByCategory() {
		byCategory[name] = summaries(schemas)
	}
	byCategory[IntrospectionCategory] = summaries(introspectionSchemas())
	return map[string]any{"tools": byCategory}, nil
}

// help linear-searches every category and then the introspection schemas for
// an exact name match. A miss returns the literal "Unknown function: <name>"
// string as an ordinary value: scripts expect a plain string here, never a
// raised error.
func (r *Registry) help(_ context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	for _, fn := range r.AllFunctions() {
		if fn.Schema.Name == name {
			return fn.Schema.Summary(), nil
		}
	}
	for _, schema := range introspectionSchemas() {
		if schema.Name == name {
			return schema.Summary(), nil
		}
	}
	return "Unknown function: " + name, nil
}

func summaries(schemas []FunctionSchema) []any {
	out := make([]any, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Summary())
	}
	return out
}

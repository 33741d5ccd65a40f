package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

// Tool is a named callable exposed to the listening session. Handlers take a
// typed parameter struct; the argument schema advertised to the session is
// reflected from that struct.
type Tool struct {
	Name        string
	Description string

	// Timeout bounds a single execution. Zero means no deadline beyond the
	// caller's context.
	Timeout time.Duration

	schema *jsonschema.Schema
	speak  func(payload map[string]any) string
	run    func(ctx context.Context, args map[string]any) (map[string]any, error)
}

type Option func(*Tool)

// WithTimeout sets the per-execution deadline for the tool.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Tool) { t.Timeout = timeout }
}

// WithSpokenResult marks the tool's successful results for delivery through
// the narration handoff. The callback derives the spoken script from the
// result payload; returning "" leaves the result unspoken.
func WithSpokenResult(speak func(payload map[string]any) string) Option {
	return func(t *Tool) { t.speak = speak }
}

// New builds a tool around a typed handler. The parameter struct is reflected
// into a JSON schema once at construction; arguments arriving from the
// session are decoded into the struct before each call.
func New[T any](name, description string, handler func(ctx context.Context, params T) (map[string]any, error), opts ...Option) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var zero T

	tool := Tool{
		Name:        name,
		Description: description,
		schema:      reflector.Reflect(&zero),
		run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if args == nil {
				args = map[string]any{}
			}
			raw, err := json.Marshal(args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode arguments: %w", err)
			}
			var params T
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, fmt.Errorf("invalid arguments for tool %q: %w", name, err)
			}
			return handler(ctx, params)
		},
	}

	for _, opt := range opts {
		opt(&tool)
	}
	return tool
}

// Run executes the tool with the raw argument mapping received from the
// session.
func (t Tool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	if t.run == nil {
		return nil, fmt.Errorf("tool %q has no handler", t.Name)
	}
	return t.run(ctx, args)
}

// SpokenScript derives the narration script from a successful result payload.
// Empty means the result is returned to the session verbatim instead of being
// narrated.
func (t Tool) SpokenScript(payload map[string]any) string {
	if t.speak == nil || payload == nil {
		return ""
	}
	return t.speak(payload)
}

// Declaration describes the tool to a live session. Schema is nil for tools
// that take no arguments.
type Declaration struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Declaration returns the wire-facing description of the tool.
func (t Tool) Declaration() Declaration {
	decl := Declaration{Name: t.Name, Description: t.Description}
	if t.schema != nil && t.schema.Properties != nil && t.schema.Properties.Len() > 0 {
		decl.Schema = t.schema
	}
	return decl
}

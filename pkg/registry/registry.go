// Package registry manages named component definitions and their message
// types, so out-of-process adapters (HTTP, MCP) can mount components and
// address typed messages to them by name.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Registry manages the available component definitions.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]ports.Definition
	messages map[string]map[string]reflect.Type
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		defs:     make(map[string]ports.Definition),
		messages: make(map[string]map[string]reflect.Type),
	}
}

// Register adds a component definition. Re-registering a name overwrites the
// previous definition.
func (r *Registry) Register(def ports.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("component definition has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (ports.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return ports.Definition{}, fmt.Errorf("%w: %q", domain.ErrComponentNotFound, name)
	}
	return def, nil
}

// Components returns the registered component names, in no particular order.
func (r *Registry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	return out
}

// RegisterMessage associates a message name with a prototype value for a
// component, enabling DecodeMessage. The prototype is typically a zero value
// of the component's message struct, e.g. SetToggle{}.
func (r *Registry) RegisterMessage(component, name string, prototype domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages[component] == nil {
		r.messages[component] = make(map[string]reflect.Type)
	}
	r.messages[component][name] = reflect.TypeOf(prototype)
}

// DecodeMessage builds a typed message from a raw payload, as received on a
// wire boundary. The payload map is decoded into a fresh value of the
// registered prototype's type; a nil payload yields the zero message.
func (r *Registry) DecodeMessage(component, name string, payload map[string]any) (domain.Message, error) {
	r.mu.RLock()
	typ, ok := r.messages[component][name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: component %q has no message %q", domain.ErrMessageNotRegistered, component, name)
	}

	target := reflect.New(typ)
	if payload != nil {
		if err := mapstructure.Decode(payload, target.Interface()); err != nil {
			return nil, fmt.Errorf("decode message %q: %w", name, err)
		}
	}
	return target.Elem().Interface(), nil
}

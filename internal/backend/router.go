package backend

import (
	"context"
	"fmt"
	"path"
	"strings"

	"chatbot-api/internal/config"
)

// Router resolves a requested model name to the backend that serves it.
type Router struct {
	table         config.RoutingTable
	backends      map[string]Backend
	defaultModel  string
	modelsBackend string
}

// NewRouter validates table against the registered backends. Every backend
// named by a rule, the default and the listing backend must be registered
// and every pattern must be a valid glob.
func NewRouter(table config.RoutingTable, defaultModel, modelsBackend string, backends ...Backend) (*Router, error) {
	r := &Router{
		table:         table,
		backends:      make(map[string]Backend, len(backends)),
		defaultModel:  strings.TrimSpace(defaultModel),
		modelsBackend: strings.TrimSpace(modelsBackend),
	}
	for _, b := range backends {
		r.backends[b.Name()] = b
	}
	if table.Default != config.BackendNone {
		if _, ok := r.backends[table.Default]; !ok {
			return nil, fmt.Errorf("routing: default backend %q is not configured", table.Default)
		}
	}
	for _, rule := range table.Routes {
		if _, err := path.Match(rule.Match, ""); err != nil {
			return nil, fmt.Errorf("routing: bad pattern %q: %w", rule.Match, err)
		}
		if _, ok := r.backends[rule.Backend]; !ok {
			return nil, fmt.Errorf("routing: rule %q names unknown backend %q", rule.Match, rule.Backend)
		}
	}
	if _, ok := r.backends[r.modelsBackend]; !ok {
		return nil, fmt.Errorf("routing: models backend %q is not configured", r.modelsBackend)
	}
	return r, nil
}

// Resolve returns the backend for model and the model name to send it. An
// empty model is replaced by the default model.
func (r *Router) Resolve(model string) (Backend, string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = r.defaultModel
	}
	for _, rule := range r.table.Routes {
		if ok, _ := path.Match(rule.Match, model); ok {
			return r.backends[rule.Backend], model, nil
		}
	}
	if b, ok := r.backends[r.table.Default]; ok {
		return b, model, nil
	}
	return nil, model, fmt.Errorf("%w: %s", ErrUnknownModel, model)
}

// Models lists the models of the listing backend followed by the routing
// table's advertised models, without duplicates.
func (r *Router) Models(ctx context.Context) ([]string, error) {
	listed, err := r.backends[r.modelsBackend].ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelEnumeration, err)
	}
	seen := make(map[string]struct{}, len(listed)+len(r.table.Models))
	out := make([]string, 0, len(listed)+len(r.table.Models))
	for _, group := range [][]string{listed, r.table.Models} {
		for _, name := range group {
			if _, dup := seen[name]; dup || name == "" {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out, nil
}

package view

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/logging"
)

// Renderer turns a model tree into a response body.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, model *Model) (string, error)
}

// TemplateRenderer renders models with html/template. Children render first
// and their output is exposed to the parent under their capture name.
type TemplateRenderer struct {
	resolver Resolver
	funcs    template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewTemplateRenderer creates a TemplateRenderer.
func NewTemplateRenderer(resolver Resolver, funcs template.FuncMap) *TemplateRenderer {
	return &TemplateRenderer{
		resolver: resolver,
		funcs:    funcs,
		cache:    make(map[string]*template.Template),
	}
}

// Name implements Renderer.
func (r *TemplateRenderer) Name() string { return "template" }

// ContentType implements Renderer.
func (r *TemplateRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Render implements Renderer.
func (r *TemplateRenderer) Render(ctx context.Context, model *Model) (string, error) {
	data := model.Variables().Map()
	for _, child := range model.Children() {
		out, err := r.Render(ctx, child)
		if err != nil {
			return "", err
		}
		if child.CaptureTo() != "" {
			data[child.CaptureTo()] = template.HTML(out) //nolint:gosec // output of our own escaped templates
		}
	}

	name := model.Template()
	if name == "" {
		return "", errors.NewRenderError(r.Name(), "", errors.NewValidationError("template", name, "model has no template"))
	}
	tmpl, err := r.lookup(name)
	if err != nil {
		return "", errors.WrapRender(r.Name(), name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapRender(r.Name(), name, err)
	}
	logging.FromContext(ctx).Debug().Str("template", name).Int("bytes", buf.Len()).Msg("Rendered template")
	return buf.String(), nil
}

func (r *TemplateRenderer) lookup(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, err := r.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Funcs(r.funcs).Parse(src.Source)
	if err != nil {
		return nil, errors.WrapParse("template", name, err)
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// JSONRenderer encodes Model.Data as JSON.
type JSONRenderer struct {
	Indent bool
}

// Name implements Renderer.
func (r *JSONRenderer) Name() string { return "json" }

// ContentType implements Renderer.
func (r *JSONRenderer) ContentType() string { return "application/json" }

// Render implements Renderer.
func (r *JSONRenderer) Render(_ context.Context, model *Model) (string, error) {
	var (
		out []byte
		err error
	)
	if r.Indent {
		out, err = json.MarshalIndent(model.Data(), "", "  ")
	} else {
		out, err = json.Marshal(model.Data())
	}
	if err != nil {
		return "", errors.WrapRender(r.Name(), model.Template(), err)
	}
	return string(out), nil
}

// YAMLRenderer encodes Model.Data as YAML.
type YAMLRenderer struct{}

// Name implements Renderer.
func (r *YAMLRenderer) Name() string { return "yaml" }

// ContentType implements Renderer.
func (r *YAMLRenderer) ContentType() string { return "application/yaml" }

// Render implements Renderer.
func (r *YAMLRenderer) Render(_ context.Context, model *Model) (string, error) {
	out, err := yaml.Marshal(model.Data())
	if err != nil {
		return "", errors.WrapRender(r.Name(), model.Template(), err)
	}
	return string(out), nil
}

package view

import (
	"context"
	"mime"
	"strings"

	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
)

// View selects a renderer for each request and writes the rendered model
// into the response.
type View struct {
	fallback Renderer
	byType   map[string]Renderer
	byFormat map[string]Renderer
}

// New creates a View that uses fallback when negotiation finds nothing.
func New(fallback Renderer) *View {
	v := &View{
		fallback: fallback,
		byType:   make(map[string]Renderer),
		byFormat: make(map[string]Renderer),
	}
	v.Register(fallback)
	return v
}

// Register makes r selectable by its media type and its name as a
// ?format= value.
func (v *View) Register(r Renderer, mediaTypes ...string) {
	base, _, _ := mime.ParseMediaType(r.ContentType())
	v.byType[base] = r
	for _, mt := range mediaTypes {
		v.byType[mt] = r
	}
	v.byFormat[r.Name()] = r
}

// Select picks the renderer for req: an explicit ?format= wins, then the
// first Accept entry with a registered renderer, then the fallback.
func (v *View) Select(req message.Request) Renderer {
	if req == nil {
		return v.fallback
	}
	if f := req.Query("format"); f != "" {
		if r, ok := v.byFormat[f]; ok {
			return r
		}
	}
	for _, part := range strings.Split(req.Header().Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if r, ok := v.byType[mt]; ok {
			return r
		}
	}
	return v.fallback
}

// Render renders model for req into resp. The Content-Type header is only
// set when the response has none.
func (v *View) Render(ctx context.Context, model *Model, req message.Request, resp message.Response) error {
	if model == nil {
		return errors.NewRenderError("view", "", errors.NewValidationError("model", nil, "no view model"))
	}
	r := v.Select(req)
	out, err := r.Render(ctx, model)
	if err != nil {
		return err
	}
	resp.SetContent(out)
	if resp.Header().Get("Content-Type") == "" {
		resp.Header().Set("Content-Type", r.ContentType())
	}
	return nil
}

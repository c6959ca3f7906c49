package config

import (
	"os"
	"path/filepath"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

// ApplicationOptions converts the view_manager, http_methods and routes
// settings into application options. A nil resolver is returned when no
// template directories are configured so the caller can supply its own.
func (c *Config) ApplicationOptions() ([]waypoint.Option, view.Resolver, error) {
	vm := c.ViewManager
	opts := []waypoint.Option{
		waypoint.WithLayoutTemplate(vm.Layout),
		waypoint.WithExceptionTemplate(vm.ExceptionTemplate),
		waypoint.WithNotFoundTemplate(vm.NotFoundTemplate),
		waypoint.WithDisplayExceptions(vm.DisplayExceptions),
		waypoint.WithDisplayNotFoundReason(vm.DisplayNotFoundReason),
		waypoint.WithHTTPMethods(c.HTTPMethods.Enabled, c.HTTPMethods.Allowed...),
	}
	if vm.ExceptionMessage != "" {
		opts = append(opts, waypoint.WithExceptionMessage(vm.ExceptionMessage))
	}

	if c.Routes != "" {
		r, err := loadRoutes(c.Routes)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, waypoint.WithRouter(r))
	}

	resolver, err := c.resolver()
	if err != nil {
		return nil, nil, err
	}
	return opts, resolver, nil
}

func loadRoutes(file string) (*router.Router, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.WrapIO("open", file, err)
	}
	defer f.Close()
	return router.Load(f)
}

// resolver builds prefix resolvers first and the plain path stack last,
// mirroring the aggregate the view manager assembles.
func (c *Config) resolver() (view.Resolver, error) {
	vm := c.ViewManager
	if len(vm.TemplatePathStack) == 0 && len(vm.PrefixTemplatePathStack) == 0 {
		return nil, nil
	}
	root := os.DirFS("/")
	agg := view.NewAggregateResolver()

	if len(vm.PrefixTemplatePathStack) > 0 {
		prefixes := make(map[string]view.Resolver, len(vm.PrefixTemplatePathStack))
		for prefix, dir := range vm.PrefixTemplatePathStack {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, errors.NewConfigError("view_manager", "bad prefix template path "+dir, err)
			}
			prefixes[prefix] = view.NewPathStack(root, filepath.ToSlash(abs))
		}
		agg.Attach(view.NewPrefixResolver(prefixes))
	}

	if len(vm.TemplatePathStack) > 0 {
		stack := view.NewPathStack(root)
		for _, dir := range vm.TemplatePathStack {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, errors.NewConfigError("view_manager", "bad template path "+dir, err)
			}
			stack.AddPath(filepath.ToSlash(abs))
		}
		agg.Attach(stack)
	}

	logging.Debug().
		Strs("template_path_stack", vm.TemplatePathStack).
		Int("prefixes", len(vm.PrefixTemplatePathStack)).
		Msg("Template resolver configured")
	return agg, nil
}

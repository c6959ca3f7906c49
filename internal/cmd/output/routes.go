package output

import (
	"strings"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/router"
)

// RoutesToData converts a route table to table data.
func RoutesToData(routes []router.Route) Data {
	data := Data{
		Headers:         []string{"Name", "Path", "Methods", "Handler", "Action"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, r := range routes {
		methods := "*"
		if len(r.Methods) > 0 {
			methods = strings.Join(r.Methods, ",")
		}
		handler := r.Defaults[constants.DefaultHandlerParamName]
		if handler == "" {
			handler = r.Defaults[constants.FallbackHandlerParamName]
		}
		action := r.Defaults[constants.DefaultActionParamName]
		if action == "" {
			action = "-"
		}
		data.Rows = append(data.Rows, []string{r.Name, r.Path, methods, handler, action})
	}
	return data
}

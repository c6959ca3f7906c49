package view

import "github.com/agentstation/waypoint/pkg/constants"

// Model is a node in the view tree: variables, the template that renders
// them and child models captured into named variables of the parent.
type Model struct {
	vars      *Variables
	template  string
	children  []*Model
	captureTo string
	terminal  bool
}

// NewModel creates a Model capturing into "content".
func NewModel(vars map[string]any) *Model {
	return &Model{
		vars:      NewVariables(vars),
		captureTo: constants.DefaultContentCapture,
	}
}

// ModelFromVariables wraps existing variables without copying them.
func ModelFromVariables(vars *Variables) *Model {
	if vars == nil {
		vars = NewVariables(nil)
	}
	return &Model{vars: vars, captureTo: constants.DefaultContentCapture}
}

// Variable returns a variable, or nil.
func (m *Model) Variable(name string) any { return m.vars.Get(name) }

// SetVariable assigns a variable.
func (m *Model) SetVariable(name string, value any) { m.vars.Set(name, value) }

// Variables returns the model's variables.
func (m *Model) Variables() *Variables { return m.vars }

// SetVariables replaces all variables.
func (m *Model) SetVariables(vars *Variables) {
	if vars == nil {
		vars = NewVariables(nil)
	}
	m.vars = vars
}

// Template returns the template name.
func (m *Model) Template() string { return m.template }

// SetTemplate sets the template name.
func (m *Model) SetTemplate(name string) { m.template = name }

// AddChild appends a child rendered into captureTo of this model. An empty
// captureTo keeps the child's own setting.
func (m *Model) AddChild(child *Model, captureTo string) {
	if captureTo != "" {
		child.captureTo = captureTo
	}
	m.children = append(m.children, child)
}

// Children returns the child models.
func (m *Model) Children() []*Model { return m.children }

// HasChildren reports whether any children were added.
func (m *Model) HasChildren() bool { return len(m.children) > 0 }

// ClearChildren removes all children.
func (m *Model) ClearChildren() { m.children = nil }

// CaptureTo returns the parent variable this model renders into.
func (m *Model) CaptureTo() string { return m.captureTo }

// SetCaptureTo changes the capture variable.
func (m *Model) SetCaptureTo(name string) { m.captureTo = name }

// Terminal reports whether the model must not be wrapped in a layout.
func (m *Model) Terminal() bool { return m.terminal }

// SetTerminal marks the model as terminal.
func (m *Model) SetTerminal(terminal bool) { m.terminal = terminal }

// Data flattens the tree into plain data for structured renderers. A model
// that only wraps a single child (a layout) is unwrapped; other children
// are nested under their capture names. Error values become their message.
func (m *Model) Data() map[string]any {
	if m.vars.Len() == 0 && len(m.children) == 1 {
		return m.children[0].Data()
	}
	data := m.vars.Map()
	for k, v := range data {
		if err, ok := v.(error); ok {
			data[k] = err.Error()
		}
	}
	for _, child := range m.children {
		if child.captureTo == "" {
			continue
		}
		data[child.captureTo] = child.Data()
	}
	return data
}

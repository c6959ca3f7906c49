package events

// ResponseCollection holds the values returned by the listeners of one
// trigger, in execution order.
type ResponseCollection struct {
	values  []any
	stopped bool
}

func (r *ResponseCollection) push(v any) {
	r.values = append(r.values, v)
}

// Stopped reports whether the trigger ended before running every listener.
func (r *ResponseCollection) Stopped() bool { return r.stopped }

// Len returns the number of listeners that ran.
func (r *ResponseCollection) Len() int { return len(r.values) }

// First returns the first listener's return value, or nil.
func (r *ResponseCollection) First() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[0]
}

// Last returns the last listener's return value, or nil.
func (r *ResponseCollection) Last() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[len(r.values)-1]
}

// Values returns all collected values.
func (r *ResponseCollection) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

package navigator

// Registry keeps navigators alive for as long as their owner needs them to
// react to events. The zero value is ready to use.
type Registry struct {
	navigators []*Navigator
}

// Track adds n to the registry.
func (r *Registry) Track(n *Navigator) {
	r.navigators = append(r.navigators, n)
}

// Len returns the number of tracked navigators.
func (r *Registry) Len() int { return len(r.navigators) }

// All returns the tracked navigators in insertion order.
func (r *Registry) All() []*Navigator {
	return append([]*Navigator(nil), r.navigators...)
}

// Clear disconnects every tracked navigator and drops the references.
func (r *Registry) Clear() {
	for _, n := range r.navigators {
		n.Close()
	}
	r.navigators = nil
}

package fsm

// Walk visits root and its descendants depth-first, in child order.
// Returning false from fn skips the children of the visited state.
func Walk(root State, fn func(State) bool) {
	if root == nil || !fn(root) {
		return
	}
	if c, ok := root.(Container); ok {
		for _, child := range c.States() {
			Walk(child, fn)
		}
	}
}

// Instrument applies opts to root and every state below it.
// States generated later by a Proxy inherit from the proxy instead.
func Instrument(root State, opts ...Option) {
	Walk(root, func(s State) bool {
		s.lifecycle().Apply(opts...)
		return true
	})
}

// Inherit makes child (and its descendants) use parent's clock, logger, reporter and
// observer where they did not configure their own.
func Inherit(parent, child State) {
	from := parent.lifecycle()
	Walk(child, func(s State) bool {
		inherit(from, s.lifecycle())
		return true
	})
}

// Find returns the first state (depth-first) named name.
func Find(root State, name string) (State, bool) {
	var found State
	Walk(root, func(s State) bool {
		if found != nil {
			return false
		}
		if s.Name() == name {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

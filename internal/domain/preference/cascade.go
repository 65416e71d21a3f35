package preference

import "fmt"

// ApplyToggle returns the state produced by setting key to value.
//
// Switching a group parent off switches all of its children off; switching
// it on leaves the children untouched. Switching a child on switches its
// parent on. Any other change affects only key itself. The input state is
// never modified.
//
// key must be a declared Key; an unknown key is a programming error and
// panics. Validate untrusted input with ParseKey first.
func ApplyToggle(state State, key Key, value bool) State {
	if !IsKnown(key) {
		panic(fmt.Sprintf("preference: unknown key %q", key))
	}

	next := state.Clone()
	next[key] = value

	if children, ok := childrenByParent[key]; ok {
		if !value {
			for _, child := range children {
				next[child] = false
			}
		}
		return next
	}

	if parent, ok := parentByChild[key]; ok && value && !next[parent] {
		next[parent] = true
	}

	return next
}

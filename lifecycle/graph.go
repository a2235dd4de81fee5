package lifecycle

// graphView is the read-only dependency view the ordering walks traverse.
// It narrows the Registry to its two edge queries so a transition cannot
// accidentally touch registration state.
type graphView struct {
	reg Registry
}

// dependenciesOf returns the direct dependencies of name, used to order
// start passes. Unknown names yield an empty slice.
func (g graphView) dependenciesOf(name string) []string {
	return g.reg.DependenciesOf(name)
}

// dependentsOf returns the direct dependents of name, used to order stop
// passes. Unknown names yield an empty slice.
func (g graphView) dependentsOf(name string) []string {
	return g.reg.DependentsOf(name)
}

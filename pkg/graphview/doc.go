// Package graphview turns one API's step descriptors into the abstract graph
// handed to a layout engine.
//
// Each step gets a style class and a display label:
//
//	class     when
//	terminal  terminal is set (regardless of required)
//	optional  required is false
//	required  otherwise
//
// Labels are composed in a fixed order, each clause only when it applies:
//
//	fetchUser
//	→ UserProfile
//	(optional)
//
// Terminal steps are marked by class only. Set [Options.MarkTerminal] to also
// append "★ terminal" to the label, and [Options.Detailed] to append the
// step timeout.
//
// [Build] fails with a DANGLING_EDGE error when an edge names an unknown
// step; no partial graph is returned. Cycles are not checked by Build, use
// [Graph.Validate].
package graphview

// Package transform prepares a step DAG for layered drawing.
//
// # Layer Assignment
//
// [AssignLayers] computes each step's rank as the length of the longest path
// from any entry step, so every dependency is drawn above (or left of) the
// steps consuming it.
//
// # Cycle Breaking
//
// [BreakCycles] removes back edges found by depth-first search. Descriptor
// feeds should be acyclic, but a viewer must still draw a malformed graph
// rather than refuse it, so the layered engine breaks cycles on a clone
// before layering.
//
// # Usage
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
package transform

// Package interceptor composes the request pipeline shown above each API
// graph: Request, then the API's interceptors by ascending priority, then
// Execution.
//
// # Usage
//
//	stages := interceptor.Build(api.Interceptors)
//	if len(stages) == 0 {
//	    // no interceptors: hide the pipeline panel
//	}
//	fmt.Println(interceptor.Format(stages))
//	// Request → Log #1 → Auth #2 → Execution
package interceptor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/loomviz/pkg/descriptor"
)

// Suffix is the conventional role suffix stripped from interceptor names for
// display.
const Suffix = "Interceptor"

// Kind identifies the role of a pipeline stage.
type Kind int

const (
	// Request is the entry stage, always first.
	Request Kind = iota
	// Interceptor is a named pre-processing stage.
	Interceptor
	// Execution is the graph execution stage, always last.
	Execution
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Request:
		return "request"
	case Interceptor:
		return "interceptor"
	case Execution:
		return "execution"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name for JSON views.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{Request, Interceptor, Execution} {
		if string(b) == c.String() {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown stage kind %q", b)
}

// Stage is one step of the request pipeline. Name, DisplayName and Order are
// only set for Interceptor stages.
type Stage struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Order       int    `json:"order"`
}

// Label returns the text drawn inside the stage box.
func (s Stage) Label() string {
	switch s.Kind {
	case Request:
		return "Request"
	case Execution:
		return "Execution"
	default:
		return s.DisplayName
	}
}

// Badge returns the priority badge ("#1") for interceptor stages and "" for
// the fixed stages.
func (s Stage) Badge() string {
	if s.Kind != Interceptor {
		return ""
	}
	return "#" + strconv.Itoa(s.Order)
}

// Build returns the pipeline for an API's interceptors.
//
// Interceptors are sorted ascending by Order with a stable sort, so equal
// orders keep their input order. An empty input yields an empty result,
// meaning "no pipeline"; otherwise the result has len(refs)+2 stages.
// The input slice is not modified.
func Build(refs []descriptor.InterceptorRef) []Stage {
	if len(refs) == 0 {
		return []Stage{}
	}

	sorted := slices.Clone(refs)
	slices.SortStableFunc(sorted, func(a, b descriptor.InterceptorRef) int {
		return a.Order - b.Order
	})

	stages := make([]Stage, 0, len(sorted)+2)
	stages = append(stages, Stage{Kind: Request})
	for _, ref := range sorted {
		stages = append(stages, Stage{
			Kind:        Interceptor,
			Name:        ref.Name,
			DisplayName: DisplayName(ref.Name),
			Order:       ref.Order,
		})
	}
	return append(stages, Stage{Kind: Execution})
}

// DisplayName strips a trailing "Interceptor" (any case) from name.
// A name that is exactly the suffix is returned unchanged so the label is
// never empty.
func DisplayName(name string) string {
	if len(name) <= len(Suffix) {
		return name
	}
	cut := len(name) - len(Suffix)
	if strings.EqualFold(name[cut:], Suffix) {
		return name[:cut]
	}
	return name
}

// Format renders the pipeline on one line, e.g.
// "Request → Log #1 → Auth #2 → Execution". An empty pipeline renders "".
func Format(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.Label()
		if b := s.Badge(); b != "" {
			parts[i] += " " + b
		}
	}
	return strings.Join(parts, " → ")
}

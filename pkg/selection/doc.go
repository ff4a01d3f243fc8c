// Package selection drives what a render surface shows.
//
// A [Controller] moves through three states:
//
//	Empty ──Load──▶ Listed ──Select(i)──▶ Selected(i)
//	                  ▲                       │
//	                  └────────Load───────────┘
//
// A successful Load lists the feed and selects the first API. Select builds
// everything a surface needs for one API in one step: the interceptor
// pipeline, the classified step graph, its layout and the fit transform.
// The result is a [View], handed to the [Renderer] after clearing it.
//
// Failures are scoped to the operation that caused them:
//
//   - A failed Load leaves the controller as it was and is reported
//     through [Status].
//   - Selecting an index outside the feed returns INDEX_OUT_OF_RANGE and
//     changes nothing.
//   - A graph that cannot be built (for example a dangling edge) still
//     selects the API; the [View] carries the error so the surface can show
//     it while the pipeline remains visible.
//
// The controller is safe for concurrent use. Selection is synchronous: a
// caller never observes a half-built view.
package selection

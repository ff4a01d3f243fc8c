// Package descriptor defines the API descriptor feed consumed by loomviz.
//
// A feed is an ordered JSON array with one [API] per registered endpoint. Each
// API carries the interceptors that run before request handling and the graph
// of processing steps that produce the response:
//
//	[
//	  {
//	    "method": "GET",
//	    "path": "/users/{id}/dashboard",
//	    "type": "builder",
//	    "responseType": "UserDashboardResponse",
//	    "interceptors": [{"name": "ApiKeyInterceptor", "order": 1}],
//	    "nodes": [{"name": "fetchUser", "outputType": "UserProfile", "required": true, "terminal": false}],
//	    "edges": [{"from": "fetchUser", "to": "assemble"}]
//	  }
//	]
//
// Descriptors are immutable once decoded and are identified by their position
// in the feed; there is no separate primary key.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// API type tags observed in feeds.
const (
	TypeBuilder     = "builder"
	TypePassthrough = "passthrough"
)

// API describes one registered endpoint.
type API struct {
	Method       string           `json:"method" bson:"method"`
	Path         string           `json:"path" bson:"path"`
	Type         string           `json:"type" bson:"type"`
	RequestType  string           `json:"requestType,omitempty" bson:"request_type,omitempty"`
	ResponseType string           `json:"responseType,omitempty" bson:"response_type,omitempty"`
	Interceptors []InterceptorRef `json:"interceptors" bson:"interceptors"`
	Nodes        []Node           `json:"nodes" bson:"nodes"`
	Edges        []Edge           `json:"edges" bson:"edges"`
}

// InterceptorRef names an interceptor and its priority. Lower orders run first;
// orders need not be unique or contiguous.
type InterceptorRef struct {
	Name  string `json:"name" bson:"name"`
	Order int    `json:"order" bson:"order"`
}

// Node is one processing step. Name is unique within an API and is the
// step's graph identity.
type Node struct {
	Name       string `json:"name" bson:"name"`
	OutputType string `json:"outputType,omitempty" bson:"output_type,omitempty"`
	Required   bool   `json:"required" bson:"required"`
	Terminal   bool   `json:"terminal" bson:"terminal"`
	TimeoutMs  int64  `json:"timeoutMs,omitempty" bson:"timeout_ms,omitempty"`
}

// Edge is a data-flow dependency: To consumes the output of From.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Title returns the header text for the API, e.g. "GET /users → UserList".
func (a API) Title() string {
	t := a.Method + " " + a.Path
	if a.ResponseType != "" {
		t += " → " + a.ResponseType
	}
	return t
}

// IsPassthrough reports whether the API proxies to an upstream service
// instead of running a step graph.
func (a API) IsPassthrough() bool { return a.Type == TypePassthrough }

// =============================================================================
// Decoding
// =============================================================================

// Decode reads a JSON feed from r.
// A JSON null decodes to an empty feed, and missing interceptor, node or
// edge lists decode as empty slices so callers never see nil.
func Decode(r io.Reader) ([]API, error) {
	var apis []API
	if err := json.NewDecoder(r).Decode(&apis); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return normalize(apis), nil
}

// Unmarshal decodes a JSON feed held in memory.
func Unmarshal(data []byte) ([]API, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes a JSON feed stored at path.
func ReadFile(path string) ([]API, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Marshal encodes a feed as indented JSON.
func Marshal(apis []API) ([]byte, error) {
	return json.MarshalIndent(normalize(apis), "", "  ")
}

func normalize(apis []API) []API {
	if apis == nil {
		return []API{}
	}
	for i := range apis {
		if apis[i].Interceptors == nil {
			apis[i].Interceptors = []InterceptorRef{}
		}
		if apis[i].Nodes == nil {
			apis[i].Nodes = []Node{}
		}
		if apis[i].Edges == nil {
			apis[i].Edges = []Edge{}
		}
	}
	return apis
}

package cache

import (
	"strings"

	"github.com/matzehuels/loomviz/pkg/descriptor"
)

// Key type prefixes, reported to cache hooks.
const (
	KeyTypeFeed     = "feed"
	KeyTypeView     = "view"
	KeyTypeArtifact = "artifact"
)

// ViewKeyOpts are the inputs that change a computed view.
type ViewKeyOpts struct {
	Engine       string
	Direction    string
	MarkTerminal bool
	Detailed     bool
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string
	Width    float64
	Height   float64
	MaxScale float64
}

// Keyer derives cache keys.
type Keyer interface {
	// FeedKey names the snapshot of a descriptor feed.
	FeedKey(source string) string
	// ViewKey names the view of one API. It depends on the descriptor's
	// content, not its position, so a changed feed never serves a stale
	// drawing and an unchanged API survives reloads and restarts.
	ViewKey(api descriptor.API, opts ViewKeyOpts) string
	// ArtifactKey names an artifact rendered from a view.
	ArtifactKey(viewKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) FeedKey(source string) string {
	return hashKey(KeyTypeFeed, source)
}

func (DefaultKeyer) ViewKey(api descriptor.API, opts ViewKeyOpts) string {
	return hashKey(KeyTypeView, api, opts)
}

func (DefaultKeyer) ArtifactKey(viewKey string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, viewKey, opts)
}

// KeyType returns the type prefix of a key produced by a Keyer, ignoring
// any scope prefix.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeArtifact, KeyTypeView, KeyTypeFeed} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	return "unknown"
}

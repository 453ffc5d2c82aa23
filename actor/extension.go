package actor

import (
	"sync"
	"sync/atomic"
)

// ExtensionID identifies an Extension type within one ActorSystem (spec §3
// ExtensionRegistry / §6 Extension trait). Installers obtain their id once
// and reuse it to look the instance back up.
type ExtensionID int64

var nextExtensionID int64

// NewExtensionID allocates a process-wide unique id, the way a typed
// extension normally does once at package init time (e.g.
// `var MetricsExtensionID = actor.NewExtensionID()`).
func NewExtensionID() ExtensionID {
	return ExtensionID(atomic.AddInt64(&nextExtensionID, 1))
}

// Extension is an opaque marker; concrete extensions (metrics, cluster
// membership, remote transport, ...) embed or satisfy it purely by being
// registered under an ExtensionID.
type Extension interface{}

// extensionRegistry is first-writer-wins: concurrent registration returns
// whichever instance actually got installed first (spec §3).
type extensionRegistry struct {
	mu   sync.Mutex
	byID map[ExtensionID]Extension
}

func newExtensionRegistry() *extensionRegistry {
	return &extensionRegistry{byID: map[ExtensionID]Extension{}}
}

// Register installs ext under id if nothing is registered yet, returning
// whichever Extension ends up owning id.
func (r *extensionRegistry) Register(id ExtensionID, ext Extension) Extension {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[id]; ok {
		return existing
	}
	r.byID[id] = ext
	return ext
}

func (r *extensionRegistry) Get(id ExtensionID) (Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext, ok := r.byID[id]
	return ext, ok
}

// ExtensionInstaller wires an Extension into a System before it reaches the
// Running state (spec §6).
type ExtensionInstaller func(sys *System)

package asset

// entryState is the load state of a single asset entry.
type entryState int

const (
	// stateUnloaded is the initial state of a freshly created entry.
	stateUnloaded entryState = iota
	// stateLoading means exactly one collaborator load is in flight.
	stateLoading
	// stateLoaded means the container is owned by the entry and instances can be cloned from it.
	stateLoaded
)

func (s entryState) String() string {
	switch s {
	case stateUnloaded:
		return "unloaded"
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// entry tracks one asset identifier known to the cache. Every field except done is guarded
// by the owning cache's mutex; done is closed exactly once when the pending load resolves,
// after err, container, and metadata have been written.
type entry struct {
	identifier string
	state      entryState

	// container is non-nil iff state == stateLoaded.
	container Container
	metadata  Metadata

	// instances counts live instances, the original placement included. It is reserved
	// before the load completes so concurrent acquirers join the pending load.
	instances int

	done chan struct{}
	err  error
}

func newEntry(identifier string) *entry {
	return &entry{
		identifier: identifier,
		state:      stateUnloaded,
	}
}

// beginLoad moves an unloaded entry to loading and reserves the first instance slot.
func (e *entry) beginLoad() {
	e.state = stateLoading
	e.instances = 1
	e.done = make(chan struct{})
}

// join reserves an instance slot on an entry that is loading or loaded.
func (e *entry) join() {
	e.instances++
}

// complete records a successful load. The caller must close done afterwards.
func (e *entry) complete(c Container, meta Metadata) {
	e.state = stateLoaded
	e.container = c
	e.metadata = meta
}

// fail records a failed load and rolls every reserved claim back. The caller must remove the
// entry from the cache and close done afterwards.
func (e *entry) fail(err error) {
	e.state = stateUnloaded
	e.err = err
	e.instances = 0
}

// drop releases one instance slot and reports how many remain.
func (e *entry) drop() int {
	if e.instances > 0 {
		e.instances--
	}
	return e.instances
}

package memstore

// snapshot is an immutable full copy of registry and store content, taken
// once at load time and used solely as the diff baseline for reports.
type snapshot struct {
	registry    *registry
	collections map[string]*collection
}

// snapshotLocked deep-copies the current state. The caller must hold the
// engine lock (Open holds it implicitly, nothing else runs yet).
func (e *Engine) snapshotLocked() *snapshot {
	cols := make(map[string]*collection, len(e.collections))
	for name, col := range e.collections {
		cols[name] = col.clone()
	}
	return &snapshot{
		registry:    e.registry.clone(),
		collections: cols,
	}
}

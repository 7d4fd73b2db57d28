package emit

// Emitter receives execution events from the workflow executor.
//
// Implementations must be safe for concurrent use: retry events from
// parallel nodes arrive from multiple goroutines. Emit must not panic and
// should not block the scheduler; slow backends should buffer or drop.
type Emitter interface {
	Emit(event Event)
}

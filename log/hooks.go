package log

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Hook receives every log event staged by any sub logger, whether or not
// the level is enabled. Returning true keeps the event away from the sub
// logger output
type Hook func(level, subLogger, message string) (consumed bool)

var (
	hooks  = map[uint64]Hook{}
	hookID atomic.Uint64
)

// AddHook registers h and returns the function that removes it
func AddHook(h Hook) (remove func()) {
	if h == nil {
		return func() {}
	}
	id := hookID.Add(1)
	mu.Lock()
	hooks[id] = h
	mu.Unlock()
	return func() {
		mu.Lock()
		delete(hooks, id)
		mu.Unlock()
	}
}

// runHooks must be called with mu held
func runHooks(level, subLogger string, message func() string) (consumed bool) {
	if len(hooks) == 0 {
		return false
	}
	msg := message()
	for _, h := range hooks {
		if h(level, subLogger, msg) {
			consumed = true
		}
	}
	return consumed
}

// Entry is a log event held by a Recorder
type Entry struct {
	Level     string
	SubLogger string
	Message   string
}

// Recorder keeps the events of a set of sub loggers in memory
type Recorder struct {
	mtx     sync.Mutex
	names   []string
	entries []Entry
	remove  func()
}

// NewRecorder starts recording the given sub loggers, or every sub logger
// when none are given. Close stops it
func NewRecorder(sls ...*SubLogger) *Recorder {
	r := &Recorder{}
	for _, sl := range sls {
		if sl != nil {
			r.names = append(r.names, sl.name)
		}
	}
	r.remove = AddHook(func(level, subLogger, message string) bool {
		if len(r.names) > 0 && !slices.Contains(r.names, subLogger) {
			return false
		}
		r.mtx.Lock()
		r.entries = append(r.entries, Entry{Level: level, SubLogger: subLogger, Message: message})
		r.mtx.Unlock()
		return false
	})
	return r
}

// Entries returns the recorded events of a level, or all of them when level
// is empty
func (r *Recorder) Entries(level string) []Entry {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	var resp []Entry
	for i := range r.entries {
		if level == "" || r.entries[i].Level == level {
			resp = append(resp, r.entries[i])
		}
	}
	return resp
}

// Close stops recording
func (r *Recorder) Close() {
	r.remove()
}

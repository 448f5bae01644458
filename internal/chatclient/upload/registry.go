package upload

import (
	"strings"
	"sync"

	"github.com/janhq/mistralhub/internal/utils/idgen"
)

const handlePrefix = "blob:"

// Registry issues process-local handles for uploaded files. Handles are
// ephemeral and must be released when their attachment is discarded.
type Registry struct {
	mu    sync.Mutex
	files map[string]File
}

func NewRegistry() *Registry {
	return &Registry{files: make(map[string]File)}
}

// Acquire stores f and returns its handle.
func (r *Registry) Acquire(f File) string {
	handle := idgen.NewWithPrefix(handlePrefix)
	r.mu.Lock()
	r.files[handle] = f
	r.mu.Unlock()
	return handle
}

// Lookup returns the file behind handle.
func (r *Registry) Lookup(handle string) (File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[handle]
	return f, ok
}

// Release frees handle. Unknown handles are ignored.
func (r *Registry) Release(handle string) {
	if !strings.HasPrefix(handle, handlePrefix) {
		return
	}
	r.mu.Lock()
	delete(r.files, handle)
	r.mu.Unlock()
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// Close releases every handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	clear(r.files)
	r.mu.Unlock()
	return nil
}

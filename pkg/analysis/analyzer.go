// Package analysis delegates the forensic judgment of a captured frame to an
// external generative model and validates the structured report it returns.
// There is no local detection: an analyzer either produces a fully validated
// report or a classified failure, never a partial result.
package analysis

import (
	"context"
	"sync"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// Analyzer is the interface every analysis backend must implement
type Analyzer interface {
	// Name returns the backend name used for registry lookup
	Name() string

	// Description returns a short description of the backend
	Description() string

	// Analyze submits one frame and returns the validated report or a
	// classified *models.ScanError.
	Analyze(ctx context.Context, frame []byte) (*models.AnalysisResult, error)
}

// Registry is a container for the available analysis backends
type Registry struct {
	analyzers map[string]Analyzer
	mu        sync.RWMutex
}

// NewRegistry creates an empty analyzer registry
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// Register adds an analyzer to the registry, replacing any previous backend
// of the same name.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[a.Name()] = a
}

// Get returns the analyzer with the given name, or nil
func (r *Registry) Get(name string) Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.analyzers[name]
}

// Names returns the registered backend names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.analyzers {
		names = append(names, name)
	}
	return names
}

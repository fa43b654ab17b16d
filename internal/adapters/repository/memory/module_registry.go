package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type moduleRegistry struct {
	mu      sync.RWMutex
	modules map[string]string
}

func NewModuleRegistry() ports.ModuleRegistry {
	return &moduleRegistry{
		modules: make(map[string]string),
	}
}

func (r *moduleRegistry) Register(_ context.Context, module domain.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[module.Name] = module.URI
	return nil
}

func (r *moduleRegistry) List(_ context.Context) ([]domain.Module, error) {
	r.mu.RLock()
	modules := make([]domain.Module, 0, len(r.modules))
	for name, uri := range r.modules {
		modules = append(modules, domain.Module{Name: name, URI: uri})
	}
	r.mu.RUnlock()

	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

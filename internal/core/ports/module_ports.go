package ports

import (
	"context"
	"encoding/json"

	"github.com/vncsmyrnk/vote/internal/core/domain"
)

type ModuleRegistry interface {
	// Register adds a module or replaces the one with the same name.
	Register(ctx context.Context, module domain.Module) error
	// List returns the registered modules ordered by name.
	List(ctx context.Context) ([]domain.Module, error)
}

type Calculator interface {
	Calculate(ctx context.Context, module domain.Module, data *domain.VoteData) (json.RawMessage, error)
}

type AggregatorService interface {
	RegisterModule(ctx context.Context, name, uri string) error
	Modules(ctx context.Context) (map[string]string, error)
	// Aggregate sends the topic's vote data to every module and returns the
	// answers by module name. Modules that fail are left out.
	Aggregate(ctx context.Context, topic *domain.Topic) (map[string]json.RawMessage, error)
}

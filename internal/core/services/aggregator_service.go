package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type aggregatorService struct {
	registry   ports.ModuleRegistry
	calculator ports.Calculator
}

func NewAggregatorService(registry ports.ModuleRegistry, calculator ports.Calculator) ports.AggregatorService {
	return &aggregatorService{
		registry:   registry,
		calculator: calculator,
	}
}

func (s *aggregatorService) RegisterModule(ctx context.Context, name, uri string) error {
	module, err := domain.NewModule(name, uri)
	if err != nil {
		return err
	}
	return s.registry.Register(ctx, module)
}

func (s *aggregatorService) Modules(ctx context.Context) (map[string]string, error) {
	modules, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	out := make(map[string]string, len(modules))
	for _, m := range modules {
		out[m.Name] = m.URI
	}
	return out, nil
}

func (s *aggregatorService) Aggregate(ctx context.Context, topic *domain.Topic) (map[string]json.RawMessage, error) {
	if err := topic.Validate(); err != nil {
		return nil, err
	}

	modules, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	data := topic.VoteData()
	results := make([]json.RawMessage, len(modules))
	var wg sync.WaitGroup
	errChan := make(chan error, len(modules))

	for i, module := range modules {
		wg.Add(1)
		go func(i int, m domain.Module) {
			defer wg.Done()
			result, err := s.calculator.Calculate(ctx, m, data)
			if err != nil {
				errChan <- err
				return
			}
			results[i] = result
		}(i, module)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		slog.Warn("module left out of aggregation", "topic", topic.ID, "error", err)
	}

	out := make(map[string]json.RawMessage, len(modules))
	for i, m := range modules {
		if results[i] != nil {
			out[m.Name] = results[i]
		}
	}
	return out, nil
}

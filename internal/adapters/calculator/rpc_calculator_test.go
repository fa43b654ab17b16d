package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/vote/internal/core/domain"
)

func setupModuleServer(t *testing.T, name string, calculate jrpc2.Handler) *httptest.Server {
	t.Helper()
	bridge := jhttp.NewBridge(handler.Map{MethodCalculate: calculate}, nil)
	t.Cleanup(func() { bridge.Close() })

	mux := http.NewServeMux()
	mux.Handle("/"+name+"/rpc/", bridge)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func countIDs(_ context.Context, req *jrpc2.Request) (any, error) {
	var data domain.VoteData
	if err := req.UnmarshalParams(&data); err != nil {
		return nil, err
	}
	return map[string]int{"delegates": len(data.Delegates), "policies": len(data.Policies)}, nil
}

func TestCalculate(t *testing.T) {
	server := setupModuleServer(t, "count", countIDs)
	module, err := domain.NewModule("count", server.URL)
	require.NoError(t, err)

	result, err := NewRPCCalculator(server.Client()).Calculate(context.Background(), module, domain.DummyTopic().VoteData())
	require.NoError(t, err)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(result, &counts))
	assert.Equal(t, map[string]int{"delegates": 3, "policies": 3}, counts)
}

func TestCalculateModuleError(t *testing.T) {
	server := setupModuleServer(t, "broken", func(context.Context, *jrpc2.Request) (any, error) {
		return nil, errors.New("boom")
	})
	module, err := domain.NewModule("broken", server.URL)
	require.NoError(t, err)

	_, err = NewRPCCalculator(server.Client()).Calculate(context.Background(), module, domain.DummyTopic().VoteData())
	assert.Error(t, err)
}

func TestCalculateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	module, err := domain.NewModule("gone", url)
	require.NoError(t, err)

	_, err = NewRPCCalculator(nil).Calculate(context.Background(), module, domain.DummyTopic().VoteData())
	assert.Error(t, err)
}

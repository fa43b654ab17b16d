package http

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/vote/internal/core/domain"
)

type rpcFailure struct {
	Code    jrpc2.Code     `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcFailure     `json:"error"`
}

func (app *testApp) call(t *testing.T, method string, params any) rpcReply {
	t.Helper()
	body := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		body["params"] = params
	}

	resp := app.do(t, http.MethodPost, "/rpc/", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[rpcReply](t, resp)
}

func result[T any](t *testing.T, reply rpcReply) T {
	t.Helper()
	require.Nil(t, reply.Error, "unexpected rpc error")
	var v T
	require.NoError(t, json.Unmarshal(reply.Result, &v))
	return v
}

func TestRPCPollFlow(t *testing.T) {
	app := setupTestApp(t)

	created := app.call(t, "create", map[string]any{"title": "lunch", "options": []string{"X", "Y"}})
	assert.Equal(t, "2.0", created.JSONRPC)
	assert.JSONEq(t, "1", string(created.ID))

	poll := result[domain.Poll](t, created)
	assert.Equal(t, []string{"X", "Y"}, poll.Options)
	pollID := poll.ID.String()

	voted := result[voteResponse](t, app.call(t, "vote", map[string]string{"poll_id": pollID, "option": "Y"}))
	assert.EqualValues(t, 1, voted.Votes)

	tally := result[domain.Tally](t, app.call(t, "results", map[string]string{"poll_id": pollID}))
	assert.EqualValues(t, 1, tally.Total)
	assert.Equal(t, []string{"Y"}, tally.Winners)

	listed := result[[]json.RawMessage](t, app.call(t, "list", nil))
	assert.Len(t, listed, 1)

	result[map[string]string](t, app.call(t, "delete", map[string]string{"poll_id": pollID}))

	gone := app.call(t, "results", map[string]string{"poll_id": pollID})
	require.NotNil(t, gone.Error)
	assert.Equal(t, codePollNotFound, gone.Error.Code)
	assert.Equal(t, "poll_not_found", gone.Error.Data["kind"])
}

func TestRPCErrors(t *testing.T) {
	app := setupTestApp(t)
	poll := app.createPoll(t, "A")

	tests := []struct {
		name     string
		method   string
		params   any
		wantCode jrpc2.Code
	}{
		{"unknown method", "tally", nil, jrpc2.MethodNotFound},
		{"invalid poll", "create", map[string]any{"options": []string{"A", "A"}}, codeInvalidPoll},
		{"unknown option", "vote", map[string]string{"poll_id": poll.ID.String(), "option": "B"}, codeOptionNotFound},
		{"unknown poll", "vote", map[string]string{"poll_id": uuid.NewString(), "option": "A"}, codePollNotFound},
		{"malformed poll id", "results", map[string]string{"poll_id": "nope"}, jrpc2.InvalidParams},
		{"unknown param", "results", map[string]string{"poll": poll.ID.String()}, jrpc2.InvalidParams},
		{"diverging delegation cycle", "liquid", map[string]any{"voters": map[string]any{
			"a": map[string]float64{"b": 2},
			"b": map[string]float64{"a": 2},
		}}, jrpc2.InvalidParams},
		{"negative quadratic credit", "frac", map[string]any{"quadratic": true, "voters": []map[string]float64{{"a": -1}}}, jrpc2.InvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := app.call(t, tt.method, tt.params)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.wantCode, reply.Error.Code)
			assert.NotEmpty(t, reply.Error.Message)
		})
	}
}

func TestRPCMalformedRequests(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"parse error", `{"jsonrpc": "2.0", "method": `},
		{"wrong version", `{"jsonrpc": "1.0", "id": 1, "method": "list"}`},
		{"missing method", `{"jsonrpc": "2.0", "id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, "/rpc/", tt.body)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.NotContains(t, string(body), `"result"`)
		})
	}
}

func TestRPCBatch(t *testing.T) {
	app := setupTestApp(t)

	resp := app.do(t, http.MethodPost, "/rpc/", `[
		{"jsonrpc": "2.0", "id": 1, "method": "fptp", "params": {"votes": ["a", "b", "a"]}},
		{"jsonrpc": "2.0", "id": 2, "method": "list"}
	]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	replies := decode[[]rpcReply](t, resp)
	require.Len(t, replies, 2)
	for _, reply := range replies {
		assert.Nil(t, reply.Error)
	}
}

func TestRPCWithoutTrailingSlash(t *testing.T) {
	app := setupTestApp(t)

	resp := app.do(t, http.MethodPost, "/rpc", `{"jsonrpc": "2.0", "id": "a", "method": "list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reply := decode[rpcReply](t, resp)
	assert.Nil(t, reply.Error)
	assert.JSONEq(t, `"a"`, string(reply.ID))
}

func TestRPCAggregation(t *testing.T) {
	app := setupTestApp(t)

	t.Run("fptp", func(t *testing.T) {
		got := result[winnersResult](t, app.call(t, "fptp", map[string]any{"votes": []string{"dog", "cat", "dog"}}))
		assert.Equal(t, []string{"dog"}, got.Winners)
	})

	t.Run("approval", func(t *testing.T) {
		got := result[winnersResult](t, app.call(t, "approval", map[string]any{
			"voters": [][]string{{"a", "b"}, {"b"}, {"c"}},
		}))
		assert.Equal(t, []string{"b"}, got.Winners)
	})

	t.Run("rcv", func(t *testing.T) {
		got := result[winnersResult](t, app.call(t, "rcv", map[string]any{
			"voters": [][]string{{"a", "b"}, {"a"}, {"b", "a"}},
		}))
		assert.Equal(t, []string{"a"}, got.Winners)
	})

	t.Run("borda", func(t *testing.T) {
		got := result[map[string]float64](t, app.call(t, "borda", map[string]any{
			"voters": [][]string{{"a", "b"}, {"a", "b"}},
		}))
		assert.Greater(t, got["a"], got["b"])
	})

	t.Run("frac", func(t *testing.T) {
		got := result[map[string]float64](t, app.call(t, "frac", map[string]any{
			"normalize": true,
			"voters":    []map[string]float64{{"a": 2, "b": 2}, {"a": 1}},
		}))
		assert.InDelta(t, 1.5, got["a"], 1e-9)
		assert.InDelta(t, 0.5, got["b"], 1e-9)
	})

	t.Run("approval ranking skips ignored labels", func(t *testing.T) {
		got := result[winnersResult](t, app.call(t, "approval", map[string]any{
			"voters": [][]string{{"a", "b"}, {"a"}, {"c"}},
			"ignore": []string{"a"},
		}))
		assert.Equal(t, []string{"b", "c"}, got.Winners)
		assert.Equal(t, [][]string{{"b", "c"}}, got.Ranking)
	})

	t.Run("rcv ranking skips ignored labels", func(t *testing.T) {
		got := result[winnersResult](t, app.call(t, "rcv", map[string]any{
			"voters": [][]string{{"cat", "dog"}, {"cat"}, {"dog"}},
			"ignore": []string{"cat"},
		}))
		assert.Equal(t, []string{"dog"}, got.Winners)
		assert.Equal(t, [][]string{{"dog"}}, got.Ranking)
	})

	t.Run("liquid", func(t *testing.T) {
		got := result[struct {
			Results   map[string]float64 `json:"results"`
			Influence map[string]float64 `json:"influence"`
		}](t, app.call(t, "liquid", map[string]any{
			"voters": map[string]any{
				"alice": map[string]float64{"bob": 1},
				"bob":   map[string]float64{"tax": 1},
			},
		}))
		assert.InDelta(t, 2.0, got.Results["tax"], 1e-9)
		assert.Contains(t, got.Influence, "alice")
	})

	t.Run("liquid direct weight above one", func(t *testing.T) {
		got := result[struct {
			Results map[string]float64 `json:"results"`
		}](t, app.call(t, "liquid", map[string]any{
			"voters": map[string]any{"alice": map[string]float64{"tax": 2}},
		}))
		assert.InDelta(t, 2.0, got.Results["tax"], 1e-9)
	})

	t.Run("liquid quadratic split votes", func(t *testing.T) {
		got := result[struct {
			Results   map[string]float64 `json:"results"`
			Influence map[string]float64 `json:"influence"`
		}](t, app.call(t, "liquid", map[string]any{
			"quadratic": true,
			"voters": map[string]any{
				"minori":  map[string]float64{"yasushi": 0.1, "ray": 0.1, "rice": 0.1, "bread": 0.7},
				"yasushi": map[string]float64{"minori": 0.2, "ray": 0.3, "rice": 0.5},
				"ray":     map[string]float64{"minori": 0.4, "yasushi": 0.4, "bread": 0.2},
			},
		}))
		require.Contains(t, got.Results, "rice")
		require.Contains(t, got.Results, "bread")
		for _, score := range got.Results {
			assert.False(t, math.IsInf(score, 0) || math.IsNaN(score))
			assert.Greater(t, score, 0.0)
		}
		assert.Len(t, got.Influence, 3)
	})

	t.Run("liquid bare voters map", func(t *testing.T) {
		got := result[[]map[string]float64](t, app.call(t, "liquid", map[string]any{
			"alice": map[string]float64{"tax": 1},
		}))
		require.Len(t, got, 2)
		assert.InDelta(t, 1.0, got[0]["tax"], 1e-9)
		assert.InDelta(t, 1.0, got[1]["alice"], 1e-9)
	})
}

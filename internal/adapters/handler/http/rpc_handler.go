package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/vncsmyrnk/vote/internal/core/aggregation"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

// Domain error codes, outside the range reserved by JSON-RPC.
const (
	codePollNotFound   jrpc2.Code = -32001
	codeOptionNotFound jrpc2.Code = -32002
	codeInvalidPoll    jrpc2.Code = -32003
)

// maxLiquidNodes bounds the matrix LiquidDemocracy multiplies.
const maxLiquidNodes = 32

// RPCHandler serves JSON-RPC 2.0 over POST, batches included.
type RPCHandler struct {
	bridge interface {
		http.Handler
		Close() error
	}
}

func NewRPCHandler(polls ports.PollService, votes ports.VoteService, summary ports.SummaryService) *RPCHandler {
	methods := handler.Map{
		"create":   createMethod(polls),
		"list":     listMethod(polls),
		"delete":   deleteMethod(polls),
		"vote":     voteMethod(votes),
		"results":  resultsMethod(summary),
		"fptp":     fptpMethod,
		"approval": approvalMethod,
		"borda":    bordaMethod,
		"rcv":      rcvMethod,
		"frac":     fracMethod,
		"liquid":   liquidMethod,
	}
	for name, method := range methods {
		methods[name] = withErrorCodes(name, method)
	}

	return &RPCHandler{bridge: jhttp.NewBridge(methods, nil)}
}

func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.bridge.ServeHTTP(w, r)
}

// Close stops the JSON-RPC server behind the handler.
func (h *RPCHandler) Close() error {
	return h.bridge.Close()
}

// withErrorCodes turns domain errors into JSON-RPC errors carrying the
// error kind as data. Internal errors are logged and reported without detail.
func withErrorCodes(name string, method jrpc2.Handler) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		result, err := method(ctx, req)
		if err == nil {
			return result, nil
		}

		var rpcErr *jrpc2.Error
		if errors.As(err, &rpcErr) {
			return nil, err
		}

		code := codeFor(err)
		message := err.Error()
		if code == jrpc2.InternalError {
			slog.Error("rpc call failed", "method", name, "error", err)
			message = domain.ErrInternal.Error()
		}
		data, _ := json.Marshal(map[string]string{"kind": domain.Kind(err)})
		return nil, &jrpc2.Error{Code: code, Message: message, Data: data}
	}
}

func codeFor(err error) jrpc2.Code {
	switch {
	case errors.Is(err, domain.ErrPollNotFound):
		return codePollNotFound
	case errors.Is(err, domain.ErrOptionNotFound):
		return codeOptionNotFound
	case errors.Is(err, domain.ErrInvalidPoll):
		return codeInvalidPoll
	case errors.Is(err, domain.ErrBadRequest):
		return jrpc2.InvalidParams
	default:
		return jrpc2.InternalError
	}
}

// decodeParams fills v from params. Absent or null params leave v untouched.
func decodeParams(req *jrpc2.Request, v any) error {
	params := []byte(req.ParamString())
	if len(params) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid params: %v", domain.ErrBadRequest, err)
	}
	return nil
}

type pollIDParams struct {
	PollID string `json:"poll_id"`
}

func createMethod(polls ports.PollService) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		var p createPollRequest
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return polls.Create(ctx, ports.CreatePollInput{Title: p.Title, Options: p.Options})
	}
}

func listMethod(polls ports.PollService) jrpc2.Handler {
	return func(ctx context.Context, _ *jrpc2.Request) (any, error) {
		return polls.ListPolls(ctx)
	}
}

func deleteMethod(polls ports.PollService) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		var p pollIDParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		if err := polls.Delete(ctx, p.PollID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil
	}
}

func voteMethod(votes ports.VoteService) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		var p struct {
			PollID string `json:"poll_id"`
			Option string `json:"option"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}

		count, err := votes.Vote(ctx, ports.VoteInput{PollID: p.PollID, Option: p.Option})
		if err != nil {
			return nil, err
		}
		return voteResponse{PollID: p.PollID, Option: strings.TrimSpace(p.Option), Votes: count}, nil
	}
}

func resultsMethod(summary ports.SummaryService) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		var p pollIDParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return summary.Results(ctx, p.PollID)
	}
}

type winnersResult struct {
	Winners []string   `json:"winners"`
	Ranking [][]string `json:"ranking,omitempty"`
}

type rankedParams struct {
	Voters [][]string `json:"voters"`
	Ignore []string   `json:"ignore"`
}

func fptpMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var p struct {
		Votes []string `json:"votes"`
	}
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}
	return winnersResult{Winners: aggregation.FirstPastThePost(p.Votes)}, nil
}

func approvalMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var p rankedParams
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}

	winners := aggregation.Approval(p.Voters, p.Ignore)
	if winners == nil {
		winners = []string{}
	}
	return winnersResult{Winners: winners, Ranking: aggregation.ApprovalRanking(p.Voters, p.Ignore)}, nil
}

func bordaMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var p rankedParams
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}
	return aggregation.Borda(p.Voters), nil
}

func rcvMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var p rankedParams
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}

	winners := aggregation.RankedChoice(p.Voters, p.Ignore)
	if winners == nil {
		winners = []string{}
	}
	return winnersResult{Winners: winners, Ranking: aggregation.RankedChoiceRanking(p.Voters, p.Ignore)}, nil
}

func fracMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var p struct {
		Normalize bool                 `json:"normalize"`
		Quadratic bool                 `json:"quadratic"`
		Voters    []map[string]float64 `json:"voters"`
	}
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}

	result := aggregation.Fractional(p.Voters, aggregation.Options{Normalize: p.Normalize, Quadratic: p.Quadratic})
	if err := checkFinite(result); err != nil {
		return nil, err
	}
	return result, nil
}

type liquidParams struct {
	Normalize bool                          `json:"normalize"`
	Quadratic bool                          `json:"quadratic"`
	Voters    map[string]map[string]float64 `json:"voters"`
}

// liquidMethod accepts {"voters": {...}, "normalize", "quadratic"} and
// answers {"results", "influence"}. Params that are the voters map itself
// get the [results, influence] pair instead.
func liquidMethod(_ context.Context, req *jrpc2.Request) (any, error) {
	var fields map[string]json.RawMessage
	if err := decodeParams(req, &fields); err != nil {
		return nil, err
	}

	if _, ok := fields["voters"]; ok {
		var p liquidParams
		if err := decodeParams(req, &p); err == nil {
			result, err := liquid(p.Voters, aggregation.Options{Normalize: p.Normalize, Quadratic: p.Quadratic})
			if err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	var voters map[string]map[string]float64
	if err := decodeParams(req, &voters); err != nil {
		return nil, err
	}
	result, err := liquid(voters, aggregation.Options{})
	if err != nil {
		return nil, err
	}
	return []map[string]float64{result.Results, result.Influence}, nil
}

func liquid(voters map[string]map[string]float64, opts aggregation.Options) (aggregation.LiquidResult, error) {
	nodes := make(map[string]struct{})
	for name, votes := range voters {
		nodes[name] = struct{}{}
		for target := range votes {
			nodes[target] = struct{}{}
		}
	}
	if len(nodes) > maxLiquidNodes {
		return aggregation.LiquidResult{}, fmt.Errorf("%w: at most %d delegates and policies are supported", domain.ErrBadRequest, maxLiquidNodes)
	}

	result := aggregation.LiquidDemocracy(voters, opts)
	if err := checkFinite(result.Results, result.Influence); err != nil {
		return aggregation.LiquidResult{}, err
	}
	return result, nil
}

// checkFinite rejects scores JSON cannot carry, such as those of delegation
// cycles passing on more weight than they receive.
func checkFinite(scores ...map[string]float64) error {
	for _, m := range scores {
		for label, score := range m {
			if math.IsNaN(score) || math.IsInf(score, 0) {
				return fmt.Errorf("%w: score of %q does not converge to a finite number", domain.ErrBadRequest, label)
			}
		}
	}
	return nil
}

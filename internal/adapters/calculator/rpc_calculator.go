// Package calculator calls remote calculation modules over JSON-RPC.
package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

// MethodCalculate is the method every module answers.
const MethodCalculate = "calculate"

type rpcCalculator struct {
	client *http.Client
}

func NewRPCCalculator(client *http.Client) ports.Calculator {
	if client == nil {
		client = http.DefaultClient
	}
	return &rpcCalculator{
		client: client,
	}
}

func (c *rpcCalculator) Calculate(ctx context.Context, module domain.Module, data *domain.VoteData) (json.RawMessage, error) {
	ch := jhttp.NewChannel(module.Endpoint(), &jhttp.ChannelOptions{Client: c.client})
	cli := jrpc2.NewClient(ch, nil)
	defer cli.Close()

	var result json.RawMessage
	if err := cli.CallResult(ctx, MethodCalculate, data, &result); err != nil {
		return nil, fmt.Errorf("failed to call module %s: %w", module.Name, err)
	}
	return result, nil
}

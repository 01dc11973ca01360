package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// PoolArgs are the arguments of get_pool_info.
type PoolArgs struct {
	ID      string `json:"id"`
	ChainID string `json:"chain_id"`
}

// PoolInfo returns the upstream pool object unmodified.
func (ts *Toolset) PoolInfo(ctx context.Context, in PoolArgs) any {
	params := debank.NewParams().Set("id", in.ID).Set("chain_id", in.ChainID)
	return ts.api.Get(ctx, "/v1/pool", params)
}

func (ts *Toolset) poolInfoTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_pool_info",
			Description: "Get a pool by id on a chain: pool id, chain, protocol id, contract ids, name and stats " +
				"(deposit USD value, total user count, count of users holding over $100).",
			InputSchema: mcp.ObjectSchema(map[string]interface{}{
				"id":       mcp.StringProp("Pool id, eg: 0x00000000219ab540356cbb839cbe05303d7705fa"),
				"chain_id": mcp.StringProp(chainIDDesc),
			}, "id", "chain_id"),
		},
		Call: bind(ts.PoolInfo),
	}
}

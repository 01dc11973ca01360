package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// ChainArgs are the arguments of get_chain_info.
type ChainArgs struct {
	ID string `json:"id,omitempty"`
	Paging
}

// ChainInfo returns one chain when ID is set, otherwise a page of supported chains.
func (ts *Toolset) ChainInfo(ctx context.Context, in ChainArgs) any {
	if in.ID != "" {
		return ts.api.Get(ctx, "/v1/chain", debank.NewParams().Set("id", in.ID))
	}
	return in.apply(ts.api.Get(ctx, "/v1/chain/list", nil))
}

func (ts *Toolset) chainInfoTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_chain_info",
			Description: "Get blockchain information. With id, returns one chain's details (id, name, logo url, " +
				"native and wrapped token ids, pre-execution support). Without id, returns a page of all supported chains.",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"id": mcp.StringProp("Optional chain id, eg: eth, bsc, xdai"),
			})),
		},
		Call: bind(ts.ChainInfo),
	}
}

package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
	"github.com/alberthuang422/demcp-bank/internal/pagination"
)

// ProtocolAction selects the get_protocol_info branch.
type ProtocolAction string

const (
	ProtocolDetails ProtocolAction = "details"
	ProtocolList    ProtocolAction = "list"
	ProtocolHolders ProtocolAction = "holders"
)

// ProtocolArgs are the arguments of get_protocol_info.
type ProtocolArgs struct {
	Action  ProtocolAction `json:"action,omitempty"`
	ID      string         `json:"id,omitempty"`
	ChainID string         `json:"chain_id,omitempty"`
	Start   *int           `json:"start,omitempty"`
	Limit   *int           `json:"limit,omitempty"`
	Paging
}

// ProtocolInfo returns protocol details, the chain's protocols ranked by TVL,
// or a protocol's top holders.
func (ts *Toolset) ProtocolInfo(ctx context.Context, in ProtocolArgs) any {
	if in.Action == "" {
		in.Action = ProtocolDetails
	}

	switch in.Action {
	case ProtocolDetails:
		if in.ID == "" {
			return requiredFor("id", "protocol details")
		}
		return ts.api.Get(ctx, "/v1/protocol", debank.NewParams().Set("id", in.ID))

	case ProtocolList:
		if in.ChainID == "" {
			return requiredFor("chain_id", "protocol list")
		}
		protocols := ts.api.Get(ctx, "/v1/protocol/list", debank.NewParams().Set("chain_id", in.ChainID))
		return in.apply(pagination.SortByNumericField(protocols, "tvl"))

	case ProtocolHolders:
		if in.ID == "" {
			return requiredFor("id", "protocol top holders")
		}
		params := debank.NewParams().
			Set("id", in.ID).
			SetInt("start", in.Start).
			SetInt("limit", in.Limit)
		return in.apply(ts.api.Get(ctx, "/v1/protocol/top_holders", params))

	default:
		return unsupported("action", string(in.Action))
	}
}

func (ts *Toolset) protocolInfoTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_protocol_info",
			Description: "Get DeFi protocol data. action=details returns one protocol (id, chain, name, logo, site url, TVL); " +
				"action=list returns the protocols on chain_id sorted by TVL, highest first; " +
				"action=holders returns a protocol's top holders as address/USD value pairs.",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"action": mcp.EnumProp("What to fetch", string(ProtocolDetails),
					string(ProtocolDetails), string(ProtocolList), string(ProtocolHolders)),
				"id":       mcp.StringProp("Protocol id, eg: bsc_pancakeswap, curve, uniswap. Required for details and holders"),
				"chain_id": mcp.StringProp(chainIDDesc + ". Required for list"),
				"start":    mcp.IntegerProp(startDesc+" (holders only, max 1000)", 0, nil),
				"limit":    mcp.IntegerProp(limitDesc+" (holders only, max 100)", 1, nil),
			})),
		},
		Call: bind(ts.ProtocolInfo),
	}
}

package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// TokenAction selects the get_token_info branch.
type TokenAction string

const (
	TokenDetails TokenAction = "details"
	TokenHolders TokenAction = "holders"
	TokenHistory TokenAction = "history"
)

// TokenArgs are the arguments of get_token_info.
type TokenArgs struct {
	Action  TokenAction `json:"action,omitempty"`
	ChainID string      `json:"chain_id"`
	ID      string      `json:"id"`
	DateAt  string      `json:"date_at,omitempty"`
	Start   *int        `json:"start,omitempty"`
	Limit   *int        `json:"limit,omitempty"`
	Paging
}

// TokenInfo returns token details, its top holders, or its price on a past date.
func (ts *Toolset) TokenInfo(ctx context.Context, in TokenArgs) any {
	if in.Action == "" {
		in.Action = TokenDetails
	}

	params := debank.NewParams().Set("chain_id", in.ChainID).Set("id", in.ID)

	switch in.Action {
	case TokenDetails:
		return ts.api.Get(ctx, "/v1/token", params)

	case TokenHolders:
		params.SetInt("start", in.Start).SetInt("limit", in.Limit)
		return in.apply(ts.api.Get(ctx, "/v1/token/top_holders", params))

	case TokenHistory:
		if in.DateAt == "" {
			return requiredFor("date_at", "historical price")
		}
		params.Set("date_at", in.DateAt)
		return ts.api.Get(ctx, "/v1/token/history_price", params)

	default:
		return unsupported("action", string(in.Action))
	}
}

func (ts *Toolset) tokenInfoTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_token_info",
			Description: "Get token data. action=details returns the token (name, symbol, decimals, price, logo); " +
				"action=holders returns top holders ordered by amount held; " +
				"action=history returns the token's USD price on date_at (UTC, eg: 2023-05-18).",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"action": mcp.EnumProp("What to fetch", string(TokenDetails),
					string(TokenDetails), string(TokenHolders), string(TokenHistory)),
				"chain_id": mcp.StringProp(chainIDDesc),
				"id":       mcp.StringProp(tokenIDDesc),
				"date_at":  mcp.StringProp("UTC date, eg: 2023-05-18. Required for history"),
				"start":    mcp.IntegerProp(startDesc+" (holders only, max 10000)", 0, nil),
				"limit":    mcp.IntegerProp(limitDesc+" (holders only, max 100)", 1, nil),
			}), "chain_id", "id"),
		},
		Call: bind(ts.TokenInfo),
	}
}

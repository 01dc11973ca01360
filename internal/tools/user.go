package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// AssetType selects the get_user_assets branch.
type AssetType string

const (
	AssetChains       AssetType = "chains"
	AssetChainBalance AssetType = "chain_balance"
	AssetTotalBalance AssetType = "total_balance"
	AssetToken        AssetType = "token"
	AssetTokens       AssetType = "tokens"
	AssetAllTokens    AssetType = "all_tokens"
	AssetNFTs         AssetType = "nfts"
	AssetAllNFTs      AssetType = "all_nfts"
)

// UserAssetArgs are the arguments of get_user_assets.
type UserAssetArgs struct {
	ID        string    `json:"id"`
	AssetType AssetType `json:"asset_type,omitempty"`
	ChainID   string    `json:"chain_id,omitempty"`
	ChainIDs  string    `json:"chain_ids,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	IsAll     *bool     `json:"is_all,omitempty"`
	Paging
}

// UserAssets returns a user's balances, token holdings, NFTs or used chains.
func (ts *Toolset) UserAssets(ctx context.Context, in UserAssetArgs) any {
	if in.AssetType == "" {
		in.AssetType = AssetTotalBalance
	}

	params := debank.NewParams().Set("id", in.ID)

	switch in.AssetType {
	case AssetChains:
		return in.apply(ts.api.Get(ctx, "/v1/user/used_chain_list", params))

	case AssetChainBalance:
		if in.ChainID == "" {
			return requiredFor("chain_id", "chain balance")
		}
		return ts.api.Get(ctx, "/v1/user/chain_balance", params.Set("chain_id", in.ChainID))

	case AssetTotalBalance:
		return ts.api.Get(ctx, "/v1/user/total_balance", params.SetString("chain_ids", in.ChainIDs))

	case AssetToken:
		if in.ChainID == "" {
			return requiredFor("chain_id", "token balance")
		}
		if in.TokenID == "" {
			return requiredFor("token_id", "token balance")
		}
		params.Set("chain_id", in.ChainID).Set("token_id", in.TokenID)
		return ts.api.Get(ctx, "/v1/user/token", params)

	case AssetTokens:
		if in.ChainID == "" {
			return requiredFor("chain_id", "token list")
		}
		params.Set("chain_id", in.ChainID).SetBool("is_all", in.IsAll)
		return in.apply(ts.api.Get(ctx, "/v1/user/token_list", params))

	case AssetAllTokens:
		params.SetString("chain_ids", in.ChainIDs).SetBool("is_all", in.IsAll)
		return in.apply(ts.api.Get(ctx, "/v1/user/all_token_list", params))

	case AssetNFTs:
		if in.ChainID == "" {
			return requiredFor("chain_id", "NFT list")
		}
		params.Set("chain_id", in.ChainID).SetBool("is_all", in.IsAll)
		return in.apply(ts.api.Get(ctx, "/v1/user/nft_list", params))

	case AssetAllNFTs:
		params.SetString("chain_ids", in.ChainIDs).SetBool("is_all", in.IsAll)
		return in.apply(ts.api.Get(ctx, "/v1/user/all_nft_list", params))

	default:
		return unsupported("asset_type", string(in.AssetType))
	}
}

func (ts *Toolset) userAssetsTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_user_assets",
			Description: "Get a user's assets. asset_type: chains (chains the address has used), chain_balance (USD value on chain_id), " +
				"total_balance (USD value across chains with per-chain breakdown), token (balance of token_id on chain_id), " +
				"tokens (token balances on chain_id), all_tokens (token balances across chains), " +
				"nfts (NFTs on chain_id), all_nfts (NFTs across chains).",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"id": mcp.StringProp(userIDDesc),
				"asset_type": mcp.EnumProp("Which assets to fetch", string(AssetTotalBalance),
					string(AssetChains), string(AssetChainBalance), string(AssetTotalBalance), string(AssetToken),
					string(AssetTokens), string(AssetAllTokens), string(AssetNFTs), string(AssetAllNFTs)),
				"chain_id":  mcp.StringProp(chainIDDesc + ". Required for chain_balance, token, tokens and nfts"),
				"chain_ids": mcp.StringProp(chainIDsDesc),
				"token_id":  mcp.StringProp(tokenIDDesc + ". Required for token"),
				"is_all":    map[string]interface{}{"type": "boolean", "description": isAllDesc},
			}), "id"),
		},
		Call: bind(ts.UserAssets),
	}
}

// ProtocolType selects the get_user_protocols branch.
type ProtocolType string

const (
	UserProtocolSingle     ProtocolType = "single"
	UserProtocolComplex    ProtocolType = "complex"
	UserProtocolAllComplex ProtocolType = "all_complex"
	UserProtocolSimple     ProtocolType = "simple"
	UserProtocolAllSimple  ProtocolType = "all_simple"
)

// UserProtocolArgs are the arguments of get_user_protocols.
type UserProtocolArgs struct {
	ID           string       `json:"id"`
	ProtocolType ProtocolType `json:"protocol_type,omitempty"`
	ProtocolID   string       `json:"protocol_id,omitempty"`
	ChainID      string       `json:"chain_id,omitempty"`
	ChainIDs     string       `json:"chain_ids,omitempty"`
	Paging
}

// UserProtocols returns a user's positions in DeFi protocols.
func (ts *Toolset) UserProtocols(ctx context.Context, in UserProtocolArgs) any {
	if in.ProtocolType == "" {
		in.ProtocolType = UserProtocolAllComplex
	}

	params := debank.NewParams().Set("id", in.ID)

	switch in.ProtocolType {
	case UserProtocolSingle:
		if in.ProtocolID == "" {
			return requiredFor("protocol_id", "single protocol positions")
		}
		return ts.api.Get(ctx, "/v1/user/protocol", params.Set("protocol_id", in.ProtocolID))

	case UserProtocolComplex:
		if in.ChainID == "" {
			return requiredFor("chain_id", "complex protocol list")
		}
		return in.apply(ts.api.Get(ctx, "/v1/user/complex_protocol_list", params.Set("chain_id", in.ChainID)))

	case UserProtocolAllComplex:
		return in.apply(ts.api.Get(ctx, "/v1/user/all_complex_protocol_list", params.SetString("chain_ids", in.ChainIDs)))

	case UserProtocolSimple:
		if in.ChainID == "" {
			return requiredFor("chain_id", "simple protocol list")
		}
		return in.apply(ts.api.Get(ctx, "/v1/user/simple_protocol_list", params.Set("chain_id", in.ChainID)))

	case UserProtocolAllSimple:
		return in.apply(ts.api.Get(ctx, "/v1/user/all_simple_protocol_list", params.SetString("chain_ids", in.ChainIDs)))

	default:
		return unsupported("protocol_type", string(in.ProtocolType))
	}
}

func (ts *Toolset) userProtocolsTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_user_protocols",
			Description: "Get a user's DeFi protocol positions. protocol_type: single (detailed positions in protocol_id), " +
				"complex (detailed portfolios on chain_id), all_complex (detailed portfolios across chains), " +
				"simple (balance per protocol on chain_id), all_simple (balance per protocol across chains). " +
				"Portfolio data is near real-time within one minute.",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"id": mcp.StringProp(userIDDesc),
				"protocol_type": mcp.EnumProp("Which positions to fetch", string(UserProtocolAllComplex),
					string(UserProtocolSingle), string(UserProtocolComplex), string(UserProtocolAllComplex),
					string(UserProtocolSimple), string(UserProtocolAllSimple)),
				"protocol_id": mcp.StringProp("Protocol id. Required for single"),
				"chain_id":    mcp.StringProp(chainIDDesc + ". Required for complex and simple"),
				"chain_ids":   mcp.StringProp(chainIDsDesc),
			}), "id"),
		},
		Call: bind(ts.UserProtocols),
	}
}

// ActivityType selects the get_user_activities branch.
type ActivityType string

const (
	ActivityHistory        ActivityType = "history"
	ActivityAllHistory     ActivityType = "all_history"
	ActivityChainNetCurve  ActivityType = "chain_net_curve"
	ActivityTotalNetCurve  ActivityType = "total_net_curve"
	ActivityTokenApprovals ActivityType = "token_approvals"
	ActivityNFTApprovals   ActivityType = "nft_approvals"
)

// UserActivityArgs are the arguments of get_user_activities.
type UserActivityArgs struct {
	ID           string       `json:"id"`
	ActivityType ActivityType `json:"activity_type,omitempty"`
	ChainID      string       `json:"chain_id,omitempty"`
	ChainIDs     string       `json:"chain_ids,omitempty"`
	TokenID      string       `json:"token_id,omitempty"`
	PageCount    *int         `json:"page_count,omitempty"`
	StartTime    *int64       `json:"start_time,omitempty"`
	Paging
}

// UserActivities returns a user's transaction history, 24h net worth curve,
// or outstanding token and NFT approvals.
func (ts *Toolset) UserActivities(ctx context.Context, in UserActivityArgs) any {
	if in.ActivityType == "" {
		in.ActivityType = ActivityAllHistory
	}

	params := debank.NewParams().Set("id", in.ID)

	switch in.ActivityType {
	case ActivityHistory:
		if in.ChainID == "" {
			return requiredFor("chain_id", "transaction history")
		}
		params.Set("chain_id", in.ChainID).
			SetString("token_id", in.TokenID).
			SetInt64("start_time", in.StartTime).
			SetInt("page_count", in.PageCount)
		return ts.api.Get(ctx, "/v1/user/history_list", params)

	case ActivityAllHistory:
		params.SetString("chain_ids", in.ChainIDs).
			SetInt64("start_time", in.StartTime).
			SetInt("page_count", in.PageCount)
		return ts.api.Get(ctx, "/v1/user/all_history_list", params)

	case ActivityChainNetCurve:
		if in.ChainID == "" {
			return requiredFor("chain_id", "chain net curve")
		}
		return ts.api.Get(ctx, "/v1/user/chain_net_curve", params.Set("chain_id", in.ChainID))

	case ActivityTotalNetCurve:
		return ts.api.Get(ctx, "/v1/user/total_net_curve", params.SetString("chain_ids", in.ChainIDs))

	case ActivityTokenApprovals:
		if in.ChainID == "" {
			return requiredFor("chain_id", "token approvals")
		}
		return in.apply(ts.api.Get(ctx, "/v1/user/token_authorized_list", params.Set("chain_id", in.ChainID)))

	case ActivityNFTApprovals:
		if in.ChainID == "" {
			return requiredFor("chain_id", "NFT approvals")
		}
		return in.apply(ts.api.Get(ctx, "/v1/user/nft_authorized_list", params.Set("chain_id", in.ChainID)))

	default:
		return unsupported("activity_type", string(in.ActivityType))
	}
}

func (ts *Toolset) userActivitiesTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_user_activities",
			Description: "Get a user's activity. activity_type: history (transactions on chain_id), all_history (transactions across chains), " +
				"chain_net_curve (24h USD value curve on chain_id), total_net_curve (24h USD value curve across chains), " +
				"token_approvals (token spending approvals on chain_id), nft_approvals (NFT approvals on chain_id).",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"id": mcp.StringProp(userIDDesc),
				"activity_type": mcp.EnumProp("Which activity to fetch", string(ActivityAllHistory),
					string(ActivityHistory), string(ActivityAllHistory), string(ActivityChainNetCurve),
					string(ActivityTotalNetCurve), string(ActivityTokenApprovals), string(ActivityNFTApprovals)),
				"chain_id":   mcp.StringProp(chainIDDesc + ". Required for history, chain_net_curve and approvals"),
				"chain_ids":  mcp.StringProp(chainIDsDesc),
				"token_id":   mcp.StringProp("Only return history involving this token (history only)"),
				"page_count": mcp.IntegerProp("Number of history records to return, max 20", 1, nil),
				"start_time": mcp.IntegerProp(startTimeDesc, 0, nil),
			}), "id"),
		},
		Call: bind(ts.UserActivities),
	}
}

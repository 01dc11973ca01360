package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// CollectionArgs are the arguments of get_collection_nft_list.
type CollectionArgs struct {
	ID      string `json:"id"`
	ChainID string `json:"chain_id"`
	Start   *int   `json:"start,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
	Paging
}

// CollectionNFTList fetches a collection's NFTs and returns one page of them.
func (ts *Toolset) CollectionNFTList(ctx context.Context, in CollectionArgs) any {
	params := debank.NewParams().
		Set("id", in.ID).
		Set("chain_id", in.ChainID).
		SetInt("start", in.Start).
		SetInt("limit", in.Limit)
	return in.apply(ts.api.Get(ctx, "/v1/collection/nft_list", params))
}

func (ts *Toolset) collectionNFTListTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "get_collection_nft_list",
			Description: "Get the NFTs of a collection on a chain (token id, name, content, attributes, owner). " +
				"start and limit select the upstream window; page and page_size slice the fetched window.",
			InputSchema: mcp.ObjectSchema(withPaging(map[string]interface{}{
				"id":       mcp.StringProp("Collection contract address"),
				"chain_id": mcp.StringProp(chainIDDesc),
				"start":    mcp.IntegerProp(startDesc, 0, nil),
				"limit":    mcp.IntegerProp(limitDesc, 1, nil),
			}), "id", "chain_id"),
		},
		Call: bind(ts.CollectionNFTList),
	}
}

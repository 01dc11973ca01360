// Package tools implements the DeBank MCP tools.
//
// Each tool builds its upstream query from typed arguments, issues a single
// request through Upstream and, for list-shaped results, returns one page of
// the fetched list. Upstream failures surface as a nil (JSON null) result;
// a missing argument for the selected mode surfaces as an ErrorResult.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
	"github.com/alberthuang422/demcp-bank/internal/pagination"
)

// Upstream is the request executor the tools call.
type Upstream interface {
	Get(ctx context.Context, path string, params *debank.Params) any
	Post(ctx context.Context, path string, body any) any
}

// Toolset binds every tool to one upstream.
type Toolset struct {
	api Upstream
}

// New creates a toolset over api.
func New(api Upstream) *Toolset {
	return &Toolset{api: api}
}

// Handlers returns the MCP handlers for all tools, in listing order.
func (ts *Toolset) Handlers() []mcp.ToolHandler {
	return []mcp.ToolHandler{
		ts.chainInfoTool(),
		ts.protocolInfoTool(),
		ts.tokenInfoTool(),
		ts.poolInfoTool(),
		ts.userAssetsTool(),
		ts.userProtocolsTool(),
		ts.userActivitiesTool(),
		ts.collectionNFTListTool(),
		ts.gasMarketTool(),
		ts.explainTxTool(),
		ts.simulateTxTool(),
	}
}

// ErrorResult is returned when the arguments for the selected mode are incomplete.
type ErrorResult struct {
	Error string `json:"error"`
}

func requiredFor(arg, what string) ErrorResult {
	return ErrorResult{Error: fmt.Sprintf("%s parameter is required for %s", arg, what)}
}

func unsupported(arg, value string) ErrorResult {
	return ErrorResult{Error: fmt.Sprintf("unsupported %s: %s", arg, value)}
}

// Paging selects one page of a list-shaped result.
type Paging struct {
	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
}

func (p Paging) apply(v any) any {
	page := 1
	if p.Page != nil {
		page = *p.Page
	}
	size := pagination.DefaultPageSize
	if p.PageSize != nil {
		size = *p.PageSize
	}
	return pagination.Paginate(v, page, size)
}

// bind adapts a typed tool function to the untyped MCP argument map.
func bind[T any](fn func(context.Context, T) any) mcp.ToolFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		var in T
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arguments: %w", err)
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("failed to decode arguments: %w", err)
		}
		return fn(ctx, in), nil
	}
}

// Paging bounds advertised to clients.
const (
	MaxPage     = 100000
	MaxPageSize = 1000
)

var (
	defaultPage     = 1
	defaultPageSize = pagination.DefaultPageSize
)

// withPaging adds the page and page_size properties to props.
func withPaging(props map[string]interface{}) map[string]interface{} {
	props["page"] = mcp.IntegerRangeProp("1-based page of the fetched list to return", 1, MaxPage, &defaultPage)
	props["page_size"] = mcp.IntegerRangeProp("Number of items per page", 1, MaxPageSize, &defaultPageSize)
	return props
}

const (
	chainIDDesc   = "Chain id, eg: eth, bsc, xdai"
	chainIDsDesc  = "Optional comma-separated list of chain ids, eg: eth,bsc,xdai"
	userIDDesc    = "User wallet address"
	tokenIDDesc   = "Token contract address or a native token id (eth, matic, bsc)"
	startDesc     = "Upstream offset of the first record"
	limitDesc     = "Upstream maximum number of records to fetch"
	isAllDesc     = "Include tokens that are not verified or have no price"
	startTimeDesc = "Unix timestamp; return records before this time"
)

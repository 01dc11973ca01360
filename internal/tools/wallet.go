package tools

import (
	"context"

	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// GasMarketArgs are the arguments of get_gas_market.
type GasMarketArgs struct {
	ChainID string `json:"chain_id"`
}

// GasMarket returns gas price levels for a chain.
func (ts *Toolset) GasMarket(ctx context.Context, in GasMarketArgs) any {
	return ts.api.Get(ctx, "/v1/wallet/gas_market", debank.NewParams().Set("chain_id", in.ChainID))
}

// ExplainTxArgs are the arguments of explain_tx.
type ExplainTxArgs struct {
	Tx map[string]any `json:"tx"`
}

type explainTxBody struct {
	Tx map[string]any `json:"tx"`
}

// ExplainTx decodes what a transaction would do.
func (ts *Toolset) ExplainTx(ctx context.Context, in ExplainTxArgs) any {
	if in.Tx == nil {
		return requiredFor("tx", "transaction explanation")
	}
	return ts.api.Post(ctx, "/v1/wallet/explain_tx", explainTxBody{Tx: in.Tx})
}

// SimulateTxArgs are the arguments of simulate_tx.
type SimulateTxArgs struct {
	Tx            map[string]any   `json:"tx"`
	PendingTxList []map[string]any `json:"pending_tx_list,omitempty"`
}

type simulateTxBody struct {
	Tx            map[string]any   `json:"tx"`
	PendingTxList []map[string]any `json:"pending_tx_list,omitempty"`
}

// SimulateTx pre-executes a transaction and returns the predicted balance changes.
func (ts *Toolset) SimulateTx(ctx context.Context, in SimulateTxArgs) any {
	if in.Tx == nil {
		return requiredFor("tx", "transaction simulation")
	}
	return ts.api.Post(ctx, "/v1/wallet/pre_exec_tx", simulateTxBody{Tx: in.Tx, PendingTxList: in.PendingTxList})
}

const txDesc = "Transaction object: chainId, from, to, value, data, gas, gasPrice, nonce (hex strings)"

func (ts *Toolset) gasMarketTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name:        "get_gas_market",
			Description: "Get gas prices for a chain as levels (slow, normal, fast, custom) with their price and estimated wait time.",
			InputSchema: mcp.ObjectSchema(map[string]interface{}{
				"chain_id": mcp.StringProp(chainIDDesc),
			}, "chain_id"),
		},
		Call: bind(ts.GasMarket),
	}
}

func (ts *Toolset) explainTxTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name:        "explain_tx",
			Description: "Explain a transaction: the ABI function it calls and the actions it performs.",
			InputSchema: mcp.ObjectSchema(map[string]interface{}{
				"tx": mcp.ObjectProp(txDesc),
			}, "tx"),
		},
		Call: bind(ts.ExplainTx),
	}
}

func (ts *Toolset) simulateTxTool() mcp.ToolHandler {
	return mcp.ToolHandler{
		Tool: mcp.Tool{
			Name: "simulate_tx",
			Description: "Simulate a transaction before signing: predicted balance changes, gas usage and whether it would fail. " +
				"pending_tx_list holds transactions that must execute first.",
			InputSchema: mcp.ObjectSchema(map[string]interface{}{
				"tx":              mcp.ObjectProp(txDesc),
				"pending_tx_list": mcp.ArrayProp("Transactions to execute before tx", mcp.ObjectProp(txDesc)),
			}, "tx"),
		},
		Call: bind(ts.SimulateTx),
	}
}

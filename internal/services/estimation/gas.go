package estimation

// Gas cost model for settling trades. The constants convert a route's hop
// count into a gas-unit estimate without simulating the settlement.
const (
	// GasSettlementOverhead is the fixed cost of executing an empty
	// settlement transaction.
	GasSettlementOverhead uint64 = 106_391

	// GasTradeOverhead is the additional cost of including a single trade in
	// a settlement.
	GasTradeOverhead uint64 = 66_315

	// GasSettlementSingleTrade is the total cost of settling one trade.
	GasSettlementSingleTrade = GasSettlementOverhead + GasTradeOverhead

	// GasErc20Transfer is the cost of one warm ERC20 transfer.
	GasErc20Transfer uint64 = 27_513

	// gasPerHop covers the two token transfers plus pool bookkeeping of one
	// extra hop beyond the first.
	gasPerHop = GasErc20Transfer*2 + 40_000
)

// EstimateGas converts the number of tokens visited by a route into a
// gas-unit estimate. The identity route (no tokens) costs nothing.
func EstimateGas(pathLen int) uint64 {
	if pathLen == 0 {
		return 0
	}
	hops := uint64(pathLen - 1)
	return GasSettlementSingleTrade + gasPerHop*hops
}

package estimation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-engine/internal/domain"
)

// Pools indexes a one-query pool snapshot by token pair. Pairs without an
// on-chain pool are simply absent.
type Pools map[domain.TokenPair][]*domain.Pool

// IndexPools groups a fetched pool list by token pair.
func IndexPools(pools []*domain.Pool) Pools {
	indexed := make(Pools, len(pools))
	for _, pool := range pools {
		indexed[pool.Tokens] = append(indexed[pool.Tokens], pool)
	}
	return indexed
}

// estimateBuyAmount walks a route forward, trading sellAmount hop by hop and
// picking the pool with the best output at each hop. ok is false when any hop
// has no usable pool; a route with a failing hop is wholly infeasible, never
// partially priced.
func estimateBuyAmount(sellAmount *big.Int, path []common.Address, pools Pools) (*big.Int, bool) {
	if len(path) < 2 {
		return nil, false
	}
	amount := sellAmount
	for i := 0; i+1 < len(path); i++ {
		pair, ok := domain.NewTokenPair(path[i], path[i+1])
		if !ok {
			return nil, false
		}
		var best *big.Int
		for _, pool := range pools[pair] {
			out, ok := pool.GetAmountOut(path[i], amount)
			if !ok {
				continue
			}
			if best == nil || out.Cmp(best) > 0 {
				best = out
			}
		}
		if best == nil || best.Sign() == 0 {
			return nil, false
		}
		amount = best
	}
	return amount, true
}

// estimateSellAmount walks a route backward from the target buyAmount,
// computing the required input at each hop and picking the pool demanding the
// least. Same all-or-nothing feasibility as estimateBuyAmount.
func estimateSellAmount(buyAmount *big.Int, path []common.Address, pools Pools) (*big.Int, bool) {
	if len(path) < 2 {
		return nil, false
	}
	amount := buyAmount
	for i := len(path) - 1; i > 0; i-- {
		pair, ok := domain.NewTokenPair(path[i-1], path[i])
		if !ok {
			return nil, false
		}
		var best *big.Int
		for _, pool := range pools[pair] {
			in, ok := pool.GetAmountIn(path[i], amount)
			if !ok {
				continue
			}
			if best == nil || in.Cmp(best) < 0 {
				best = in
			}
		}
		if best == nil {
			return nil, false
		}
		amount = best
	}
	return amount, true
}

// Package estimation prices trades against on-chain constant-product
// liquidity by ranking candidate routes under gas cost.
package estimation

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/services/sharing"
	"golang.org/x/sync/errgroup"
)

// Block specifies how fresh the pool snapshot for a query must be. A zero
// Number means the most recent state the fetcher can serve.
type Block struct {
	Number uint64
}

// PoolFetching supplies the point-in-time pool snapshot for a query. Pairs
// without an on-chain pool may be omitted from the result. The snapshot lives
// for exactly one query; recency-aware caching is the fetcher's concern.
type PoolFetching interface {
	Fetch(ctx context.Context, pairs []domain.TokenPair, block Block) ([]*domain.Pool, error)
}

// GasPriceEstimating supplies the effective gas price used to weigh routing
// overhead against price improvement.
type GasPriceEstimating interface {
	EstimateGasPrice(ctx context.Context) (float64, error)
}

// Estimate is the priced result of a query: the resulting amount, the gas the
// winning route costs, and the identity of the computing solver.
type Estimate struct {
	OutAmount *big.Int
	Gas       uint64
	Solver    common.Address
}

// Route is an Estimate together with the token path that produced it.
type Route struct {
	Path      []common.Address
	OutAmount *big.Int
	Gas       uint64
}

// BaselineEstimator is the on-chain best-execution search. For each query it
// fetches the gas price and a pool snapshot concurrently, enumerates the
// candidate routes, ranks them by net value in native-token units, and
// reports the winner's gas-free amount. Identical concurrent queries share
// one computation.
type BaselineEstimator struct {
	pools        PoolFetching
	gasEstimator GasPriceEstimating
	baseTokens   *BaseTokens

	// nativePriceEstimationAmount is the reference amount of native token
	// sold to derive a token's native price for gas-aware comparison.
	nativePriceEstimationAmount *big.Int
	solver                      common.Address

	sharing *sharing.RequestSharing[domain.QueryKey, *Route]
}

// NewBaselineEstimator wires the estimator to its collaborators.
func NewBaselineEstimator(
	pools PoolFetching,
	gasEstimator GasPriceEstimating,
	baseTokens *BaseTokens,
	nativePriceEstimationAmount *big.Int,
	solver common.Address,
) *BaselineEstimator {
	return &BaselineEstimator{
		pools:                       pools,
		gasEstimator:                gasEstimator,
		baseTokens:                  baseTokens,
		nativePriceEstimationAmount: nativePriceEstimationAmount,
		solver:                      solver,
		sharing:                     sharing.New[domain.QueryKey, *Route]("baseline"),
	}
}

// Estimate prices the query and returns the resulting amount with its gas
// estimate.
func (e *BaselineEstimator) Estimate(ctx context.Context, query *domain.Query) (*Estimate, error) {
	route, err := e.BestRoute(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Estimate{OutAmount: route.OutAmount, Gas: route.Gas, Solver: e.solver}, nil
}

// BestRoute runs the best-execution search and returns the winning route.
// Concurrent identical queries are coalesced into one search.
func (e *BaselineEstimator) BestRoute(ctx context.Context, query *domain.Query) (*Route, error) {
	return e.sharing.Shared(ctx, query.Key(), func(ctx context.Context) (*Route, error) {
		return e.bestRoute(ctx, query)
	})
}

func (e *BaselineEstimator) bestRoute(ctx context.Context, query *domain.Query) (*Route, error) {
	// sell == buy is the identity trade: nothing to route, nothing to pay.
	if query.SellToken == query.BuyToken {
		return &Route{OutAmount: new(big.Int).Set(query.InAmount), Gas: 0}, nil
	}

	var (
		gasPrice float64
		pools    Pools
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		price, err := e.gasEstimator.EstimateGasPrice(gctx)
		if err != nil {
			return &domain.ProtocolInternalError{Cause: err}
		}
		gasPrice = price
		return nil
	})
	g.Go(func() error {
		pairs := e.baseTokens.RelevantPairs(query.SellToken, query.BuyToken)
		fetched, err := e.pools.Fetch(gctx, pairs, Block{})
		if err != nil {
			return &domain.ProtocolInternalError{Cause: err}
		}
		pools = IndexPools(fetched)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	path, amount, err := e.bestPath(query, true, pools, gasPrice)
	if err != nil {
		return nil, err
	}
	return &Route{Path: path, OutAmount: amount, Gas: EstimateGas(len(path))}, nil
}

// bestPath selects the winning route and its gas-free resulting amount.
// considerGasCosts holds only for top-level calls; the recursive native-token
// pricing below runs with it disabled, which is what guarantees termination.
func (e *BaselineEstimator) bestPath(query *domain.Query, considerGasCosts bool, pools Pools, gasPrice float64) ([]common.Address, *big.Int, error) {
	if query.SellToken == query.BuyToken {
		return nil, new(big.Int).Set(query.InAmount), nil
	}

	switch query.Kind {
	case domain.OrderKindBuy:
		var sellTokenPrice *big.Rat
		if considerGasCosts {
			price, err := e.nativePrice(query.SellToken, gasPrice, pools)
			if err != nil {
				return nil, nil, err
			}
			sellTokenPrice = price
		}
		return e.bestExecutionBuyOrder(query.SellToken, query.BuyToken, query.InAmount, gasPrice, sellTokenPrice, pools)
	default:
		var buyTokenPrice *big.Rat
		if considerGasCosts {
			price, err := e.nativePrice(query.BuyToken, gasPrice, pools)
			if err != nil {
				return nil, nil, err
			}
			buyTokenPrice = price
		}
		return e.bestExecutionSellOrder(query.SellToken, query.BuyToken, query.InAmount, gasPrice, buyTokenPrice, pools)
	}
}

// nativePrice derives a token's price in native-token units by selling the
// reference native amount for it, explicitly without gas awareness.
func (e *BaselineEstimator) nativePrice(token common.Address, gasPrice float64, pools Pools) (*big.Rat, error) {
	if token == e.baseTokens.Native() {
		return big.NewRat(1, 1), nil
	}
	_, buyAmount, err := e.bestExecutionSellOrder(e.baseTokens.Native(), token, e.nativePriceEstimationAmount, gasPrice, nil, pools)
	if err != nil {
		return nil, err
	}
	if buyAmount.Sign() == 0 {
		return nil, domain.ErrNoLiquidity
	}
	return new(big.Rat).SetFrac(new(big.Int).Set(e.nativePriceEstimationAmount), buyAmount), nil
}

// bestExecutionSellOrder ranks candidates for a sell order. With a buy token
// price the key is out×price − gasCost, all in native units; without it the
// raw buy amount.
func (e *BaselineEstimator) bestExecutionSellOrder(sell, buy common.Address, sellAmount *big.Int, gasPrice float64, buyTokenPriceInNative *big.Rat, pools Pools) ([]common.Address, *big.Int, error) {
	gasPriceRat := ratFromFloat(gasPrice)
	comparison := func(buyAmount *big.Int, pathLen int) *big.Rat {
		if buyTokenPriceInNative == nil {
			return new(big.Rat).SetInt(buyAmount)
		}
		value := new(big.Rat).Mul(new(big.Rat).SetInt(buyAmount), buyTokenPriceInNative)
		txCost := new(big.Rat).Mul(gasPriceRat, new(big.Rat).SetUint64(EstimateGas(pathLen)))
		return value.Sub(value, txCost)
	}
	return e.bestExecution(sell, buy, sellAmount, estimateBuyAmount, comparison, pools)
}

// bestExecutionBuyOrder ranks candidates for a buy order. With a sell token
// price the key is −in×price − gasCost; without it −in, so the cheapest
// input wins.
func (e *BaselineEstimator) bestExecutionBuyOrder(sell, buy common.Address, buyAmount *big.Int, gasPrice float64, sellTokenPriceInNative *big.Rat, pools Pools) ([]common.Address, *big.Int, error) {
	gasPriceRat := ratFromFloat(gasPrice)
	comparison := func(sellAmount *big.Int, pathLen int) *big.Rat {
		if sellTokenPriceInNative == nil {
			return new(big.Rat).Neg(new(big.Rat).SetInt(sellAmount))
		}
		value := new(big.Rat).Mul(new(big.Rat).SetInt(sellAmount), sellTokenPriceInNative)
		value.Neg(value)
		txCost := new(big.Rat).Mul(gasPriceRat, new(big.Rat).SetUint64(EstimateGas(pathLen)))
		return value.Sub(value, txCost)
	}
	return e.bestExecution(sell, buy, buyAmount, estimateSellAmount, comparison, pools)
}

// bestExecution picks the candidate with the maximum comparison key.
// Infeasible candidates are skipped, never surfaced; the first-enumerated
// candidate wins ties. All candidates infeasible means ErrNoLiquidity.
func (e *BaselineEstimator) bestExecution(
	sell, buy common.Address,
	amount *big.Int,
	estimate func(*big.Int, []common.Address, Pools) (*big.Int, bool),
	comparison func(*big.Int, int) *big.Rat,
	pools Pools,
) ([]common.Address, *big.Int, error) {
	var (
		bestPath  []common.Address
		bestValue *big.Int
		bestKey   *big.Rat
	)
	for _, path := range e.baseTokens.PathCandidates(sell, buy) {
		value, ok := estimate(amount, path, pools)
		if !ok {
			continue
		}
		key := comparison(value, len(path))
		if bestKey == nil || key.Cmp(bestKey) > 0 {
			bestPath, bestValue, bestKey = path, value, key
		}
	}
	if bestPath == nil {
		return nil, nil, domain.ErrNoLiquidity
	}
	return bestPath, bestValue, nil
}

// ratFromFloat converts the float gas price into the arbitrary-precision
// representation exactly once; float and integer amounts are never mixed
// directly.
func ratFromFloat(f float64) *big.Rat {
	if rat := new(big.Rat).SetFloat64(f); rat != nil {
		return rat
	}
	return new(big.Rat)
}

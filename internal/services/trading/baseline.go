package trading

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/services/estimation"
)

// BaselineFinder serves quotes and trades from the on-chain best-execution
// search. Trades are executed through a v2-style router, so the router is
// both the swap target and the required spender.
type BaselineFinder struct {
	estimator  *estimation.BaselineEstimator
	router     common.Address
	settlement common.Address
	solver     common.Address
}

// NewBaselineFinder builds the on-chain liquidity adapter.
func NewBaselineFinder(estimator *estimation.BaselineEstimator, router, settlement, solver common.Address) *BaselineFinder {
	return &BaselineFinder{
		estimator:  estimator,
		router:     router,
		settlement: settlement,
		solver:     solver,
	}
}

// GetQuote prices the query against on-chain liquidity.
func (f *BaselineFinder) GetQuote(ctx context.Context, query *domain.Query) (*Quote, error) {
	route, err := f.estimator.BestRoute(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Quote{OutAmount: route.OutAmount, GasEstimate: route.Gas, Solver: f.solver}, nil
}

// GetTrade prices the query and assembles the router calls executing the
// winning route.
func (f *BaselineFinder) GetTrade(ctx context.Context, query *domain.Query) (*Trade, error) {
	route, err := f.estimator.BestRoute(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(route.Path) == 0 {
		// Identity trade: nothing to execute.
		return &Trade{OutAmount: route.OutAmount, GasEstimate: route.Gas, Solver: f.solver}, nil
	}

	var callData []byte
	switch query.Kind {
	case domain.OrderKindBuy:
		callData, err = EncodeSwapTokensForExactTokens(query.InAmount, route.OutAmount, route.Path, f.settlement)
	default:
		callData, err = EncodeSwapExactTokensForTokens(query.InAmount, route.OutAmount, route.Path, f.settlement)
	}
	if err != nil {
		return nil, err
	}

	spender := f.router
	swap := Interaction{Target: f.router, Value: big.NewInt(0), CallData: callData}
	return BuildSwap(query.SellToken, route.OutAmount, route.Gas, &spender, swap, f.solver), nil
}

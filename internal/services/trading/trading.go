// Package trading defines the uniform quote/trade capability every liquidity
// source adapter exposes, plus the executable-trade composition helpers.
package trading

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/price-engine/internal/domain"
)

// Quote is a priced estimate with no executable call data.
type Quote struct {
	OutAmount   *big.Int
	GasEstimate uint64
	Solver      common.Address
}

// Interaction is one on-chain call of a trade.
type Interaction struct {
	Target   common.Address
	Value    *big.Int
	CallData []byte
}

// Trade is a Quote plus the concrete calls needed to execute it. Approval, if
// set, is the spender the settlement contract must have approved for the sell
// token.
type Trade struct {
	OutAmount    *big.Int
	GasEstimate  uint64
	Solver       common.Address
	Approval     *common.Address
	Interactions []Interaction
}

// TradeFinding is the capability contract of a liquidity source. Adapters
// report failures through the shared taxonomy in the domain package.
type TradeFinding interface {
	GetQuote(ctx context.Context, query *domain.Query) (*Quote, error)
	GetTrade(ctx context.Context, query *domain.Query) (*Trade, error)
}

// BuildSwap composes a trade around a single swap interaction. When a spender
// is required the sell token allowance is reset then raised ahead of the
// swap, matching how settlements set up approvals.
func BuildSwap(sellToken common.Address, outAmount *big.Int, gasEstimate uint64, spender *common.Address, swap Interaction, solver common.Address) *Trade {
	trade := &Trade{
		OutAmount:   outAmount,
		GasEstimate: gasEstimate,
		Solver:      solver,
		Approval:    spender,
	}
	if spender != nil {
		trade.Interactions = append(trade.Interactions,
			Interaction{Target: sellToken, Value: big.NewInt(0), CallData: EncodeApprove(*spender, big.NewInt(0))},
			Interaction{Target: sellToken, Value: big.NewInt(0), CallData: EncodeApprove(*spender, MaxUint256())},
		)
	}
	trade.Interactions = append(trade.Interactions, swap)
	return trade
}

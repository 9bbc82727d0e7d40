package http

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/http/httputil"
)

// PriceRequest carries the parameters shared by the quote and trade
// endpoints. Amounts are decimal strings in the token's smallest unit.
type PriceRequest struct {
	SellToken string `form:"sellToken" json:"sellToken" binding:"required"`
	BuyToken  string `form:"buyToken" json:"buyToken" binding:"required"`
	Amount    string `form:"amount" json:"amount" binding:"required"`

	// Kind is "sell" (amount is the exact input) or "buy" (amount is the
	// exact output). Default: sell.
	Kind string `form:"kind" json:"kind"`

	// Strategy selects the liquidity source: "baseline" or "oneinch".
	// Default: baseline.
	Strategy string `form:"strategy" json:"strategy"`
}

func (r *PriceRequest) toQuery() (*domain.Query, error) {
	if !common.IsHexAddress(r.SellToken) {
		return nil, fmt.Errorf("malformed sellToken %q", r.SellToken)
	}
	if !common.IsHexAddress(r.BuyToken) {
		return nil, fmt.Errorf("malformed buyToken %q", r.BuyToken)
	}

	amount, ok := new(big.Int).SetString(r.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be a positive integer, got %q", r.Amount)
	}

	var kind domain.OrderKind
	switch r.Kind {
	case "", "sell":
		kind = domain.OrderKindSell
	case "buy":
		kind = domain.OrderKindBuy
	default:
		return nil, fmt.Errorf("kind must be sell or buy, got %q", r.Kind)
	}

	return &domain.Query{
		SellToken: common.HexToAddress(r.SellToken),
		BuyToken:  common.HexToAddress(r.BuyToken),
		InAmount:  amount,
		Kind:      kind,
	}, nil
}

// handleDomainError maps the shared error taxonomy onto HTTP statuses.
func handleDomainError(c *gin.Context, err error) {
	var unsupported *domain.UnsupportedOrderTypeError
	switch {
	case errors.Is(err, domain.ErrNoLiquidity):
		httputil.HandleNotFound(c, "no route with sufficient liquidity")
	case errors.Is(err, domain.ErrRateLimited):
		httputil.HandleTooManyRequests(c, "liquidity source rate limited")
	case errors.As(err, &unsupported):
		httputil.HandleBadRequest(c, err.Error())
	default:
		httputil.HandleInternalError(c, err.Error())
	}
}

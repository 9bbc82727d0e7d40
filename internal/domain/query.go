package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderKind determines which side of a trade the fixed amount refers to.
type OrderKind uint8

const (
	// OrderKindSell fixes the sell amount, the buy amount is estimated.
	OrderKindSell OrderKind = iota
	// OrderKindBuy fixes the buy amount, the sell amount is estimated.
	OrderKindBuy
)

func (k OrderKind) String() string {
	switch k {
	case OrderKindSell:
		return "sell"
	case OrderKindBuy:
		return "buy"
	default:
		return "UNKNOWN"
	}
}

// Verification carries optional data identifying the trader so that a quote
// can later be verified against the actual order.
type Verification struct {
	From     common.Address
	Receiver common.Address
}

// Query describes a hypothetical trade to be priced. InAmount is the sell
// amount for sell orders and the buy amount for buy orders; it must be
// strictly positive.
type Query struct {
	SellToken    common.Address
	BuyToken     common.Address
	InAmount     *big.Int
	Kind         OrderKind
	Verification *Verification
}

// QueryKey is a value-comparable projection of a Query. big.Int pointers are
// not comparable so the amount is rendered as its decimal string; two queries
// with equal fields always produce the same key.
type QueryKey struct {
	SellToken common.Address
	BuyToken  common.Address
	InAmount  string
	Kind      OrderKind
	Verified  bool
	From      common.Address
	Receiver  common.Address
}

// Key returns the coalescing key for the query.
func (q *Query) Key() QueryKey {
	key := QueryKey{
		SellToken: q.SellToken,
		BuyToken:  q.BuyToken,
		InAmount:  q.InAmount.String(),
		Kind:      q.Kind,
	}
	if q.Verification != nil {
		key.Verified = true
		key.From = q.Verification.From
		key.Receiver = q.Verification.Receiver
	}
	return key
}

package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DefaultPoolFeeBps is the constant-product fee taken by a standard v2-style
// pool, in basis points.
const DefaultPoolFeeBps = 30

var basisPointDivisor = big.NewInt(10000)

// TokenPair is an unordered token pair canonicalized so that Token0 sorts
// below Token1. Two pairs over the same tokens always compare equal and are
// therefore usable as map keys.
type TokenPair struct {
	Token0 common.Address
	Token1 common.Address
}

// NewTokenPair builds the canonical pair for two distinct tokens. ok is false
// when both tokens are identical.
func NewTokenPair(a, b common.Address) (TokenPair, bool) {
	switch a.Cmp(b) {
	case -1:
		return TokenPair{Token0: a, Token1: b}, true
	case 1:
		return TokenPair{Token0: b, Token1: a}, true
	default:
		return TokenPair{}, false
	}
}

// Contains reports whether token is one of the pair's tokens.
func (p TokenPair) Contains(token common.Address) bool {
	return p.Token0 == token || p.Token1 == token
}

// Other returns the pair's counterpart of token.
func (p TokenPair) Other(token common.Address) common.Address {
	if p.Token0 == token {
		return p.Token1
	}
	return p.Token0
}

// Pool is a point-in-time snapshot of one constant-product liquidity venue.
// Reserve0/Reserve1 are tied to Tokens.Token0/Tokens.Token1 respectively. A
// pool with a zero reserve is unusable; its amount methods report !ok instead
// of pretending infinite liquidity.
type Pool struct {
	Address  common.Address
	Tokens   TokenPair
	Reserve0 *big.Int
	Reserve1 *big.Int
	FeeBps   uint32
}

// NewPool builds a pool snapshot with the default v2 fee. reserveA belongs to
// tokenA regardless of canonical pair ordering.
func NewPool(address, tokenA, tokenB common.Address, reserveA, reserveB *big.Int) (*Pool, bool) {
	pair, ok := NewTokenPair(tokenA, tokenB)
	if !ok {
		return nil, false
	}
	pool := &Pool{Address: address, Tokens: pair, FeeBps: DefaultPoolFeeBps}
	if pair.Token0 == tokenA {
		pool.Reserve0, pool.Reserve1 = reserveA, reserveB
	} else {
		pool.Reserve0, pool.Reserve1 = reserveB, reserveA
	}
	return pool, true
}

// reserves returns (reserveIn, reserveOut) for a trade entering with tokenIn.
func (p *Pool) reserves(tokenIn common.Address) (*big.Int, *big.Int, bool) {
	switch tokenIn {
	case p.Tokens.Token0:
		return p.Reserve0, p.Reserve1, true
	case p.Tokens.Token1:
		return p.Reserve1, p.Reserve0, true
	default:
		return nil, nil, false
	}
}

// GetAmountOut computes the output amount for swapping amountIn of tokenIn
// through the pool, net of fee. ok is false when the pool does not carry
// tokenIn, a reserve is zero, or the arithmetic exceeds 256 bits.
func (p *Pool) GetAmountOut(tokenIn common.Address, amountIn *big.Int) (*big.Int, bool) {
	reserveIn, reserveOut, ok := p.reserves(tokenIn)
	if !ok || amountIn == nil || amountIn.Sign() <= 0 {
		return nil, false
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, false
	}

	feeMultiplier := new(big.Int).Sub(basisPointDivisor, big.NewInt(int64(p.FeeBps)))
	amountInWithFee := new(big.Int).Mul(amountIn, feeMultiplier)
	numerator := new(big.Int).Mul(reserveOut, amountInWithFee)
	denominator := new(big.Int).Mul(reserveIn, basisPointDivisor)
	denominator.Add(denominator, amountInWithFee)
	if !fitsUint256(amountInWithFee) || !fitsUint256(denominator) {
		return nil, false
	}

	out := numerator.Div(numerator, denominator)
	if !fitsUint256(out) {
		return nil, false
	}
	return out, true
}

// GetAmountIn computes the input amount required to receive amountOut of
// tokenOut from the pool, net of fee. ok is false when the pool does not
// carry tokenOut, a reserve is zero, the requested output would drain the
// reserve, or the arithmetic exceeds 256 bits.
func (p *Pool) GetAmountIn(tokenOut common.Address, amountOut *big.Int) (*big.Int, bool) {
	reserveOut, reserveIn, ok := p.reserves(tokenOut)
	if !ok || amountOut == nil || amountOut.Sign() <= 0 {
		return nil, false
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, false
	}

	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, basisPointDivisor)
	feeMultiplier := new(big.Int).Sub(basisPointDivisor, big.NewInt(int64(p.FeeBps)))
	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeMultiplier)
	if denominator.Sign() == 0 || !fitsUint256(numerator) {
		return nil, false
	}

	in := numerator.Div(numerator, denominator)
	in.Add(in, big.NewInt(1))
	if !fitsUint256(in) {
		return nil, false
	}
	return in, true
}

// fitsUint256 reports whether x is representable as an EVM word.
func fitsUint256(x *big.Int) bool {
	_, overflow := uint256.FromBig(x)
	return !overflow
}

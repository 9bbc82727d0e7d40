package trading

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/services/estimation"
)

type staticPools []*domain.Pool

func (p staticPools) Fetch(context.Context, []domain.TokenPair, estimation.Block) ([]*domain.Pool, error) {
	return p, nil
}

type staticGasPrice float64

func (g staticGasPrice) EstimateGasPrice(context.Context) (float64, error) {
	return float64(g), nil
}

func newTestFinder(t *testing.T, pools []*domain.Pool, native common.Address) (*BaselineFinder, common.Address, common.Address) {
	t.Helper()
	router := common.HexToAddress("0x7a250d5630b4cf539739df2c5dacb4c659f2488d")
	settlement := common.HexToAddress("0x9008d19f58aabd9ed0d60971565aa8510560ab41")
	estimator := estimation.NewBaselineEstimator(
		staticPools(pools),
		staticGasPrice(0),
		estimation.NewBaseTokens(native, nil),
		big.NewInt(10),
		common.Address{1},
	)
	return NewBaselineFinder(estimator, router, settlement, common.Address{1}), router, settlement
}

func TestBaselineFinderSellTrade(t *testing.T) {
	tokenA := common.BytesToAddress([]byte{0x0a})
	tokenB := common.BytesToAddress([]byte{0x0b})
	pool, ok := domain.NewPool(common.Address{9}, tokenA, tokenB, big.NewInt(100_000), big.NewInt(100_000))
	require.True(t, ok)

	finder, router, settlement := newTestFinder(t, []*domain.Pool{pool}, tokenA)

	query := &domain.Query{
		SellToken: tokenA,
		BuyToken:  tokenB,
		InAmount:  big.NewInt(1000),
		Kind:      domain.OrderKindSell,
	}
	trade, err := finder.GetTrade(context.Background(), query)
	require.NoError(t, err)

	expectedOut, ok := pool.GetAmountOut(tokenA, big.NewInt(1000))
	require.True(t, ok)
	require.Equal(t, expectedOut, trade.OutAmount)
	require.Equal(t, estimation.EstimateGas(2), trade.GasEstimate)
	require.NotNil(t, trade.Approval)
	require.Equal(t, router, *trade.Approval)

	// Approval reset, unlimited approval, then the router swap.
	require.Len(t, trade.Interactions, 3)
	require.Equal(t, tokenA, trade.Interactions[0].Target)
	require.Equal(t, tokenA, trade.Interactions[1].Target)
	require.Equal(t, router, trade.Interactions[2].Target)

	expectedCall, err := EncodeSwapExactTokensForTokens(query.InAmount, expectedOut, []common.Address{tokenA, tokenB}, settlement)
	require.NoError(t, err)
	require.Equal(t, expectedCall, trade.Interactions[2].CallData)
}

func TestBaselineFinderBuyTrade(t *testing.T) {
	tokenA := common.BytesToAddress([]byte{0x0a})
	tokenB := common.BytesToAddress([]byte{0x0b})
	pool, ok := domain.NewPool(common.Address{9}, tokenA, tokenB, big.NewInt(100_000), big.NewInt(100_000))
	require.True(t, ok)

	finder, _, settlement := newTestFinder(t, []*domain.Pool{pool}, tokenA)

	query := &domain.Query{
		SellToken: tokenA,
		BuyToken:  tokenB,
		InAmount:  big.NewInt(987),
		Kind:      domain.OrderKindBuy,
	}
	trade, err := finder.GetTrade(context.Background(), query)
	require.NoError(t, err)

	expectedIn, ok := pool.GetAmountIn(tokenB, big.NewInt(987))
	require.True(t, ok)
	require.Equal(t, expectedIn, trade.OutAmount)

	expectedCall, err := EncodeSwapTokensForExactTokens(query.InAmount, expectedIn, []common.Address{tokenA, tokenB}, settlement)
	require.NoError(t, err)
	require.Equal(t, expectedCall, trade.Interactions[2].CallData)
}

func TestBaselineFinderIdentityTrade(t *testing.T) {
	token := common.BytesToAddress([]byte{0x0a})
	finder, _, _ := newTestFinder(t, nil, token)

	trade, err := finder.GetTrade(context.Background(), &domain.Query{
		SellToken: token,
		BuyToken:  token,
		InAmount:  big.NewInt(42),
		Kind:      domain.OrderKindSell,
	})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), trade.OutAmount)
	require.Zero(t, trade.GasEstimate)
	require.Nil(t, trade.Approval)
	require.Empty(t, trade.Interactions)
}

func TestBaselineFinderQuoteNoLiquidity(t *testing.T) {
	tokenA := common.BytesToAddress([]byte{0x0a})
	tokenB := common.BytesToAddress([]byte{0x0b})
	finder, _, _ := newTestFinder(t, nil, tokenA)

	_, err := finder.GetQuote(context.Background(), &domain.Query{
		SellToken: tokenA,
		BuyToken:  tokenB,
		InAmount:  big.NewInt(1),
		Kind:      domain.OrderKindSell,
	})
	require.ErrorIs(t, err, domain.ErrNoLiquidity)
}

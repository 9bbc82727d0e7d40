package blockchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/services/estimation"
)

// fakeCaller serves getPair and getReserves from in-memory state.
type fakeCaller struct {
	factory  common.Address
	pairs    map[domain.TokenPair]common.Address
	reserves map[common.Address][2]*big.Int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if *msg.To == f.factory {
		args, err := factoryABI.Methods["getPair"].Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		pair, _ := domain.NewTokenPair(args[0].(common.Address), args[1].(common.Address))
		return factoryABI.Methods["getPair"].Outputs.Pack(f.pairs[pair])
	}
	r := f.reserves[*msg.To]
	return pairABI.Methods["getReserves"].Outputs.Pack(r[0], r[1], uint32(0))
}

func TestFetchReadsDeployedPairs(t *testing.T) {
	factory := common.BytesToAddress([]byte{0xff})
	tokenA := common.BytesToAddress([]byte{1})
	tokenB := common.BytesToAddress([]byte{2})
	tokenC := common.BytesToAddress([]byte{3})
	pairAddr := common.BytesToAddress([]byte{0xaa})

	pairAB, _ := domain.NewTokenPair(tokenA, tokenB)
	pairAC, _ := domain.NewTokenPair(tokenA, tokenC)

	caller := &fakeCaller{
		factory: factory,
		pairs:   map[domain.TokenPair]common.Address{pairAB: pairAddr},
		reserves: map[common.Address][2]*big.Int{
			pairAddr: {big.NewInt(1000), big.NewInt(2000)},
		},
	}

	fetcher := NewPoolFetcher(caller, factory)
	pools, err := fetcher.Fetch(context.Background(), []domain.TokenPair{pairAB, pairAC}, estimation.Block{})
	require.NoError(t, err)

	// The undeployed pair is omitted, not an error.
	require.Len(t, pools, 1)
	require.Equal(t, pairAddr, pools[0].Address)
	require.Equal(t, pairAB, pools[0].Tokens)
	require.Equal(t, big.NewInt(1000), pools[0].Reserve0)
	require.Equal(t, big.NewInt(2000), pools[0].Reserve1)
}

func TestGasPriceEstimatorConvertsWei(t *testing.T) {
	estimator := NewGasPriceEstimator(suggesterFunc(func(context.Context) (*big.Int, error) {
		return big.NewInt(15_000_000_000), nil
	}))

	price, err := estimator.EstimateGasPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, 15_000_000_000.0, price)
}

type suggesterFunc func(ctx context.Context) (*big.Int, error)

func (f suggesterFunc) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f(ctx)
}

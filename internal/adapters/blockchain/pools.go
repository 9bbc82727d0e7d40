// Package blockchain reads constant-product pool state and gas prices from
// an EVM node over JSON-RPC.
package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/metrics"
	"github.com/hxuan190/price-engine/internal/services/estimation"
)

const factoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"}
    ],
    "name": "getPair",
    "outputs": [{"internalType": "address", "name": "pair", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const pairABIJSON = `[
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint112", "name": "reserve0", "type": "uint112"},
      {"internalType": "uint112", "name": "reserve1", "type": "uint112"},
      {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	factoryABI = mustParseABI(factoryABIJSON)
	pairABI    = mustParseABI(pairABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// fetchConcurrency caps the in-flight RPC calls of one snapshot.
const fetchConcurrency = 8

// ContractCaller is the slice of the node client the fetcher needs;
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PoolFetcher reads v2-style pair reserves through a factory contract. Pairs
// the factory has never deployed are omitted from the snapshot.
type PoolFetcher struct {
	caller  ContractCaller
	factory common.Address
}

// NewPoolFetcher builds a fetcher over the given factory.
func NewPoolFetcher(caller ContractCaller, factory common.Address) *PoolFetcher {
	return &PoolFetcher{caller: caller, factory: factory}
}

// Fetch reads the reserves of every deployed pair at the given block. A zero
// block number means the latest state.
func (f *PoolFetcher) Fetch(ctx context.Context, pairs []domain.TokenPair, block estimation.Block) ([]*domain.Pool, error) {
	var blockNumber *big.Int
	if block.Number != 0 {
		blockNumber = new(big.Int).SetUint64(block.Number)
	}

	var (
		mu    sync.Mutex
		pools []*domain.Pool
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for _, pair := range pairs {
		group.Go(func() error {
			pool, err := f.fetchPair(gctx, pair, blockNumber)
			if err != nil {
				return err
			}
			if pool == nil {
				return nil
			}
			mu.Lock()
			pools = append(pools, pool)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	metrics.PoolsFetched.Observe(float64(len(pools)))
	return pools, nil
}

func (f *PoolFetcher) fetchPair(ctx context.Context, pair domain.TokenPair, blockNumber *big.Int) (*domain.Pool, error) {
	pairAddress, err := f.getPair(ctx, pair, blockNumber)
	if err != nil {
		return nil, err
	}
	if pairAddress == (common.Address{}) {
		// Factory never deployed this pair.
		return nil, nil
	}

	reserve0, reserve1, err := f.getReserves(ctx, pairAddress, blockNumber)
	if err != nil {
		return nil, err
	}
	// The pair contract orders reserves by ascending token address, which is
	// exactly the canonical pair order.
	pool, ok := domain.NewPool(pairAddress, pair.Token0, pair.Token1, reserve0, reserve1)
	if !ok {
		return nil, fmt.Errorf("pair %s has identical tokens", pairAddress)
	}
	return pool, nil
}

func (f *PoolFetcher) getPair(ctx context.Context, pair domain.TokenPair, blockNumber *big.Int) (common.Address, error) {
	data, err := factoryABI.Pack("getPair", pair.Token0, pair.Token1)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPair: %w", err)
	}
	resp, err := f.caller.CallContract(ctx, ethereum.CallMsg{To: &f.factory, Data: data}, blockNumber)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPair: %w", err)
	}
	values, err := factoryABI.Unpack("getPair", resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack getPair: %w", err)
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("getPair return size %d", len(values))
	}
	address, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getPair unexpected type %T", values[0])
	}
	return address, nil
}

func (f *PoolFetcher) getReserves(ctx context.Context, pair common.Address, blockNumber *big.Int) (*big.Int, *big.Int, error) {
	data, err := pairABI.Pack("getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("pack getReserves: %w", err)
	}
	resp, err := f.caller.CallContract(ctx, ethereum.CallMsg{To: &pair, Data: data}, blockNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("call getReserves: %w", err)
	}
	values, err := pairABI.Unpack("getReserves", resp)
	if err != nil {
		return nil, nil, fmt.Errorf("unpack getReserves: %w", err)
	}
	if len(values) != 3 {
		return nil, nil, fmt.Errorf("getReserves return size %d", len(values))
	}
	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("getReserves unexpected types %T, %T", values[0], values[1])
	}
	return reserve0, reserve1, nil
}

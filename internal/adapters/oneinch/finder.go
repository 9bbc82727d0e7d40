package oneinch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/services/cache"
	"github.com/hxuan190/price-engine/internal/services/estimation"
	"github.com/hxuan190/price-engine/internal/services/sharing"
	"github.com/hxuan190/price-engine/internal/services/trading"
)

// DefaultCacheMaxAge bounds how stale the cached spender address and
// liquidity source list may get before they are refetched.
const DefaultCacheMaxAge = 30 * time.Second

// internalQuery keys quote coalescing. Two requests share one upstream call
// only when both the order and the allowed protocol set match.
type internalQuery struct {
	key       domain.QueryKey
	protocols string
}

// TradeFinder prices sell orders against the aggregator and assembles the
// returned calldata into executable trades.
type TradeFinder struct {
	client            Client
	disabledProtocols []string
	referrer          *common.Address
	solver            common.Address
	settlement        common.Address
	cacheMaxAge       time.Duration

	spender   cache.CachedValue[common.Address]
	protocols cache.CachedValue[[]string]
	sharing   *sharing.RequestSharing[internalQuery, *trading.Quote]
}

// NewTradeFinder builds an aggregator-backed trade finder. disabledProtocols
// names liquidity sources that must never appear in a route; when empty the
// aggregator routes freely and no source list is fetched.
func NewTradeFinder(client Client, disabledProtocols []string, referrer *common.Address, solver, settlement common.Address, cacheMaxAge time.Duration) *TradeFinder {
	if cacheMaxAge <= 0 {
		cacheMaxAge = DefaultCacheMaxAge
	}
	return &TradeFinder{
		client:            client,
		disabledProtocols: disabledProtocols,
		referrer:          referrer,
		solver:            solver,
		settlement:        settlement,
		cacheMaxAge:       cacheMaxAge,
		sharing:           sharing.New[internalQuery, *trading.Quote]("oneinch"),
	}
}

// GetQuote prices a sell order. Buy orders are rejected before any network
// traffic.
func (f *TradeFinder) GetQuote(ctx context.Context, query *domain.Query) (*trading.Quote, error) {
	allowed, err := f.verifyQueryAndGetProtocols(ctx, query)
	if err != nil {
		return nil, err
	}
	return f.sharedQuote(ctx, query, allowed)
}

// GetTrade prices a sell order and fetches the swap calldata plus the spender
// to approve, concurrently.
func (f *TradeFinder) GetTrade(ctx context.Context, query *domain.Query) (*trading.Trade, error) {
	allowed, err := f.verifyQueryAndGetProtocols(ctx, query)
	if err != nil {
		return nil, err
	}

	var (
		quote   *trading.Quote
		spender common.Address
		swap    *Swap
	)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		quote, err = f.sharedQuote(gctx, query, allowed)
		return err
	})
	group.Go(func() error {
		var err error
		spender, err = f.getSpender(gctx)
		return err
	})
	group.Go(func() error {
		var err error
		swap, err = f.getSwap(gctx, query, allowed)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return trading.BuildSwap(
		query.SellToken,
		quote.OutAmount,
		quote.GasEstimate,
		&spender,
		trading.Interaction{Target: swap.Tx.To, Value: swap.Tx.Value, CallData: swap.Tx.Data},
		f.solver,
	), nil
}

// verifyQueryAndGetProtocols rejects unsupported orders and resolves the
// allowed protocol list. A nil list means no restriction.
func (f *TradeFinder) verifyQueryAndGetProtocols(ctx context.Context, query *domain.Query) ([]string, error) {
	if query.Kind == domain.OrderKindBuy {
		return nil, &domain.UnsupportedOrderTypeError{Reason: "buy order"}
	}
	if len(f.disabledProtocols) == 0 {
		return nil, nil
	}

	enabled, err := f.protocols.GetOrRefresh(ctx, f.cacheMaxAge, func(ctx context.Context) ([]string, error) {
		sources, err := f.client.GetLiquiditySources(ctx)
		if err != nil {
			return nil, classifyError(err)
		}
		return sources, nil
	})
	if err != nil {
		return nil, err
	}

	disabled := make(map[string]struct{}, len(f.disabledProtocols))
	for _, name := range f.disabledProtocols {
		disabled[strings.ToLower(name)] = struct{}{}
	}
	allowed := make([]string, 0, len(enabled))
	for _, source := range enabled {
		if _, skip := disabled[strings.ToLower(source)]; !skip {
			allowed = append(allowed, source)
		}
	}
	return allowed, nil
}

func (f *TradeFinder) sharedQuote(ctx context.Context, query *domain.Query, allowed []string) (*trading.Quote, error) {
	key := internalQuery{key: query.Key(), protocols: strings.Join(allowed, ",")}
	return f.sharing.Shared(ctx, key, func(ctx context.Context) (*trading.Quote, error) {
		return f.performQuote(ctx, query, allowed)
	})
}

func (f *TradeFinder) performQuote(ctx context.Context, query *domain.Query, allowed []string) (*trading.Quote, error) {
	quote, err := f.client.GetSellOrderQuote(ctx, SellOrderQuoteQuery{
		SellToken: query.SellToken,
		BuyToken:  query.BuyToken,
		Amount:    query.InAmount,
		Protocols: allowed,
		Referrer:  f.referrer,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return &trading.Quote{
		OutAmount:   quote.ToTokenAmount,
		GasEstimate: estimation.GasSettlementOverhead + quote.EstimatedGas,
		Solver:      f.solver,
	}, nil
}

func (f *TradeFinder) getSpender(ctx context.Context) (common.Address, error) {
	return f.spender.GetOrRefresh(ctx, f.cacheMaxAge, func(ctx context.Context) (common.Address, error) {
		spender, err := f.client.GetSpender(ctx)
		if err != nil {
			return common.Address{}, classifyError(err)
		}
		return spender.Address, nil
	})
}

func (f *TradeFinder) getSwap(ctx context.Context, query *domain.Query, allowed []string) (*Swap, error) {
	swap, err := f.client.GetSwap(ctx, SwapQuery{
		SellToken: query.SellToken,
		BuyToken:  query.BuyToken,
		Amount:    query.InAmount,
		From:      f.settlement,
		Protocols: allowed,
		Slippage:  SlippageOnePercent,
		Referrer:  f.referrer,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return swap, nil
}

// classifyError maps aggregator failures onto the shared taxonomy. Anything
// unrecognized is passed through with its cause intact.
func classifyError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return domain.ErrRateLimited
		case apiErr.IsInsufficientLiquidity():
			return domain.ErrNoLiquidity
		}
	}
	return err
}

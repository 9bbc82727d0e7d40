// Package engine assembles the pricing strategies and dispatches quote and
// trade requests to them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/price-engine/internal/adapters/blockchain"
	"github.com/hxuan190/price-engine/internal/adapters/oneinch"
	pkgcommon "github.com/hxuan190/price-engine/internal/common"
	"github.com/hxuan190/price-engine/internal/config"
	"github.com/hxuan190/price-engine/internal/domain"
	"github.com/hxuan190/price-engine/internal/metrics"
	"github.com/hxuan190/price-engine/internal/services/estimation"
	"github.com/hxuan190/price-engine/internal/services/trading"
)

const ENGINE_SERVICE = "engine-service"

// Strategy selects which liquidity source answers a request.
type Strategy string

const (
	// StrategyBaseline prices against on-chain constant-product pools.
	StrategyBaseline Strategy = "baseline"
	// StrategyOneInch prices through the external aggregator.
	StrategyOneInch Strategy = "oneinch"
)

// ParseStrategy resolves a request parameter into a Strategy, defaulting to
// baseline.
func ParseStrategy(raw string) (Strategy, error) {
	switch raw {
	case "", string(StrategyBaseline):
		return StrategyBaseline, nil
	case string(StrategyOneInch):
		return StrategyOneInch, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", raw)
	}
}

// Service owns the estimator and the trade finders. It is the single entry
// point the HTTP layer talks to.
type Service struct {
	container.BaseDIInstance

	logger    *pkgcommon.ServiceLogger
	chainConf *config.ChainConfig
	aggConf   *config.AggregatorConfig

	client    *ethclient.Client
	estimator *estimation.BaselineEstimator
	finders   map[Strategy]trading.TradeFinding
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	generalConf := c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	svc.chainConf = c.GetConfig(config.CHAIN_CONFIG_KEY).(*config.ChainConfig)
	svc.aggConf = c.GetConfig(config.AGGREGATOR_CONFIG_KEY).(*config.AggregatorConfig)
	if generalConf == nil || svc.chainConf == nil || svc.aggConf == nil {
		return errors.New("invalid engine config")
	}

	svc.logger = pkgcommon.NewServiceLogger(svc)
	svc.logger.SetDebugMode(generalConf.Env != config.ProdEnv)
	svc.logger.EnableLogForServices([]string{ENGINE_SERVICE})

	client, err := ethclient.Dial(svc.chainConf.RPCUrl)
	if err != nil {
		return fmt.Errorf("dial rpc: %w", err)
	}
	svc.client = client

	native := common.HexToAddress(svc.chainConf.NativeToken)
	bases := make([]common.Address, 0, len(svc.chainConf.BaseTokenAddresses()))
	for _, token := range svc.chainConf.BaseTokenAddresses() {
		bases = append(bases, common.HexToAddress(token))
	}
	baseTokens := estimation.NewBaseTokens(native, bases)

	nativePriceAmount, ok := new(big.Int).SetString(svc.chainConf.NativePriceEstimationAmount, 10)
	if !ok {
		return errors.New("invalid native price estimation amount")
	}

	solver := common.HexToAddress(svc.chainConf.SolverAddress)
	settlement := common.HexToAddress(svc.chainConf.SettlementAddress)

	svc.estimator = estimation.NewBaselineEstimator(
		blockchain.NewPoolFetcher(client, common.HexToAddress(svc.chainConf.FactoryAddress)),
		blockchain.NewGasPriceEstimator(client),
		baseTokens,
		nativePriceAmount,
		solver,
	)

	aggClient, err := oneinch.NewHTTPClient(svc.aggConf.BaseURL)
	if err != nil {
		return err
	}
	var referrer *common.Address
	if svc.aggConf.ReferrerAddress != "" {
		addr := common.HexToAddress(svc.aggConf.ReferrerAddress)
		referrer = &addr
	}

	svc.finders = map[Strategy]trading.TradeFinding{
		StrategyBaseline: trading.NewBaselineFinder(
			svc.estimator,
			common.HexToAddress(svc.chainConf.RouterAddress),
			settlement,
			solver,
		),
		StrategyOneInch: oneinch.NewTradeFinder(
			aggClient,
			svc.aggConf.DisabledProtocolList(),
			referrer,
			solver,
			settlement,
			time.Duration(svc.aggConf.CacheMaxAgeSeconds)*time.Second,
		),
	}
	return nil
}

func (svc *Service) Start() error {
	log.Info().
		Str("native", svc.chainConf.NativeToken).
		Int("base_tokens", len(svc.chainConf.BaseTokenAddresses())).
		Msg("pricing engine ready")
	return nil
}

func (svc *Service) Stop() error {
	if svc.client != nil {
		svc.client.Close()
	}
	return nil
}

// GetQuote prices a query with the chosen strategy.
func (svc *Service) GetQuote(ctx context.Context, query *domain.Query, strategy Strategy) (*trading.Quote, error) {
	finder, err := svc.finder(strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	quote, err := finder.GetQuote(ctx, query)
	metrics.QuoteDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	metrics.QuoteRequests.WithLabelValues(string(strategy), statusLabel(err)).Inc()
	if err != nil {
		svc.logger.Error(err, "quote failed", "GetQuote")
	} else {
		svc.logger.Info("quote served", "GetQuote")
	}
	return quote, err
}

// GetTrade prices a query and assembles its executable calls with the chosen
// strategy.
func (svc *Service) GetTrade(ctx context.Context, query *domain.Query, strategy Strategy) (*trading.Trade, error) {
	finder, err := svc.finder(strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	trade, err := finder.GetTrade(ctx, query)
	metrics.TradeDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	metrics.TradeRequests.WithLabelValues(string(strategy), statusLabel(err)).Inc()
	if err != nil {
		svc.logger.Error(err, "trade failed", "GetTrade")
	} else {
		svc.logger.Info("trade served", "GetTrade")
	}
	return trade, err
}

func (svc *Service) finder(strategy Strategy) (trading.TradeFinding, error) {
	finder, ok := svc.finders[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	return finder, nil
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

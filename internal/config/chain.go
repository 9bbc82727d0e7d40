package config

import (
	"errors"
	"math/big"
	"os"
	"slices"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type ChainConfig struct {
	RPCUrl string

	// FactoryAddress is the v2 pair factory the pool fetcher reads through.
	FactoryAddress string
	// RouterAddress is the v2 router trades execute against.
	RouterAddress string
	// SettlementAddress receives swap proceeds and holds token approvals.
	SettlementAddress string
	// SolverAddress identifies this engine in returned estimates.
	SolverAddress string

	// NativeToken is the wrapped native token, always the first base token.
	NativeToken string
	// BaseTokens is a comma-separated list of routing intermediaries.
	BaseTokens string

	// NativePriceEstimationAmount is the native amount (in wei) sold to
	// derive token prices for gas-aware route ranking.
	NativePriceEstimationAmount string
}

func (c *ChainConfig) Key() string {
	return CHAIN_CONFIG_KEY
}

func (c *ChainConfig) Load() error {
	c.RPCUrl = os.Getenv("RPC_URL")
	c.FactoryAddress = os.Getenv("FACTORY_ADDRESS")
	c.RouterAddress = os.Getenv("ROUTER_ADDRESS")
	c.SettlementAddress = os.Getenv("SETTLEMENT_ADDRESS")
	c.SolverAddress = os.Getenv("SOLVER_ADDRESS")
	c.NativeToken = os.Getenv("NATIVE_TOKEN")
	c.BaseTokens = os.Getenv("BASE_TOKENS")
	c.NativePriceEstimationAmount = common.GetEnvOrDefault("NATIVE_PRICE_ESTIMATION_AMOUNT", "1000000000000000000")
	return nil
}

func (c *ChainConfig) Validate() error {
	if slices.Contains([]string{c.RPCUrl, c.FactoryAddress, c.RouterAddress, c.SettlementAddress, c.SolverAddress, c.NativeToken}, "") {
		return errors.New("invalid chain config")
	}
	for _, addr := range append([]string{c.FactoryAddress, c.RouterAddress, c.SettlementAddress, c.SolverAddress, c.NativeToken}, c.BaseTokenAddresses()...) {
		if !ethcommon.IsHexAddress(addr) {
			return errors.New("invalid chain config: malformed address " + addr)
		}
	}
	if _, ok := new(big.Int).SetString(c.NativePriceEstimationAmount, 10); !ok {
		return errors.New("invalid chain config: malformed native price estimation amount")
	}
	return nil
}

// BaseTokenAddresses splits the configured base token list, dropping empty
// entries.
func (c *ChainConfig) BaseTokenAddresses() []string {
	var tokens []string
	for _, token := range strings.Split(c.BaseTokens, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type AggregatorConfig struct {
	// BaseURL is the aggregator REST endpoint including API version and
	// chain id, e.g. https://api.1inch.io/v4.0/1.
	BaseURL string

	// DisabledProtocols is a comma-separated list of liquidity sources the
	// aggregator must not route through. Empty means no restriction.
	DisabledProtocols string

	// ReferrerAddress is forwarded on quote and swap requests when set.
	ReferrerAddress string

	// CacheMaxAgeSeconds bounds the staleness of the cached spender address
	// and liquidity source list.
	CacheMaxAgeSeconds int
}

func (c *AggregatorConfig) Key() string {
	return AGGREGATOR_CONFIG_KEY
}

func (c *AggregatorConfig) Load() error {
	c.BaseURL = common.GetEnvOrDefault("AGGREGATOR_BASE_URL", "https://api.1inch.io/v4.0/1")
	c.DisabledProtocols = os.Getenv("AGGREGATOR_DISABLED_PROTOCOLS")
	c.ReferrerAddress = os.Getenv("AGGREGATOR_REFERRER_ADDRESS")
	c.CacheMaxAgeSeconds = common.GetEnvOrDefaultInt("AGGREGATOR_CACHE_MAX_AGE", 30)
	return nil
}

func (c *AggregatorConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invalid aggregator config")
	}
	if c.ReferrerAddress != "" && !ethcommon.IsHexAddress(c.ReferrerAddress) {
		return errors.New("invalid aggregator config: malformed referrer address")
	}
	return nil
}

// DisabledProtocolList splits the configured protocol list, dropping empty
// entries.
func (c *AggregatorConfig) DisabledProtocolList() []string {
	var protocols []string
	for _, name := range strings.Split(c.DisabledProtocols, ",") {
		if name = strings.TrimSpace(name); name != "" {
			protocols = append(protocols, name)
		}
	}
	return protocols
}

package blockchain

import (
	"context"
	"math/big"
)

// GasPriceSuggester is the slice of the node client the estimator needs;
// *ethclient.Client satisfies it.
type GasPriceSuggester interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// GasPriceEstimator reports the node's suggested gas price in wei.
type GasPriceEstimator struct {
	suggester GasPriceSuggester
}

// NewGasPriceEstimator builds an estimator over the node client.
func NewGasPriceEstimator(suggester GasPriceSuggester) *GasPriceEstimator {
	return &GasPriceEstimator{suggester: suggester}
}

// EstimateGasPrice fetches the suggested gas price. The float conversion is
// lossy above 2^53 wei, which is far beyond any realistic gas price.
func (e *GasPriceEstimator) EstimateGasPrice(ctx context.Context) (float64, error) {
	price, err := e.suggester.SuggestGasPrice(ctx)
	if err != nil {
		return 0, err
	}
	value, _ := new(big.Float).SetInt(price).Float64()
	return value, nil
}

// Package oneinch adapts the 1inch aggregator REST API as a liquidity
// source. Sell orders only; the API has no exact-output endpoint.
package oneinch

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const defaultRequestTimeout = 10 * time.Second

// SlippageOnePercent is the slippage tolerance (in percent) requested on
// swap calldata.
const SlippageOnePercent = "1"

// APIError is a non-2xx answer from the aggregator, carrying the upstream
// description verbatim.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator api error %d: %s", e.StatusCode, e.Description)
}

// IsInsufficientLiquidity reports whether the API rejected the request
// because no route with enough liquidity exists.
func (e *APIError) IsInsufficientLiquidity() bool {
	return strings.Contains(strings.ToLower(e.Description), "insufficient liquidity")
}

// Token identifies one leg of a quote.
type Token struct {
	Address common.Address
}

// SellOrderQuote is the priced answer for a fixed sell amount.
type SellOrderQuote struct {
	FromToken       Token
	ToToken         Token
	FromTokenAmount *big.Int
	ToTokenAmount   *big.Int
	EstimatedGas    uint64
}

// Transaction is the executable call returned by the swap endpoint.
type Transaction struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasPrice *big.Int
	Gas      uint64
}

// Swap is a quote bundled with the transaction executing it.
type Swap struct {
	FromToken       Token
	ToToken         Token
	FromTokenAmount *big.Int
	ToTokenAmount   *big.Int
	Tx              Transaction
}

// Spender is the contract that must be approved to pull the sell token.
type Spender struct {
	Address common.Address
}

// SellOrderQuoteQuery parametrizes a quote request. Protocols restricts
// routing to the named liquidity sources; empty means all.
type SellOrderQuoteQuery struct {
	SellToken common.Address
	BuyToken  common.Address
	Amount    *big.Int
	Protocols []string
	Referrer  *common.Address
}

// SwapQuery parametrizes a swap-calldata request. From receives the bought
// tokens.
type SwapQuery struct {
	SellToken common.Address
	BuyToken  common.Address
	Amount    *big.Int
	From      common.Address
	Protocols []string
	Slippage  string
	Referrer  *common.Address
}

// Client is the aggregator API surface the trade finder depends on.
type Client interface {
	GetSellOrderQuote(ctx context.Context, query SellOrderQuoteQuery) (*SellOrderQuote, error)
	GetSwap(ctx context.Context, query SwapQuery) (*Swap, error)
	GetSpender(ctx context.Context) (*Spender, error)
	GetLiquiditySources(ctx context.Context) ([]string, error)
}

// HTTPClient talks to a 1inch-compatible REST endpoint. The base URL carries
// the API version and chain id, e.g. https://api.1inch.io/v4.0/1.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPClient validates the base URL and builds a client with a bounded
// request timeout.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator base url %q: %w", baseURL, err)
	}
	return &HTTPClient{
		baseURL: parsed,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

type tokenWire struct {
	Address string `json:"address"`
}

type quoteWire struct {
	FromToken       tokenWire `json:"fromToken"`
	ToToken         tokenWire `json:"toToken"`
	FromTokenAmount string    `json:"fromTokenAmount"`
	ToTokenAmount   string    `json:"toTokenAmount"`
	EstimatedGas    uint64    `json:"estimatedGas"`
}

type transactionWire struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasPrice string `json:"gasPrice"`
	Gas      uint64 `json:"gas"`
}

type swapWire struct {
	FromToken       tokenWire       `json:"fromToken"`
	ToToken         tokenWire       `json:"toToken"`
	FromTokenAmount string          `json:"fromTokenAmount"`
	ToTokenAmount   string          `json:"toTokenAmount"`
	Tx              transactionWire `json:"tx"`
}

type spenderWire struct {
	Address string `json:"address"`
}

type liquiditySourcesWire struct {
	Protocols []struct {
		ID string `json:"id"`
	} `json:"protocols"`
}

type errorWire struct {
	StatusCode  int    `json:"statusCode"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

func (c *HTTPClient) GetSellOrderQuote(ctx context.Context, query SellOrderQuoteQuery) (*SellOrderQuote, error) {
	params := url.Values{}
	params.Set("fromTokenAddress", strings.ToLower(query.SellToken.Hex()))
	params.Set("toTokenAddress", strings.ToLower(query.BuyToken.Hex()))
	params.Set("amount", query.Amount.String())
	if len(query.Protocols) > 0 {
		params.Set("protocols", strings.Join(query.Protocols, ","))
	}
	if query.Referrer != nil {
		params.Set("referrerAddress", strings.ToLower(query.Referrer.Hex()))
	}

	var wire quoteWire
	if err := c.getJSON(ctx, "quote", params, &wire); err != nil {
		return nil, err
	}

	fromAmount, err := parseAmount(wire.FromTokenAmount)
	if err != nil {
		return nil, fmt.Errorf("quote fromTokenAmount: %w", err)
	}
	toAmount, err := parseAmount(wire.ToTokenAmount)
	if err != nil {
		return nil, fmt.Errorf("quote toTokenAmount: %w", err)
	}
	return &SellOrderQuote{
		FromToken:       Token{Address: common.HexToAddress(wire.FromToken.Address)},
		ToToken:         Token{Address: common.HexToAddress(wire.ToToken.Address)},
		FromTokenAmount: fromAmount,
		ToTokenAmount:   toAmount,
		EstimatedGas:    wire.EstimatedGas,
	}, nil
}

func (c *HTTPClient) GetSwap(ctx context.Context, query SwapQuery) (*Swap, error) {
	params := url.Values{}
	params.Set("fromTokenAddress", strings.ToLower(query.SellToken.Hex()))
	params.Set("toTokenAddress", strings.ToLower(query.BuyToken.Hex()))
	params.Set("amount", query.Amount.String())
	params.Set("fromAddress", strings.ToLower(query.From.Hex()))
	params.Set("slippage", query.Slippage)
	// Calldata is built for the settlement contract, which does not hold the
	// sell balance at quoting time.
	params.Set("disableEstimate", "true")
	if len(query.Protocols) > 0 {
		params.Set("protocols", strings.Join(query.Protocols, ","))
	}
	if query.Referrer != nil {
		params.Set("referrerAddress", strings.ToLower(query.Referrer.Hex()))
	}

	var wire swapWire
	if err := c.getJSON(ctx, "swap", params, &wire); err != nil {
		return nil, err
	}

	fromAmount, err := parseAmount(wire.FromTokenAmount)
	if err != nil {
		return nil, fmt.Errorf("swap fromTokenAmount: %w", err)
	}
	toAmount, err := parseAmount(wire.ToTokenAmount)
	if err != nil {
		return nil, fmt.Errorf("swap toTokenAmount: %w", err)
	}
	value, err := parseAmount(wire.Tx.Value)
	if err != nil {
		return nil, fmt.Errorf("swap tx value: %w", err)
	}
	gasPrice, err := parseAmount(wire.Tx.GasPrice)
	if err != nil {
		return nil, fmt.Errorf("swap tx gasPrice: %w", err)
	}
	data, err := hexutil.Decode(wire.Tx.Data)
	if err != nil {
		return nil, fmt.Errorf("swap tx data: %w", err)
	}
	return &Swap{
		FromToken:       Token{Address: common.HexToAddress(wire.FromToken.Address)},
		ToToken:         Token{Address: common.HexToAddress(wire.ToToken.Address)},
		FromTokenAmount: fromAmount,
		ToTokenAmount:   toAmount,
		Tx: Transaction{
			From:     common.HexToAddress(wire.Tx.From),
			To:       common.HexToAddress(wire.Tx.To),
			Data:     data,
			Value:    value,
			GasPrice: gasPrice,
			Gas:      wire.Tx.Gas,
		},
	}, nil
}

func (c *HTTPClient) GetSpender(ctx context.Context) (*Spender, error) {
	var wire spenderWire
	if err := c.getJSON(ctx, "approve/spender", nil, &wire); err != nil {
		return nil, err
	}
	return &Spender{Address: common.HexToAddress(wire.Address)}, nil
}

func (c *HTTPClient) GetLiquiditySources(ctx context.Context) ([]string, error) {
	var wire liquiditySourcesWire
	if err := c.getJSON(ctx, "liquidity-sources", nil, &wire); err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(wire.Protocols))
	for _, protocol := range wire.Protocols {
		sources = append(sources, protocol.ID)
	}
	return sources, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wire errorWire
		if err := sonic.Unmarshal(body, &wire); err == nil {
			apiErr.Description = wire.Description
			if apiErr.Description == "" {
				apiErr.Description = wire.Error
			}
		}
		if apiErr.Description == "" {
			apiErr.Description = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", raw)
	}
	return amount, nil
}

package oneinch

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSellOrderQuoteParsesAmounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", r.URL.Query().Get("fromTokenAddress"))
		require.Equal(t, "100000000000000000", r.URL.Query().Get("amount"))
		w.Write([]byte(`{
			"fromToken": {"address": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"},
			"toToken": {"address": "0x6810e776880c02933d47db1b9fc05908e5386b96"},
			"fromTokenAmount": "100000000000000000",
			"toTokenAmount": "808069760400778577",
			"estimatedGas": 189386
		}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	quote, err := client.GetSellOrderQuote(context.Background(), SellOrderQuoteQuery{
		SellToken: weth,
		BuyToken:  gno,
		Amount:    big.NewInt(100000000000000000),
	})
	require.NoError(t, err)
	require.Equal(t, weth, quote.FromToken.Address)
	require.Equal(t, gno, quote.ToToken.Address)
	expected, _ := new(big.Int).SetString("808069760400778577", 10)
	require.Equal(t, expected, quote.ToTokenAmount)
	require.Equal(t, uint64(189386), quote.EstimatedGas)
}

func TestGetSwapParsesTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("slippage"))
		require.Equal(t, "true", r.URL.Query().Get("disableEstimate"))
		w.Write([]byte(`{
			"fromToken": {"address": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"},
			"toToken": {"address": "0x6810e776880c02933d47db1b9fc05908e5386b96"},
			"fromTokenAmount": "100000000000000000",
			"toTokenAmount": "808069760400778577",
			"tx": {
				"from": "0x0000000000000000000000000000000000000000",
				"to": "0x1111111254fb6c44bac0bed2854e76f90643097d",
				"data": "0xe449022e",
				"value": "0",
				"gasPrice": "15000000000",
				"gas": 200000
			}
		}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	swap, err := client.GetSwap(context.Background(), SwapQuery{
		SellToken: weth,
		BuyToken:  gno,
		Amount:    big.NewInt(100000000000000000),
		Slippage:  SlippageOnePercent,
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0xe4, 0x49, 0x02, 0x2e}, swap.Tx.Data)
	require.Equal(t, uint64(200000), swap.Tx.Gas)
	require.Equal(t, big.NewInt(15000000000), swap.Tx.GasPrice)
}

func TestGetSpenderAndLiquiditySources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/approve/spender":
			w.Write([]byte(`{"address": "0x11111112542d85b3ef69ae05771c2dccff4faa26"}`))
		case "/liquidity-sources":
			w.Write([]byte(`{"protocols": [{"id": "UNISWAP_V2"}, {"id": "BALANCER"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	spender, err := client.GetSpender(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0x11111112542d85B3EF69AE05771c2dCCff4fAa26", spender.Address.Hex())

	sources, err := client.GetLiquiditySources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"UNISWAP_V2", "BALANCER"}, sources)
}

func TestNonOKResponsesBecomeAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"statusCode": 429, "description": "too many requests"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.GetSpender(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "too many requests", apiErr.Description)
	require.False(t, apiErr.IsInsufficientLiquidity())
}

func TestInsufficientLiquidityDetection(t *testing.T) {
	err := &APIError{StatusCode: 400, Description: "Insufficient Liquidity for the trade"}
	require.True(t, err.IsInsufficientLiquidity())

	err = &APIError{StatusCode: 400, Description: "cannot estimate"}
	require.False(t, err.IsInsufficientLiquidity())
}

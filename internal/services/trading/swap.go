package trading

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
	{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const routerABIJSON = `[
	{"name":"swapExactTokensForTokens","type":"function","inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
	{"name":"swapTokensForExactTokens","type":"function","inputs":[{"name":"amountOut","type":"uint256"},{"name":"amountInMax","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

var (
	erc20ABI  = mustParseABI(erc20ABIJSON)
	routerABI = mustParseABI(routerABIJSON)

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// MaxUint256 returns a fresh copy of the maximum EVM word, used for unlimited
// approvals and never-expiring deadlines.
func MaxUint256() *big.Int {
	return new(big.Int).Set(maxUint256)
}

// EncodeApprove packs an ERC20 approve call.
func EncodeApprove(spender common.Address, amount *big.Int) []byte {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		// Static method with static argument types; packing cannot fail.
		panic(err)
	}
	return data
}

// EncodeSwapExactTokensForTokens packs a v2 router sell-order swap.
func EncodeSwapExactTokensForTokens(amountIn, amountOutMin *big.Int, path []common.Address, to common.Address) ([]byte, error) {
	return routerABI.Pack("swapExactTokensForTokens", amountIn, amountOutMin, path, to, MaxUint256())
}

// EncodeSwapTokensForExactTokens packs a v2 router buy-order swap.
func EncodeSwapTokensForExactTokens(amountOut, amountInMax *big.Int, path []common.Address, to common.Address) ([]byte, error) {
	return routerABI.Pack("swapTokensForExactTokens", amountOut, amountInMax, path, to, MaxUint256())
}

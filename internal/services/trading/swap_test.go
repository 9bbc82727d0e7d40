package trading

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func TestEncodeApprove(t *testing.T) {
	spender := common.HexToAddress("0x11111112542d85b3ef69ae05771c2dccff4faa26")

	data := EncodeApprove(spender, big.NewInt(0))
	require.Equal(t,
		"0x095ea7b3"+
			"00000000000000000000000011111112542d85b3ef69ae05771c2dccff4faa26"+
			"0000000000000000000000000000000000000000000000000000000000000000",
		hexutil.Encode(data))

	data = EncodeApprove(spender, MaxUint256())
	require.Equal(t,
		"0x095ea7b3"+
			"00000000000000000000000011111112542d85b3ef69ae05771c2dccff4faa26"+
			"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		hexutil.Encode(data))
}

func TestEncodeSwapSelectors(t *testing.T) {
	path := []common.Address{
		common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"),
		common.HexToAddress("0x6810e776880c02933d47db1b9fc05908e5386b96"),
	}
	to := common.HexToAddress("0x9008d19f58aabd9ed0d60971565aa8510560ab41")

	data, err := EncodeSwapExactTokensForTokens(big.NewInt(100), big.NewInt(90), path, to)
	require.NoError(t, err)
	require.Equal(t, "0x38ed1739", hexutil.Encode(data[:4]))

	data, err = EncodeSwapTokensForExactTokens(big.NewInt(100), big.NewInt(110), path, to)
	require.NoError(t, err)
	require.Equal(t, "0x8803dbee", hexutil.Encode(data[:4]))
}

func TestBuildSwapWithSpenderPrependsApprovals(t *testing.T) {
	sellToken := common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	spender := common.HexToAddress("0x11111112542d85b3ef69ae05771c2dccff4faa26")
	target := common.HexToAddress("0x1111111254fb6c44bac0bed2854e76f90643097d")
	solver := common.Address{1}

	swap := Interaction{Target: target, Value: big.NewInt(0), CallData: []byte{0xe4, 0x49, 0x02, 0x2e}}
	trade := BuildSwap(sellToken, big.NewInt(808), 200_000, &spender, swap, solver)

	require.Equal(t, big.NewInt(808), trade.OutAmount)
	require.Equal(t, uint64(200_000), trade.GasEstimate)
	require.Equal(t, solver, trade.Solver)
	require.NotNil(t, trade.Approval)
	require.Equal(t, spender, *trade.Approval)

	require.Len(t, trade.Interactions, 3)
	require.Equal(t, sellToken, trade.Interactions[0].Target)
	require.Equal(t, EncodeApprove(spender, big.NewInt(0)), trade.Interactions[0].CallData)
	require.Equal(t, sellToken, trade.Interactions[1].Target)
	require.Equal(t, EncodeApprove(spender, MaxUint256()), trade.Interactions[1].CallData)
	require.Equal(t, swap, trade.Interactions[2])
}

func TestBuildSwapWithoutSpender(t *testing.T) {
	swap := Interaction{Target: common.Address{2}, Value: big.NewInt(0), CallData: []byte{0x01}}
	trade := BuildSwap(common.Address{1}, big.NewInt(1), 0, nil, swap, common.Address{3})

	require.Nil(t, trade.Approval)
	require.Len(t, trade.Interactions, 1)
	require.Equal(t, swap, trade.Interactions[0])
}

package blockchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGWei(t *testing.T) {
	wei, err := ToGWei("40")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40_000_000_000), wei)

	wei, err = ToGWei("1.5")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000_000), wei)

	_, err = ToGWei("forty")
	assert.Error(t, err)
	_, err = ToGWei("-1")
	assert.Error(t, err)
	for _, inf := range []string{"Inf", "+inf", "-Inf"} {
		wei, err := ToGWei(inf)
		assert.Error(t, err, inf)
		assert.Nil(t, wei, inf)
	}
}

func TestApplyGas(t *testing.T) {
	opts := &bind.TransactOpts{}
	require.NoError(t, ApplyGas(opts, GasSettings{}))
	assert.Zero(t, opts.GasLimit)
	assert.Nil(t, opts.GasFeeCap)
	assert.Nil(t, opts.GasTipCap)

	opts = &bind.TransactOpts{}
	require.NoError(t, ApplyGas(opts, GasSettings{GasLimit: 2_000_000, MaxFeeGwei: "325", PriorityFeeGwei: "2"}))
	assert.Equal(t, uint64(2_000_000), opts.GasLimit)
	assert.Equal(t, big.NewInt(325_000_000_000), opts.GasFeeCap)
	assert.Equal(t, big.NewInt(2_000_000_000), opts.GasTipCap)

	opts = &bind.TransactOpts{}
	assert.Error(t, ApplyGas(opts, GasSettings{MaxFeeGwei: "1", PriorityFeeGwei: "2"}))

	opts = &bind.TransactOpts{}
	assert.Error(t, ApplyGas(opts, GasSettings{MaxFeeGwei: "inf"}))
	assert.Nil(t, opts.GasFeeCap)
}

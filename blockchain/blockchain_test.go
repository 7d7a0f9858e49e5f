package blockchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChainIDAndBalance(t *testing.T) {
	funded := common.HexToAddress("0x1f39F18d6b1e397D4E05A149148C9Fa9Bcc0eB67")
	backend := simulated.NewBackend(types.GenesisAlloc{
		funded: {Balance: big.NewInt(params.Ether)},
	})
	defer backend.Close()

	var client Backend = backend.Client()
	ctx := context.Background()

	chainID, err := ResolveChainID(ctx, client, 0)
	require.NoError(t, err)
	assert.Equal(t, params.AllDevChainProtocolChanges.ChainID, chainID)

	chainID, err = ResolveChainID(ctx, client, 137)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(137), chainID)

	balance, err := GetBalance(ctx, client, funded)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(params.Ether), balance)

	balance, err = GetBalance(ctx, client, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestDialBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "ftp://nowhere")
	assert.Error(t, err)
}

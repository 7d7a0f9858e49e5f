package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// Backend is the chain access a deployment needs. Both *ethclient.Client and
// the simulated backend's client satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

var _ Backend = (*ethclient.Client)(nil)

func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return client, nil
}

// ResolveChainID returns configured when non-zero, otherwise asks the node.
func ResolveChainID(ctx context.Context, backend Backend, configured int64) (*big.Int, error) {
	if configured != 0 {
		return big.NewInt(configured), nil
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chain id")
	}
	return chainID, nil
}

func GetBalance(ctx context.Context, backend Backend, account common.Address) (*big.Int, error) {
	balance, err := backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "balance of %s", account.Hex())
	}
	return balance, nil
}

// Package deployer submits contract creation transactions and checks the
// resulting deployments.
package deployer

import (
	"context"

	"flashloan_go/artifacts"
	"flashloan_go/blockchain"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

var ErrConstructorReverted = errors.New("constructor reverted")

// Contract is the handle of a deployed contract.
type Contract struct {
	Type     *artifacts.ContractType
	Address  common.Address
	Tx       *types.Transaction // nil when bound with At
	Deployer common.Address
	Args     []interface{}
	Receipt  *types.Receipt

	bound *bind.BoundContract
}

// Deploy sends the creation transaction for contractType signed by opts.
// It returns once the transaction is accepted by the node; use Wait for
// inclusion.
func Deploy(ctx context.Context, backend blockchain.Backend, contractType *artifacts.ContractType, opts *bind.TransactOpts, args ...interface{}) (*Contract, error) {
	if _, err := contractType.Pack(args...); err != nil {
		return nil, err
	}
	txOpts := *opts
	txOpts.Context = ctx

	address, tx, bound, err := bind.DeployContract(&txOpts, contractType.ABI, contractType.Bytecode, backend, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "deploy %s", contractType.Name)
	}
	return &Contract{
		Type:     contractType,
		Address:  address,
		Tx:       tx,
		Deployer: opts.From,
		Args:     args,
		bound:    bound,
	}, nil
}

// At binds contractType to an existing deployment.
func At(backend blockchain.Backend, contractType *artifacts.ContractType, address common.Address) *Contract {
	return &Contract{
		Type:    contractType,
		Address: address,
		bound:   bind.NewBoundContract(address, contractType.ABI, backend, backend, backend),
	}
}

// Wait blocks until the creation transaction is mined and the contract has code.
func (c *Contract) Wait(ctx context.Context, backend bind.DeployBackend) (*types.Receipt, error) {
	if c.Tx == nil {
		return nil, errors.Errorf("%s at %s has no creation transaction", c.Type.Name, c.Address.Hex())
	}
	receipt, err := bind.WaitMined(ctx, backend, c.Tx)
	if err != nil {
		return nil, errors.Wrapf(err, "wait for %s", c.Tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrConstructorReverted, "%s tx %s", c.Type.Name, c.Tx.Hash().Hex())
	}
	code, err := backend.CodeAt(ctx, c.Address, nil)
	if err != nil {
		return receipt, errors.Wrapf(err, "code at %s", c.Address.Hex())
	}
	if len(code) == 0 {
		return receipt, errors.Wrapf(bind.ErrNoCodeAfterDeploy, "%s at %s", c.Type.Name, c.Address.Hex())
	}
	c.Receipt = receipt
	return receipt, nil
}

// Call invokes a read-only method and returns its unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", c.Type.Name, method)
	}
	return out, nil
}

// CallAddress invokes a method returning a single address.
func (c *Contract) CallAddress(ctx context.Context, method string, args ...interface{}) (common.Address, error) {
	out, err := c.Call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, errors.Errorf("%s.%s returned %d values", c.Type.Name, method, len(out))
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("%s.%s returned %T, not an address", c.Type.Name, method, out[0])
	}
	return addr, nil
}

package programs

import (
	"context"
	"sort"

	"flashloan_go/artifacts"
	"flashloan_go/blockchain"
	"flashloan_go/constants"
	"flashloan_go/deployer"
	"flashloan_go/registry"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

type Script struct {
	Name           string
	Contract       string
	Provider       common.Address
	ProviderGetter string
	Main           func(ctx context.Context, env *Env) (*deployer.Contract, error)
}

var Scripts = map[string]Script{
	constants.DEPLOYMENT_SCRIPT: {
		Name:           constants.DEPLOYMENT_SCRIPT,
		Contract:       constants.FLASHLOAN_CONTRACT,
		Provider:       constants.AAVE_LENDING_POOL_ADDRESS_PROVIDER,
		ProviderGetter: "addressesProvider",
		Main:           Deployment,
	},
	constants.DEPLOYMENT_V2_SCRIPT: {
		Name:           constants.DEPLOYMENT_V2_SCRIPT,
		Contract:       constants.FLASHLOAN_V2_CONTRACT,
		Provider:       constants.AAVE_LENDING_POOL_ADDRESS_PROVIDER_V2,
		ProviderGetter: "ADDRESSES_PROVIDER",
		Main:           DeploymentV2,
	},
}

func Lookup(name string) (Script, error) {
	script, ok := Scripts[name]
	if !ok {
		return Script{}, errors.Errorf("unknown script %q (have %v)", name, Names())
	}
	return script, nil
}

func Names() []string {
	names := []string{}
	for name := range Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deployment deploys a Flashloan contract against the Aave V1 address provider.
func Deployment(ctx context.Context, env *Env) (*deployer.Contract, error) {
	return deployFlashloan(ctx, env, constants.DEPLOYMENT_SCRIPT, constants.FLASHLOAN_CONTRACT, constants.AAVE_LENDING_POOL_ADDRESS_PROVIDER)
}

// DeploymentV2 deploys a FlashloanV2 contract against the Aave V2 address provider.
func DeploymentV2(ctx context.Context, env *Env) (*deployer.Contract, error) {
	return deployFlashloan(ctx, env, constants.DEPLOYMENT_V2_SCRIPT, constants.FLASHLOAN_V2_CONTRACT, constants.AAVE_LENDING_POOL_ADDRESS_PROVIDER_V2)
}

func deployFlashloan(ctx context.Context, env *Env, script, contract string, provider common.Address) (*deployer.Contract, error) {
	sugar := env.Sugar.With("script", script, "contract", contract)

	acct, err := env.Account()
	if err != nil {
		return nil, err
	}
	contractType, err := artifacts.Load(env.BuildDir, contract)
	if err != nil {
		return nil, err
	}
	opts, err := acct.Transactor(env.ChainID)
	if err != nil {
		return nil, errors.Wrap(err, "transactor")
	}
	if err := blockchain.ApplyGas(opts, env.Gas); err != nil {
		return nil, err
	}

	balance, err := blockchain.GetBalance(ctx, env.Backend, acct.Address)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		sugar.Warnw("Deployer has no balance", "account", acct.Address.Hex())
	}

	sugar.Infow("Deploying", "account", acct.ID, "from", acct.Address.Hex(), "provider", provider.Hex(), "balance", balance)
	c, err := deployer.Deploy(ctx, env.Backend, contractType, opts, provider)
	if err != nil {
		return nil, err
	}
	sugar.Infow("Transaction sent", "tx", c.Tx.Hash().Hex(), "address", c.Address.Hex())

	waitCtx := ctx
	if env.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, env.Timeout)
		defer cancel()
	}
	receipt, err := c.Wait(waitCtx, env.Backend)
	if err != nil {
		return nil, err
	}
	sugar.Infow("Deployed", "address", c.Address.Hex(), "block", receipt.BlockNumber, "gasUsed", receipt.GasUsed)

	if env.Registry != nil {
		if err := record(ctx, env, c, receipt, script, contract, provider); err != nil {
			// the contract is live, so hand it back along with the failure
			sugar.Warnw("Deployment not recorded", "address", c.Address.Hex(), "err", err)
			return c, err
		}
	}
	return c, nil
}

func record(ctx context.Context, env *Env, c *deployer.Contract, receipt *types.Receipt, script, contract string, provider common.Address) error {
	header, err := env.Backend.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return errors.Wrap(err, "deployment block")
	}
	return env.Registry.Add(&registry.Deployment{
		Script:      script,
		Contract:    contract,
		ChainID:     env.ChainID.Uint64(),
		Address:     c.Address,
		TxHash:      c.Tx.Hash(),
		Deployer:    c.Deployer,
		Provider:    provider,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Timestamp:   header.Time,
	})
}

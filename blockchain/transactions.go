package blockchain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
)

// GasSettings are optional overrides; zero values leave estimation to the node.
type GasSettings struct {
	GasLimit        uint64
	MaxFeeGwei      string
	PriorityFeeGwei string
}

// ApplyGas copies the overrides onto opts as EIP-1559 caps.
func ApplyGas(opts *bind.TransactOpts, gas GasSettings) error {
	if gas.GasLimit != 0 {
		opts.GasLimit = gas.GasLimit
	}
	if gas.MaxFeeGwei != "" {
		feeCap, err := ToGWei(gas.MaxFeeGwei)
		if err != nil {
			return errors.Wrap(err, "max fee")
		}
		opts.GasFeeCap = feeCap
	}
	if gas.PriorityFeeGwei != "" {
		tipCap, err := ToGWei(gas.PriorityFeeGwei)
		if err != nil {
			return errors.Wrap(err, "priority fee")
		}
		opts.GasTipCap = tipCap
	}
	if opts.GasFeeCap != nil && opts.GasTipCap != nil && opts.GasFeeCap.Cmp(opts.GasTipCap) < 0 {
		return errors.Errorf("max fee %v below priority fee %v", opts.GasFeeCap, opts.GasTipCap)
	}
	return nil
}

// ToGWei converts a decimal amount of gwei, e.g. "1.5", to wei.
func ToGWei(amount string) (*big.Int, error) {
	f, ok := new(big.Float).SetPrec(256).SetString(amount)
	if !ok {
		return nil, errors.Errorf("invalid gwei amount %q", amount)
	}
	if f.IsInf() {
		return nil, errors.Errorf("infinite gwei amount %q", amount)
	}
	if f.Sign() < 0 {
		return nil, errors.Errorf("negative gwei amount %q", amount)
	}
	wei, _ := f.Mul(f, new(big.Float).SetInt64(params.GWei)).Int(nil)
	return wei, nil
}

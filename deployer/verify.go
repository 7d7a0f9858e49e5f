package deployer

import (
	"context"
	"fmt"

	"flashloan_go/blockchain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Expect describes what a correct deployment looks like on chain.
type Expect struct {
	ProviderGetter string
	Provider       common.Address
	Owner          common.Address // zero skips the owner check
}

type Check struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

type Report struct {
	Address common.Address
	Checks  []Check
}

// OK is true when no check failed.
func (r *Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Passed && !check.Skipped {
			return false
		}
	}
	return true
}

// Verify compares the runtime code at the contract's address with its
// artifact and reads back the constructor values. RPC failures are returned
// as errors; mismatches are reported as failed checks.
func Verify(ctx context.Context, backend blockchain.Backend, c *Contract, expect Expect) (*Report, error) {
	report := &Report{Address: c.Address}

	code, err := backend.CodeAt(ctx, c.Address, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "code at %s", c.Address.Hex())
	}
	switch {
	case len(c.Type.DeployedBytecode) == 0:
		report.Checks = append(report.Checks, Check{Name: "code", Skipped: true, Detail: "artifact has no deployedBytecode"})
	case c.Type.MatchesCode(code):
		report.Checks = append(report.Checks, Check{Name: "code", Passed: true, Detail: fmt.Sprintf("%d bytes", len(code))})
	default:
		report.Checks = append(report.Checks, Check{Name: "code", Detail: fmt.Sprintf("on-chain code (%d bytes) differs from %s", len(code), c.Type.Name)})
	}

	if len(code) == 0 {
		// nothing to call; the getters would fail with bind.ErrNoCode
		report.Checks = append(report.Checks, Check{Name: "provider", Detail: "no code at address"})
		if expect.Owner != (common.Address{}) {
			report.Checks = append(report.Checks, Check{Name: "owner", Detail: "no code at address"})
		}
		return report, nil
	}

	check, err := checkAddress(ctx, c, "provider", expect.ProviderGetter, expect.Provider, true)
	if err != nil {
		return nil, err
	}
	report.Checks = append(report.Checks, check)

	if expect.Owner != (common.Address{}) {
		check, err = checkAddress(ctx, c, "owner", "owner", expect.Owner, false)
		if err != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, check)
	}
	return report, nil
}

// checkAddress compares a getter's result with want. A getter missing from
// the abi fails the check when required and skips it otherwise.
func checkAddress(ctx context.Context, c *Contract, name, method string, want common.Address, required bool) (Check, error) {
	if method == "" || !c.Type.HasMethod(method) {
		return Check{Name: name, Skipped: !required, Detail: fmt.Sprintf("abi has no %s()", method)}, nil
	}
	got, err := c.CallAddress(ctx, method)
	if err != nil {
		return Check{}, err
	}
	if got != want {
		return Check{Name: name, Detail: fmt.Sprintf("%s() = %s, want %s", method, got.Hex(), want.Hex())}, nil
	}
	return Check{Name: name, Passed: true, Detail: got.Hex()}, nil
}

// Package testcontract provides a tiny stand-in for the Flashloan contracts
// for use in tests against a simulated chain.
//
// The constructor takes one address. It stores that address in slot 0 and
// the caller in slot 1. At runtime owner() returns slot 1 and any other
// call returns slot 0, so the provider getter reads back the constructor
// argument whatever its name.
package testcontract

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Init code:
//
//	codecopy(0, codesize-32, 32) sstore(0, mload(0))
//	sstore(1, caller)
//	codecopy(0, 0x1e, 0x15) return(0, 0x15)
const Bytecode = "60206020380360003960005160005533600155601580601e6000396000f3" + DeployedBytecode

// Runtime code: mstore(0, sload(eq(shr(224, calldataload(0)), 0x8da5cb5b))) return(0, 32)
const DeployedBytecode = "60003560e01c638da5cb5b145460005260206000f3"

func ABI(providerGetter string) string {
	return `[
  {"inputs":[{"internalType":"address","name":"_addressProvider","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
  {"inputs":[],"name":"` + providerGetter + `","outputs":[{"internalType":"contract ILendingPoolAddressesProvider","name":"","type":"address"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`
}

// Artifact renders a brownie style build artifact.
func Artifact(name, providerGetter string) []byte {
	doc := map[string]interface{}{
		"contractName":     name,
		"abi":              json.RawMessage(ABI(providerGetter)),
		"bytecode":         Bytecode,
		"deployedBytecode": DeployedBytecode,
		"compiler":         map[string]string{"version": "0.6.12"},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

// WriteArtifact writes <dir>/<name>.json.
func WriteArtifact(dir, name, providerGetter string) error {
	return os.WriteFile(filepath.Join(dir, name+".json"), Artifact(name, providerGetter), 0o644)
}

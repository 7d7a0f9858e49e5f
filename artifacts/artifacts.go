// Package artifacts loads compiled contract containers (ABI plus bytecode)
// from brownie, hardhat or foundry build output.
package artifacts

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrNotFound = errors.New("contract artifact not found")

// Range is a byte span of deployed code.
type Range struct {
	Start  int
	Length int
}

type ContractType struct {
	Name             string
	ABI              abi.ABI
	Bytecode         []byte
	DeployedBytecode []byte
	// ImmutableRefs are the spans of DeployedBytecode filled in by the
	// constructor, so they differ on chain.
	ImmutableRefs []Range
}

func Load(buildDir, name string) (*ContractType, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, name+".json"))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s in %s", name, buildDir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read artifact %s", name)
	}
	return Parse(name, data)
}

func Parse(name string, data []byte) (*ContractType, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Errorf("artifact %s: invalid json", name)
	}
	doc := gjson.ParseBytes(data)

	if n := doc.Get("contractName").String(); n != "" {
		name = n
	}

	abiJSON := doc.Get("abi")
	if !abiJSON.Exists() {
		return nil, errors.Errorf("artifact %s: missing abi", name)
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON.Raw))
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s: abi", name)
	}

	bytecode, err := decodeCode(code(doc, "bytecode"))
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s: bytecode", name)
	}
	if len(bytecode) == 0 {
		return nil, errors.Errorf("artifact %s: empty bytecode (abstract contract or interface?)", name)
	}
	deployed, err := decodeCode(code(doc, "deployedBytecode"))
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s: deployedBytecode", name)
	}

	refs := []Range{}
	doc.Get("deployedBytecode.immutableReferences").ForEach(func(_, spans gjson.Result) bool {
		for _, span := range spans.Array() {
			refs = append(refs, Range{Start: int(span.Get("start").Int()), Length: int(span.Get("length").Int())})
		}
		return true
	})

	return &ContractType{
		Name:             name,
		ABI:              parsed,
		Bytecode:         bytecode,
		DeployedBytecode: deployed,
		ImmutableRefs:    refs,
	}, nil
}

// Pack validates and encodes constructor arguments.
func (c *ContractType) Pack(args ...interface{}) ([]byte, error) {
	input, err := c.ABI.Pack("", args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s constructor", c.Name)
	}
	return input, nil
}

// HasMethod reports whether the ABI declares a method called name.
func (c *ContractType) HasMethod(name string) bool {
	_, ok := c.ABI.Methods[name]
	return ok
}

// MatchesCode compares on-chain runtime code against DeployedBytecode,
// ignoring immutable spans.
func (c *ContractType) MatchesCode(onchain []byte) bool {
	if len(c.DeployedBytecode) == 0 || len(onchain) != len(c.DeployedBytecode) {
		return false
	}
	if len(c.ImmutableRefs) == 0 {
		return bytes.Equal(onchain, c.DeployedBytecode)
	}
	masked := common.CopyBytes(onchain)
	for _, ref := range c.ImmutableRefs {
		end := ref.Start + ref.Length
		if ref.Start < 0 || end > len(masked) {
			return false
		}
		copy(masked[ref.Start:end], c.DeployedBytecode[ref.Start:end])
	}
	return bytes.Equal(masked, c.DeployedBytecode)
}

// code finds a bytecode field either as a plain string (brownie, hardhat)
// or as {object: ...} (foundry).
func code(doc gjson.Result, field string) string {
	v := doc.Get(field)
	if v.IsObject() {
		return v.Get("object").String()
	}
	return v.String()
}

func decodeCode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if strings.Contains(s, "__") {
		return nil, errors.New("unlinked library placeholder")
	}
	return hex.DecodeString(s)
}

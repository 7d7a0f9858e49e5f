package artifacts

import (
	"testing"

	"flashloan_go/testcontract"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBrownieArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testcontract.WriteArtifact(dir, "Flashloan", "addressesProvider"))

	c, err := Load(dir, "Flashloan")
	require.NoError(t, err)
	assert.Equal(t, "Flashloan", c.Name)
	assert.Equal(t, common.FromHex(testcontract.Bytecode), c.Bytecode)
	assert.Equal(t, common.FromHex(testcontract.DeployedBytecode), c.DeployedBytecode)
	assert.True(t, c.HasMethod("addressesProvider"))
	assert.True(t, c.HasMethod("owner"))
	assert.False(t, c.HasMethod("ADDRESSES_PROVIDER"))
	assert.Empty(t, c.ImmutableRefs)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir(), "FlashloanV2")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestParseFoundryArtifact(t *testing.T) {
	data := []byte(`{
  "abi": ` + testcontract.ABI("ADDRESSES_PROVIDER") + `,
  "bytecode": {"object": "0x` + testcontract.Bytecode + `"},
  "deployedBytecode": {
    "object": "0x6000600060006000",
    "immutableReferences": {"12": [{"start": 2, "length": 2}], "14": [{"start": 6, "length": 1}]}
  }
}`)
	c, err := Parse("FlashloanV2", data)
	require.NoError(t, err)
	assert.Equal(t, "FlashloanV2", c.Name)
	assert.True(t, c.HasMethod("ADDRESSES_PROVIDER"))
	assert.ElementsMatch(t, []Range{{Start: 2, Length: 2}, {Start: 6, Length: 1}}, c.ImmutableRefs)

	assert.True(t, c.MatchesCode(common.FromHex("0x6000600060006000")))
	assert.True(t, c.MatchesCode(common.FromHex("0x6000ffff6000ff00")))
	assert.False(t, c.MatchesCode(common.FromHex("0x6100600060006000")))
	assert.False(t, c.MatchesCode(common.FromHex("0x60006000600060")))
}

func TestParseErrors(t *testing.T) {
	abiJSON := testcontract.ABI("addressesProvider")
	for name, doc := range map[string]string{
		"invalid json":   `{"abi": [`,
		"missing abi":    `{"bytecode": "6000"}`,
		"empty bytecode": `{"abi": ` + abiJSON + `, "bytecode": ""}`,
		"unlinked":       `{"abi": ` + abiJSON + `, "bytecode": "6000__$lib$__6000"}`,
		"bad hex":        `{"abi": ` + abiJSON + `, "bytecode": "60zz"}`,
	} {
		_, err := Parse("Flashloan", []byte(doc))
		assert.Error(t, err, name)
	}
}

func TestPack(t *testing.T) {
	c, err := Parse("Flashloan", testcontract.Artifact("Flashloan", "addressesProvider"))
	require.NoError(t, err)

	provider := common.HexToAddress("0x24a42fD28C976A61Df5D00D0599C34c4f90748c8")
	input, err := c.Pack(provider)
	require.NoError(t, err)
	assert.Equal(t, common.LeftPadBytes(provider.Bytes(), 32), input)

	_, err = c.Pack()
	assert.Error(t, err)
	_, err = c.Pack("not an address")
	assert.Error(t, err)
}

func TestMatchesCodeExact(t *testing.T) {
	c, err := Parse("Flashloan", testcontract.Artifact("Flashloan", "addressesProvider"))
	require.NoError(t, err)

	assert.True(t, c.MatchesCode(common.FromHex(testcontract.DeployedBytecode)))
	assert.False(t, c.MatchesCode(nil))
	assert.False(t, c.MatchesCode(common.FromHex("0x6000")))
}

package registry

import (
	"path/filepath"
	"sync"
	"testing"

	"flashloan_go/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deployment(contract string, chainID uint64, addr string) *Deployment {
	return &Deployment{
		Script:      "deployment",
		Contract:    contract,
		ChainID:     chainID,
		Address:     common.HexToAddress(addr),
		TxHash:      common.HexToHash("0x68610dccc7d19e8049b05c0f305c8f698616ad9090903b43536474147a08df53"),
		Deployer:    common.HexToAddress("0x1f39F18d6b1e397D4E05A149148C9Fa9Bcc0eB67"),
		Provider:    common.HexToAddress("0x24a42fD28C976A61Df5D00D0599C34c4f90748c8"),
		BlockNumber: 8119100,
		Timestamp:   1665000000,
	}
}

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMem(logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddGet(t *testing.T) {
	db := newDB(t)
	d := deployment("Flashloan", 1, "0x01")
	require.NoError(t, db.Add(d))

	got, err := db.Get(1, d.Address)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = db.Get(5, d.Address)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestListOrderAndChains(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x03")))
	require.NoError(t, db.Add(deployment("FlashloanV2", 1, "0x01")))
	require.NoError(t, db.Add(deployment("Flashloan", 42, "0x02")))
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x02")))

	list, err := db.List(1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, common.HexToAddress("0x03"), list[0].Address)
	assert.Equal(t, common.HexToAddress("0x01"), list[1].Address)
	assert.Equal(t, common.HexToAddress("0x02"), list[2].Address)

	list, err = db.List(42)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = db.List(137)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddTwiceKeepsFirst(t *testing.T) {
	db := newDB(t)
	first := deployment("Flashloan", 1, "0x01")
	require.NoError(t, db.Add(first))
	second := deployment("FlashloanV2", 1, "0x01")
	require.NoError(t, db.Add(second))

	list, err := db.List(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Flashloan", list[0].Contract)
}

func TestLatest(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x01")))
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x02")))
	require.NoError(t, db.Add(deployment("FlashloanV2", 1, "0x03")))

	latest, err := db.Latest(1, "Flashloan")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x02"), latest.Address)

	latest, err = db.Latest(1, "FlashloanV2")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x03"), latest.Address)

	_, err = db.Latest(42, "Flashloan")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestConcurrentAdd(t *testing.T) {
	db := newDB(t)
	wg := sync.WaitGroup{}
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := deployment("Flashloan", 1, "0x01")
			d.Address = common.BigToAddress(common.Big1)
			d.Address[0] = byte(i)
			assert.NoError(t, db.Add(d))
		}(i)
	}
	wg.Wait()

	list, err := db.List(1)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")
	db, err := Open(path, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x01")))
	require.NoError(t, db.Close())

	db, err = Open(path, logging.Nop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Add(deployment("Flashloan", 1, "0x02")))

	list, err := db.List(1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, common.HexToAddress("0x02"), list[1].Address)
}

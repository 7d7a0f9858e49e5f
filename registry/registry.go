// Package registry records deployments per chain, the way brownie keeps
// build/deployments/<chainid>.
package registry

import (
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("deployment not found")

type Deployment struct {
	Script      string
	Contract    string
	ChainID     uint64
	Address     common.Address
	TxHash      common.Hash
	Deployer    common.Address
	Provider    common.Address
	BlockNumber uint64
	Timestamp   uint64
}

const (
	recordPrefix  = byte('d') // d | chain | address -> rlp(Deployment)
	indexPrefix   = byte('i') // i | chain | seq -> address
	counterPrefix = byte('n') // n | chain -> next seq
)

type DB struct {
	client *leveldb.DB
	sugar  *zap.SugaredLogger

	mu sync.Mutex // serialises index sequence allocation
}

func Open(path string, sugar *zap.SugaredLogger) (*DB, error) {
	client, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open deployments db %s", path)
	}
	return &DB{client: client, sugar: sugar}, nil
}

func OpenMem(sugar *zap.SugaredLogger) (*DB, error) {
	client, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory deployments db")
	}
	return &DB{client: client, sugar: sugar}, nil
}

func (db *DB) Close() error {
	return db.client.Close()
}

// Add stores d and appends it to the chain's index. Adding the same chain and
// address twice keeps the first record.
func (db *DB) Add(d *Deployment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	k := recordKey(d.ChainID, d.Address)
	has, err := db.client.Has(k, nil)
	if err != nil {
		return errors.Wrap(err, "lookup deployment")
	}
	if has {
		db.sugar.Infow("Already recorded", "contract", d.Contract, "address", d.Address.Hex(), "chain", d.ChainID)
		return nil
	}

	v, err := rlp.EncodeToBytes(d)
	if err != nil {
		return errors.Wrap(err, "encode deployment")
	}
	seq, err := db.nextSeq(d.ChainID)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(k, v)
	batch.Put(indexKey(d.ChainID, seq), d.Address.Bytes())
	batch.Put(counterKey(d.ChainID), encodeUint(seq+1))
	if err := db.client.Write(batch, nil); err != nil {
		return errors.Wrap(err, "write deployment")
	}
	db.sugar.Infow("Recorded deployment", "contract", d.Contract, "address", d.Address.Hex(), "chain", d.ChainID)
	return nil
}

func (db *DB) Get(chainID uint64, address common.Address) (*Deployment, error) {
	v, err := db.client.Get(recordKey(chainID, address), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "%s on chain %d", address.Hex(), chainID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read deployment")
	}
	var d Deployment
	if err := rlp.DecodeBytes(v, &d); err != nil {
		return nil, errors.Wrap(err, "decode deployment")
	}
	return &d, nil
}

// List returns the chain's deployments in the order they were added.
func (db *DB) List(chainID uint64) ([]*Deployment, error) {
	deployments := []*Deployment{}
	err := db.scan(chainID, false, func(d *Deployment) bool {
		deployments = append(deployments, d)
		return true
	})
	return deployments, err
}

// Latest returns the most recent deployment of contract on the chain.
func (db *DB) Latest(chainID uint64, contract string) (*Deployment, error) {
	var latest *Deployment
	err := db.scan(chainID, true, func(d *Deployment) bool {
		if d.Contract == contract {
			latest = d
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.Wrapf(ErrNotFound, "%s on chain %d", contract, chainID)
	}
	return latest, nil
}

func (db *DB) scan(chainID uint64, reverse bool, fn func(*Deployment) bool) error {
	it := db.client.NewIterator(util.BytesPrefix(chainKey(indexPrefix, chainID)), nil)
	defer it.Release()

	next := it.Next
	ok := it.First()
	if reverse {
		next = it.Prev
		ok = it.Last()
	}
	for ; ok; ok = next() {
		d, err := db.Get(chainID, common.BytesToAddress(it.Value()))
		if err != nil {
			return err
		}
		if !fn(d) {
			break
		}
	}
	return errors.Wrap(it.Error(), "scan deployments")
}

func (db *DB) nextSeq(chainID uint64) (uint64, error) {
	v, err := db.client.Get(counterKey(chainID), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read index counter")
	}
	return binary.BigEndian.Uint64(v), nil
}

func chainKey(prefix byte, chainID uint64) []byte {
	return append([]byte{prefix}, encodeUint(chainID)...)
}

func recordKey(chainID uint64, address common.Address) []byte {
	return append(chainKey(recordPrefix, chainID), address.Bytes()...)
}

func indexKey(chainID, seq uint64) []byte {
	return append(chainKey(indexPrefix, chainID), encodeUint(seq)...)
}

func counterKey(chainID uint64) []byte {
	return chainKey(counterPrefix, chainID)
}

func encodeUint(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

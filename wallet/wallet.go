// Package wallet loads deployer accounts from encrypted keystore files.
package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrNoAccount        = errors.New("keystore account not found")
	ErrAmbiguousAccount = errors.New("several keystore accounts, pick one by id")
)

type Account struct {
	ID      string
	Address common.Address

	key *ecdsa.PrivateKey
}

// Transactor returns signing options bound to the account for chainID.
func (a *Account) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(a.key, chainID)
}

// List returns the ids of the keystore files in dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read keystore dir")
	}
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Load decrypts the keystore identified by id. An empty id selects the only
// keystore in dir.
func Load(dir, id string, password PasswordFunc) (*Account, error) {
	path, id, err := resolve(dir, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read keystore %s", id)
	}
	pass, err := password(id)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(data, pass)
	if err != nil {
		return nil, errors.Wrapf(err, "unlock %s", id)
	}
	return &Account{ID: id, Address: key.Address, key: key.PrivateKey}, nil
}

func resolve(dir, id string) (string, string, error) {
	if id == "" {
		ids, err := List(dir)
		if err != nil {
			return "", "", err
		}
		switch len(ids) {
		case 0:
			return "", "", errors.Wrapf(ErrNoAccount, "no keystores in %s", dir)
		case 1:
			id = ids[0]
		default:
			return "", "", errors.Wrapf(ErrAmbiguousAccount, "available: %s", strings.Join(ids, ", "))
		}
	}
	for _, candidate := range []string{
		filepath.Join(dir, id+".json"),
		filepath.Join(dir, id),
		id,
	} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, id, nil
		}
	}
	return "", "", errors.Wrap(ErrNoAccount, id)
}

package programs

import (
	"math/big"
	"time"

	"flashloan_go/blockchain"
	"flashloan_go/registry"
	"flashloan_go/wallet"

	"go.uber.org/zap"
)

// AccountLoader resolves the sending account, typically from a keystore.
type AccountLoader func() (*wallet.Account, error)

// KeystoreAccount loads id from dir, asking for the password only when pass is empty.
func KeystoreAccount(dir, id, pass string) AccountLoader {
	return func() (*wallet.Account, error) {
		return wallet.Load(dir, id, wallet.StaticPassword(pass))
	}
}

// Env is everything a deployment script runs against.
type Env struct {
	Backend  blockchain.Backend
	ChainID  *big.Int
	Account  AccountLoader
	BuildDir string
	Registry *registry.DB // nil disables recording
	Gas      blockchain.GasSettings
	Timeout  time.Duration // bound on waiting for the receipt, 0 waits forever
	Sugar    *zap.SugaredLogger
}

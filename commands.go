package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"flashloan_go/artifacts"
	"flashloan_go/blockchain"
	"flashloan_go/config"
	"flashloan_go/deployer"
	"flashloan_go/logging"
	"flashloan_go/programs"
	"flashloan_go/registry"
	"flashloan_go/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg   *config.Config
	sugar *zap.SugaredLogger
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}
	root := &cobra.Command{
		Use:           "flashloan",
		Short:         "Deploy the Flashloan contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.sugar = logging.GetSugar("flashloan", a.cfg.LOG_LEVEL, a.cfg.LOG_FILE)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.NETWORK, "network", cfg.NETWORK, "network id from the networks file")
	flags.StringVar(&cfg.KEYSTORE_ID, "account", cfg.KEYSTORE_ID, "keystore id to deploy from")
	flags.StringVar(&cfg.LOG_LEVEL, "log-level", cfg.LOG_LEVEL, "debug, info, warn or error")

	root.AddCommand(
		a.runCmd(),
		a.verifyCmd(),
		a.deploymentsCmd(),
		a.accountsCmd(),
		a.scriptsCmd(),
	)
	return root
}

// wrap logs the error a command fails with.
func (a *app) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			a.sugar.Errorw("Failed", "command", cmd.Name(), "err", err)
		}
		return err
	}
}

func (a *app) runCmd() *cobra.Command {
	var noRecord bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a deployment script",
		Args:  cobra.ExactArgs(1),
		RunE: a.wrap(func(cmd *cobra.Command, args []string) error {
			script, err := programs.Lookup(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			client, chainID, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			env := &programs.Env{
				Backend:  client,
				ChainID:  chainID,
				Account:  programs.KeystoreAccount(a.cfg.KEYSTORE_DIR, a.cfg.KEYSTORE_ID, a.cfg.KEYSTORE_PASSWORD),
				BuildDir: a.cfg.BUILD_DIR,
				Gas: blockchain.GasSettings{
					GasLimit:        a.cfg.GAS_LIMIT,
					MaxFeeGwei:      a.cfg.MAX_FEE_GWEI,
					PriorityFeeGwei: a.cfg.PRIORITY_FEE_GWEI,
				},
				Timeout: a.cfg.DEPLOY_TIMEOUT,
				Sugar:   a.sugar,
			}
			if !noRecord {
				db, err := registry.Open(a.cfg.DEPLOYMENTS_DB, a.sugar)
				if err != nil {
					return err
				}
				defer db.Close()
				env.Registry = db
			}

			contract, err := script.Main(ctx, env)
			if contract != nil {
				fmt.Fprintln(cmd.OutOrStdout(), contract.Address.Hex())
			}
			return err
		}),
	}
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record the deployment")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "verify <script> <address>",
		Short: "Check a deployment's code and constructor values",
		Args:  cobra.ExactArgs(2),
		RunE: a.wrap(func(cmd *cobra.Command, args []string) error {
			script, err := programs.Lookup(args[0])
			if err != nil {
				return err
			}
			if !common.IsHexAddress(args[1]) {
				return errors.Errorf("invalid address %q", args[1])
			}
			address := common.HexToAddress(args[1])

			contractType, err := artifacts.Load(a.cfg.BUILD_DIR, script.Contract)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, chainID, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			expect := deployer.Expect{ProviderGetter: script.ProviderGetter, Provider: script.Provider}
			if owner != "" {
				expect.Owner = common.HexToAddress(owner)
			} else if d := a.recorded(chainID, address); d != nil {
				expect.Owner = d.Deployer
			}

			report, err := deployer.Verify(ctx, client, deployer.At(client, contractType, address), expect)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, check := range report.Checks {
				status := "ok"
				if check.Skipped {
					status = "skip"
				} else if !check.Passed {
					status = "FAIL"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, status, check.Detail)
			}
			w.Flush()
			if !report.OK() {
				return errors.Errorf("%s at %s failed verification", script.Contract, address.Hex())
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "expected owner (defaults to the recorded deployer)")
	return cmd
}

func (a *app) deploymentsCmd() *cobra.Command {
	var contract string
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "List recorded deployments on the selected network",
		Args:  cobra.NoArgs,
		RunE: a.wrap(func(cmd *cobra.Command, args []string) error {
			chainID, err := a.chainID(cmd.Context())
			if err != nil {
				return err
			}
			db, err := registry.Open(a.cfg.DEPLOYMENTS_DB, a.sugar)
			if err != nil {
				return err
			}
			defer db.Close()

			var list []*registry.Deployment
			if contract != "" {
				d, err := db.Latest(chainID.Uint64(), contract)
				if err != nil {
					return err
				}
				list = []*registry.Deployment{d}
			} else if list, err = db.List(chainID.Uint64()); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CONTRACT\tADDRESS\tBLOCK\tDEPLOYED\tTX")
			for _, d := range list {
				deployed := time.Unix(int64(d.Timestamp), 0).UTC().Format(time.RFC3339)
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.Contract, d.Address.Hex(), d.BlockNumber, deployed, d.TxHash.Hex())
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&contract, "contract", "", "only show the latest deployment of this contract")
	return cmd
}

func (a *app) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List keystore ids",
		Args:  cobra.NoArgs,
		RunE: a.wrap(func(cmd *cobra.Command, args []string) error {
			ids, err := wallet.List(a.cfg.KEYSTORE_DIR)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}

func (a *app) scriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List deployment scripts",
		Args:  cobra.NoArgs,
		RunE: a.wrap(func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range programs.Names() {
				script := programs.Scripts[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", script.Name, script.Contract, script.Provider.Hex())
			}
			return w.Flush()
		}),
	}
}

func (a *app) dial(ctx context.Context) (*ethclient.Client, *big.Int, error) {
	network, err := a.cfg.Network()
	if err != nil {
		return nil, nil, err
	}
	client, err := blockchain.Dial(ctx, network.URL())
	if err != nil {
		return nil, nil, err
	}
	chainID, err := blockchain.ResolveChainID(ctx, client, network.ChainID)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	a.sugar.Debugw("Connected", "network", network.ID, "chain", chainID)
	return client, chainID, nil
}

// chainID avoids dialing when the network config already names the chain.
func (a *app) chainID(ctx context.Context) (*big.Int, error) {
	network, err := a.cfg.Network()
	if err != nil {
		return nil, err
	}
	if network.ChainID != 0 {
		return big.NewInt(network.ChainID), nil
	}
	client, chainID, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	client.Close()
	return chainID, nil
}

func (a *app) recorded(chainID *big.Int, address common.Address) *registry.Deployment {
	db, err := registry.Open(a.cfg.DEPLOYMENTS_DB, a.sugar)
	if err != nil {
		a.sugar.Debugw("No deployments db", "err", err)
		return nil
	}
	defer db.Close()
	d, err := db.Get(chainID.Uint64(), address)
	if err != nil {
		return nil
	}
	return d
}

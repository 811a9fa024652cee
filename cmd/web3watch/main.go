//  Copyright (C) 2023-2024 Quay Labs, Inc.
//
//  This program is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Affero General Public License as
//  published by the Free Software Foundation, either version 3 of the
//  License, or (at your option) any later version.
//
//  This program is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Affero General Public License for more details.
//
//  You should have received a copy of the GNU Affero General Public License
//  along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/defiweb/go-eth/hexutil"
	"github.com/defiweb/go-eth/rpc/transport"
	"github.com/defiweb/go-eth/types"
	"github.com/defiweb/go-eth/wallet"

	"github.com/quaylabs/web3watch/core"
)

type options struct {
	SecretKey       string
	Key             string
	Password        string
	PasswordFile    string
	RpcURL          string
	SubscriptionURL string
	Address         []string
	Event           string
	FromBlock       uint64
	ToBlock         uint64
	ChainID         uint64
	Timeout         time.Duration
	Verbose         bool
}

// Checks and returns private key based on given options
func (o *options) getKey() (*wallet.PrivateKey, error) {
	if o.SecretKey != "" {
		return wallet.NewKeyFromBytes(types.MustBytesFromHex(o.SecretKey)), nil
	}

	if o.Key == "" {
		return nil, fmt.Errorf("please provide key using `--keystore` flag")
	}

	stat, err := os.Stat(o.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore file: %v", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("keystore file is a directory")
	}

	if o.Password == "" && o.PasswordFile == "" {
		return nil, fmt.Errorf("please provide password using `--password` or `--password-file` flag")
	}
	var password string
	if o.Password != "" {
		password = o.Password
	} else if o.PasswordFile != "" {
		p, err := os.ReadFile(o.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read password file: %v", err)
		}
		password = string(p)
	}

	return wallet.NewKeyFromJSON(o.Key, password)
}

func (o *options) getClient() (*core.Client, error) {
	if o.RpcURL == "" {
		return nil, fmt.Errorf("please provide Rpc URL using `--rpc-url` flag")
	}
	t, err := transport.NewHTTP(transport.HTTPOptions{URL: o.RpcURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %v", err)
	}
	return core.NewClient(t, o.ChainID), nil
}

func (o *options) getAddresses() ([]types.Address, error) {
	if len(o.Address) == 0 {
		return nil, fmt.Errorf("please provide address using `--addresses` flag")
	}
	var addresses []types.Address
	for _, address := range o.Address {
		a, err := types.AddressFromHex(address)
		if err != nil {
			return nil, fmt.Errorf("failed to parse given address %s with error: %v", address, err)
		}
		addresses = append(addresses, a)
	}
	return addresses, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "web3watch",
		Short: "Watch contract events and send transactions on Ethereum-style chains",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				logger.SetLevel(logger.DebugLevel)
			}
			core.RegisterMetrics(prometheus.DefaultRegisterer)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Wait for a single contract event",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.getClient()
			if err != nil {
				return err
			}
			addresses, err := opts.getAddresses()
			if err != nil {
				return err
			}
			if opts.Event == "" {
				return fmt.Errorf("please provide event signature using `--event` flag")
			}

			ctx := cmdContext(cmd)

			var log *types.Log
			if opts.SubscriptionURL != "" {
				log, err = core.WatchEvent(ctx, opts.SubscriptionURL, addresses, opts.Event, core.MatchAny)
			} else {
				watcher := core.NewEventWatcher(client)
				log, err = watcher.WaitForEvent(ctx, opts.Timeout, addresses, opts.Event, nil, core.MatchAny)
			}
			if err != nil {
				return err
			}
			logger.Infof("Event %q emitted by %v in block %v", opts.Event, log.Address, log.BlockNumber)
			return nil
		},
	}
	watchCmd.Flags().StringVar(&opts.Event, "event", "", "Event signature. Example: `Transfer(address,address,uint256)`")
	watchCmd.Flags().DurationVar(&opts.Timeout, "timeout", 60*time.Second, "How long to poll before giving up")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Query historical logs over a block range",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.getClient()
			if err != nil {
				return err
			}
			addresses, err := opts.getAddresses()
			if err != nil {
				return err
			}
			if opts.Event == "" {
				return fmt.Errorf("please provide event signature using `--event` flag")
			}

			var toBlock *big.Int
			if opts.ToBlock != 0 {
				toBlock = new(big.Int).SetUint64(opts.ToBlock)
			}

			scanner := core.NewRangeScanner(client)
			logs, err := scanner.CheckForEvents(
				cmdContext(cmd),
				new(big.Int).SetUint64(opts.FromBlock),
				toBlock,
				addresses,
				[]string{opts.Event},
			)
			if err != nil {
				return err
			}
			for _, log := range logs {
				logger.Infof("Block %v: %v emitted %s", log.BlockNumber, log.Address, core.ToWireHex(log.Data))
			}
			logger.Infof("Found %d logs", len(logs))
			return nil
		},
	}
	scanCmd.Flags().StringVar(&opts.Event, "event", "", "Event signature. Example: `Transfer(address,address,uint256)`")
	scanCmd.Flags().Uint64Var(&opts.FromBlock, "from-block", 0, "Block number to start from")
	scanCmd.Flags().Uint64Var(&opts.ToBlock, "to-block", 0, "Block number to stop at. If not provided, the finalized height is used")

	var sendTo, sendValue, sendData string
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and submit a transaction, then wait for it on-chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.getClient()
			if err != nil {
				return err
			}
			key, err := opts.getKey()
			if err != nil {
				return err
			}
			to, err := types.AddressFromHex(sendTo)
			if err != nil {
				return fmt.Errorf("failed to parse `--to` address: %v", err)
			}
			value := new(big.Int)
			if sendValue != "" {
				if _, ok := value.SetString(sendValue, 10); !ok {
					return fmt.Errorf("failed to parse `--value` as a decimal wei amount")
				}
			}
			var data []byte
			if sendData != "" {
				data, err = hexutil.HexToBytes(sendData)
				if err != nil {
					return fmt.Errorf("failed to parse `--data` hex: %v", err)
				}
			}

			ctx := cmdContext(cmd)
			pipeline := core.NewTxPipeline(client, opts.ChainID)
			hash, err := pipeline.SendTransaction(ctx, to, data, value, key.Address(), key)
			if err != nil {
				return err
			}
			logger.Infof("Transaction hash: %v", hash)

			tx, err := core.NewTxWaiter(client).WaitForTransaction(ctx, *hash)
			if err != nil {
				return err
			}
			logger.Infof("Transaction observable on-chain in block %v", tx.BlockNumber)
			return nil
		},
	}
	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient address")
	sendCmd.Flags().StringVar(&sendValue, "value", "", "Value in wei, decimal")
	sendCmd.Flags().StringVar(&sendData, "data", "", "Call data as `0x...` hex")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Print balances of the given addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.getClient()
			if err != nil {
				return err
			}
			addresses, err := opts.getAddresses()
			if err != nil {
				return err
			}
			for _, address := range addresses {
				balance, err := client.Balance(cmdContext(cmd), address)
				if err != nil {
					return err
				}
				logger.Infof("%v: %v wei", address, balance)
			}
			return nil
		},
	}

	waitTxCmd := &cobra.Command{
		Use:   "wait-tx [hash]",
		Short: "Block until a transaction is observable on-chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.getClient()
			if err != nil {
				return err
			}
			hash, err := types.HashFromHex(args[0], types.PadLeft)
			if err != nil {
				return fmt.Errorf("failed to parse transaction hash: %v", err)
			}
			tx, err := core.NewTxWaiter(client).WaitForTransaction(cmdContext(cmd), hash)
			if err != nil {
				return err
			}
			logger.Infof("Transaction observable on-chain in block %v", tx.BlockNumber)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.SecretKey, "secret-key", "", "Private key in format `0x******` or `*******`. If provided, no need to use --keystore")
	rootCmd.PersistentFlags().StringVar(&opts.Key, "keystore", "", "Keystore file (NOT FOLDER), path to key .json file. If provided, no need to use --secret-key")
	rootCmd.PersistentFlags().StringVar(&opts.Password, "password", "", "Key raw password as text")
	rootCmd.PersistentFlags().StringVar(&opts.PasswordFile, "password-file", "", "Path to key password file")
	rootCmd.PersistentFlags().StringVar(&opts.RpcURL, "rpc-url", "", "Node HTTP RPC_URL, normally starts with https://****")
	rootCmd.PersistentFlags().StringVar(&opts.SubscriptionURL, "subscription-url", "", "[Optional] Used if you want to subscribe to events rather than poll, typically starts with wss://****")
	rootCmd.PersistentFlags().StringArrayVarP(&opts.Address, "addresses", "a", []string{}, "Contract address. Example: `0x891E368fE81cBa2aC6F6cc4b98e684c106e2EF4f`")
	rootCmd.PersistentFlags().Uint64Var(&opts.ChainID, "chain-id", 0, "Chain ID transactions are signed for. Required for `send`")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(watchCmd, scanCmd, sendCmd, balanceCmd, waitTxCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
	"github.com/interlock-network/ilock-sdk-go/pkg/deployments"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/spf13/cobra"
)

func newDeployCommand(app *cli) *cobra.Command {
	command := &cobra.Command{
		Use:   "deploy",
		Short: "Run genesis and record the deployment for the network",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if _, err := os.Stat(app.config.StatePath); err == nil {
				return fmt.Errorf("%s already exists", app.config.StatePath)
			}

			registry, err := deployments.LoadRegistry(app.config.RegistryPath)
			if err != nil {
				return err
			}

			flags := command.Flags()
			variantName, _ := flags.GetString("variant")
			variant, err := ilock.ParseVariant(variantName)
			if err != nil {
				return err
			}
			contract, _ := flags.GetString("contract")

			args, _ := registry.Args(app.config.Network, contract)
			if owner, _ := flags.GetString("owner"); owner != "" {
				if args.InitialOwner, err = app.resolveAddress(owner, nil); err != nil {
					return err
				}
			}
			if args.InitialOwner == (common.Address{}) && app.config.Network == defaultNetwork {
				args.InitialOwner = app.signers.InitialOwner.Address
			}
			if proxyAdmin, _ := flags.GetString("proxy-admin"); proxyAdmin != "" {
				if args.ProxyAdminOwner, err = app.resolveAddress(proxyAdmin, nil); err != nil {
					return err
				}
			}
			if flags.Changed("salt") {
				args.Salt, _ = flags.GetString("salt")
			}
			if args.InitialOwner != (common.Address{}) {
				registry.SetArgs(app.config.Network, contract, args)
			}

			settings := ilock.DefaultSettings()
			settings.Variant = variant
			publisher, closePublisher, err := app.newPublisher(settings.Name)
			if err != nil {
				return err
			}
			defer closePublisher()
			options := []ilock.Option{ilock.WithClock(app.clock()), ilock.WithLogger(app.logger)}
			if publisher != nil {
				options = append(options, ilock.WithEventSink(publisher))
			}

			token, record, err := registry.Deploy(deployments.DeployParams{
				Network:  app.config.Network,
				Contract: contract,
				Deployer: app.signers.Deployer.Address,
				Settings: settings,
				Options:  options,
				Now:      app.deployTime(),
			})
			if err != nil {
				return err
			}

			record.Snapshot = app.config.StatePath
			record.AnchorTopicID = app.config.AnchorTopic
			registry.Put(record)
			var genesisMessages []anchor.Message
			if publisher != nil {
				genesisMessages = publisher.PendingMessages()
			}
			if err := deployments.WritePending(app.pendingPath(), genesisMessages); err != nil {
				return err
			}
			if err := deployments.WriteSnapshot(app.config.StatePath, token.Snapshot()); err != nil {
				return err
			}
			if err := registry.Save(app.config.RegistryPath); err != nil {
				return err
			}

			app.logger.Info().
				Str("network", record.Network).
				Str("address", record.Address.Hex()).
				Str("variant", string(record.Variant)).
				Msg("deployed")
			fmt.Fprintf(command.OutOrStdout(), "%s deployed to: %s\n", record.Contract, record.Address.Hex())
			return app.flush(command.Context(), publisher)
		},
	}

	flags := command.Flags()
	flags.String("variant", string(ilock.VariantRoles), "token variant: roles or treasury")
	flags.String("contract", deployments.ContractInterlockNetwork, "contract name in the registry")
	flags.String("owner", "", "initial owner (default the registry args, or initialOwner on hardhat)")
	flags.String("proxy-admin", "", "proxy admin owner (default the deployer)")
	flags.String("salt", "", "deployment salt for a deterministic address")
	return command
}

func newImportCommand(app *cli) *cobra.Command {
	command := &cobra.Command{
		Use:   "import <address>",
		Short: "Record an instance deployed elsewhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			registry, err := deployments.LoadRegistry(app.config.RegistryPath)
			if err != nil {
				return err
			}
			address, err := app.resolveAddress(args[0], nil)
			if err != nil {
				return err
			}
			contract, _ := command.Flags().GetString("contract")
			record, err := registry.Import(app.config.Network, strings.TrimSpace(contract), address, app.deployTime())
			if err != nil {
				return err
			}
			if err := registry.Save(app.config.RegistryPath); err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), "%s imported at: %s\n", record.Contract, record.Address.Hex())
			return nil
		},
	}
	command.Flags().String("contract", deployments.ContractInterlockNetwork, "contract name in the registry")
	return command
}

func (app *cli) deployTime() time.Time {
	if app.config.At > 0 {
		return time.Unix(int64(app.config.At), 0).UTC()
	}
	return time.Now().UTC()
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/interlock-network/ilock-sdk-go/pkg/accounts"
	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultStatePath    = "ilock-state.json"
	defaultRegistryPath = "deployments.json"
	defaultNetwork      = "hardhat"
)

type cliConfig struct {
	StatePath    string
	RegistryPath string
	Network      string
	Mnemonic     string
	LogLevel     string
	LogJSON      bool
	At           uint64
	AnchorTopic  string
}

// submitterFactory opens the submitter anchored events go through. The
// returned func releases it.
type submitterFactory func(network string) (anchor.Submitter, func(), error)

// cli is the state shared by every command of one invocation.
type cli struct {
	settings      *viper.Viper
	config        cliConfig
	logger        zerolog.Logger
	signers       accounts.Signers
	openSubmitter submitterFactory
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(openHederaSubmitter)
}

func newRootCommandWith(openSubmitter submitterFactory) *cobra.Command {
	app := &cli{settings: viper.New(), openSubmitter: openSubmitter}

	root := &cobra.Command{
		Use:           "ilock",
		Short:         "Operate a local ILOCK token ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			return app.load(command)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./ilock.yaml)")
	flags.String("state", defaultStatePath, "token snapshot file; a .br suffix compresses it")
	flags.String("registry", defaultRegistryPath, "deployment registry file")
	flags.String("network", defaultNetwork, "deployment network name")
	flags.String("mnemonic", accounts.DefaultMnemonic, "mnemonic for the named signers")
	flags.String("log-level", "", "log level (default $ILOCK_LOG_LEVEL or info)")
	flags.Bool("log-json", false, "log JSON lines instead of console output")
	flags.Uint64("at", 0, "unix time to run the operation at (default now)")
	flags.String("anchor-topic", "", "HCS topic to anchor events to (default $ILOCK_ANCHOR_TOPIC_ID)")
	_ = app.settings.BindPFlags(flags)

	root.AddCommand(
		newAccountsCommand(app),
		newDeployCommand(app),
		newImportCommand(app),
		newInfoCommand(app),
		newExportCommand(app),
		newBalanceCommand(app),
		newAllowanceCommand(app),
		newMintCommand(app),
		newBurnCommand(app),
		newTransferCommand(app),
		newTransferFromCommand(app),
		newApproveCommand(app),
		newPauseCommand(app, true),
		newPauseCommand(app, false),
		newCooldownCommand(app),
		newRoleCommand(app, roleGrant),
		newRoleCommand(app, roleRevoke),
		newRoleCommand(app, roleRenounce),
		newTransferOwnershipCommand(app),
		newRenounceOwnershipCommand(app),
		newTreasuryApproveCommand(app),
		newAnchorCommand(app),
	)
	return root
}

func (app *cli) load(command *cobra.Command) error {
	dotenvPath := shared.LoadDotEnv()

	settings := app.settings
	settings.SetEnvPrefix("ILOCK")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	if configFile := settings.GetString("config"); configFile != "" {
		settings.SetConfigFile(configFile)
	} else {
		settings.SetConfigName("ilock")
		settings.SetConfigType("yaml")
		settings.AddConfigPath(".")
	}
	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	app.config = cliConfig{
		StatePath:    settings.GetString("state"),
		RegistryPath: settings.GetString("registry"),
		Network:      strings.TrimSpace(settings.GetString("network")),
		Mnemonic:     settings.GetString("mnemonic"),
		LogLevel:     settings.GetString("log-level"),
		LogJSON:      settings.GetBool("log-json"),
		At:           settings.GetUint64("at"),
		AnchorTopic:  strings.TrimSpace(settings.GetString("anchor-topic")),
	}
	if app.config.AnchorTopic == "" {
		app.config.AnchorTopic = strings.TrimSpace(settings.GetString("anchor_topic_id"))
	}

	app.logger = shared.NewLogger(shared.LoggerOptions{
		Level:   app.config.LogLevel,
		Console: !app.config.LogJSON,
		Output:  command.ErrOrStderr(),
	})
	if dotenvPath != "" {
		app.logger.Debug().Str("path", dotenvPath).Msg("loaded .env")
	}

	signers, err := accounts.NamedSigners(app.config.Mnemonic)
	if err != nil {
		return fmt.Errorf("failed to derive signers: %w", err)
	}
	app.signers = signers
	return nil
}

func (app *cli) clock() ilock.Clock {
	if app.config.At > 0 {
		return ilock.NewManualClock(app.config.At)
	}
	return ilock.SystemClock{}
}

// resolveAddress accepts a signer name, "treasury" or a hex address.
func (app *cli) resolveAddress(value string, token *ilock.Token) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if account, ok := app.signers.ByName(trimmed); ok {
		return account.Address, nil
	}
	if strings.EqualFold(trimmed, "treasury") && token != nil && token.Variant() == ilock.VariantTreasury {
		return token.Treasury(), nil
	}
	return accounts.ParseAddress(trimmed)
}

func (app *cli) caller(command *cobra.Command, token *ilock.Token) (common.Address, error) {
	from, _ := command.Flags().GetString("from")
	if strings.TrimSpace(from) == "" {
		return common.Address{}, fmt.Errorf("--from is required")
	}
	return app.resolveAddress(from, token)
}

func addFromFlag(command *cobra.Command) {
	command.Flags().String("from", "", "signer name or address sending the operation")
}

// parseAmount reads whole-token decimals such as "1.5", raw base units with
// a "wei" suffix, or "max" for the unlimited allowance.
func parseAmount(value string, decimals uint8) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(value)
	switch {
	case strings.EqualFold(trimmed, "max"):
		return ilock.MaxAmount(), nil
	case strings.HasSuffix(trimmed, "wei"):
		amount, err := uint256.FromDecimal(strings.TrimSuffix(trimmed, "wei"))
		if err != nil {
			return nil, ilock.NewInvalidAmountError(value)
		}
		return amount, nil
	default:
		return ilock.ParseUnits(trimmed, decimals)
	}
}

func formatAmount(amount *uint256.Int, token *ilock.Token) string {
	if amount.Eq(ilock.MaxAmount()) {
		return "unlimited"
	}
	return ilock.FormatUnits(amount, token.Decimals()) + " " + token.Symbol()
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/spf13/cobra"
)

func newAccountsCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the named development signers",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			for _, account := range app.signers.All() {
				fmt.Fprintf(command.OutOrStdout(), "%-13s %s\n", account.Name, account.Address.Hex())
			}
			return nil
		},
	}
}

func newInfoCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show token metadata, supply and gates",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			token, err := app.readToken()
			if err != nil {
				return err
			}
			out := command.OutOrStdout()
			fmt.Fprintf(out, "name:         %s\n", token.Name())
			fmt.Fprintf(out, "symbol:       %s\n", token.Symbol())
			fmt.Fprintf(out, "decimals:     %d\n", token.Decimals())
			fmt.Fprintf(out, "variant:      %s\n", token.Variant())
			fmt.Fprintf(out, "total supply: %s\n", formatAmount(token.TotalSupply(), token))
			fmt.Fprintf(out, "cap:          %s\n", formatAmount(token.Cap(), token))
			fmt.Fprintf(out, "paused:       %t\n", token.Paused())
			if token.CooldownEnabled() {
				fmt.Fprintf(out, "cooldown:     %ds for transfers of %s or more\n", token.TransferCooldownDuration(), formatAmount(token.TransferCooldownThreshold(), token))
			} else {
				fmt.Fprintln(out, "cooldown:     off")
			}
			if token.Variant() == ilock.VariantTreasury {
				fmt.Fprintf(out, "owner:        %s\n", token.Owner().Hex())
				fmt.Fprintf(out, "treasury:     %s\n", token.Treasury().Hex())
			} else {
				for _, role := range []ilock.Role{ilock.DefaultAdminRole, ilock.PauserRole, ilock.MinterRole, ilock.BurnerRole} {
					for _, member := range token.RoleMembers(role) {
						fmt.Fprintf(out, "role:         %s %s\n", role.Name(), member.Hex())
					}
				}
			}
			return nil
		},
	}
}

func newExportCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the full token state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			token, err := app.readToken()
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(command.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(token.Snapshot())
		},
	}
}

func newBalanceCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			token, err := app.readToken()
			if err != nil {
				return err
			}
			account, err := app.resolveAddress(args[0], token)
			if err != nil {
				return err
			}
			fmt.Fprintln(command.OutOrStdout(), formatAmount(token.BalanceOf(account), token))
			return nil
		},
	}
}

func newAllowanceCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "allowance <owner> <spender>",
		Short: "Show how much spender may move from owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			token, err := app.readToken()
			if err != nil {
				return err
			}
			owner, err := app.resolveAddress(args[0], token)
			if err != nil {
				return err
			}
			spender, err := app.resolveAddress(args[1], token)
			if err != nil {
				return err
			}
			fmt.Fprintln(command.OutOrStdout(), formatAmount(token.Allowance(owner, spender), token))
			return nil
		},
	}
}

// newAmountCommand builds the commands shaped "<verb> <account> <amount> --from signer".
func newAmountCommand(
	app *cli,
	use string,
	short string,
	apply func(token *ilock.Token, caller, account common.Address, amount *uint256.Int) error,
) *cobra.Command {
	command := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				account, err := app.resolveAddress(args[0], token)
				if err != nil {
					return err
				}
				amount, err := parseAmount(args[1], token.Decimals())
				if err != nil {
					return err
				}
				if err := apply(token, caller, account, amount); err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "%s %s %s\n", command.Name(), formatAmount(amount, token), account.Hex())
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

func newMintCommand(app *cli) *cobra.Command {
	return newAmountCommand(app, "mint <to> <amount>", "Mint new tokens", func(token *ilock.Token, caller, to common.Address, amount *uint256.Int) error {
		return token.Mint(caller, to, amount)
	})
}

func newBurnCommand(app *cli) *cobra.Command {
	return newAmountCommand(app, "burn <from> <amount>", "Burn tokens held by an account", func(token *ilock.Token, caller, from common.Address, amount *uint256.Int) error {
		return token.Burn(caller, from, amount)
	})
}

func newTransferCommand(app *cli) *cobra.Command {
	return newAmountCommand(app, "transfer <to> <amount>", "Transfer tokens from the sender", func(token *ilock.Token, caller, to common.Address, amount *uint256.Int) error {
		return token.Transfer(caller, to, amount)
	})
}

func newApproveCommand(app *cli) *cobra.Command {
	return newAmountCommand(app, "approve <spender> <amount>", "Set a spender allowance (amount may be max)", func(token *ilock.Token, caller, spender common.Address, amount *uint256.Int) error {
		return token.Approve(caller, spender, amount)
	})
}

func newTreasuryApproveCommand(app *cli) *cobra.Command {
	return newAmountCommand(app, "treasury-approve <spender> <amount>", "Set a spender allowance over the treasury", func(token *ilock.Token, caller, spender common.Address, amount *uint256.Int) error {
		return token.TreasuryApprove(caller, spender, amount)
	})
}

func newTransferFromCommand(app *cli) *cobra.Command {
	command := &cobra.Command{
		Use:   "transfer-from <from> <to> <amount>",
		Short: "Move tokens using the sender's allowance",
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, args []string) error {
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				from, err := app.resolveAddress(args[0], token)
				if err != nil {
					return err
				}
				to, err := app.resolveAddress(args[1], token)
				if err != nil {
					return err
				}
				amount, err := parseAmount(args[2], token.Decimals())
				if err != nil {
					return err
				}
				if err := token.TransferFrom(caller, from, to, amount); err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "transfer-from %s %s -> %s\n", formatAmount(amount, token), from.Hex(), to.Hex())
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

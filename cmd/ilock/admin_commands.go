package main

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/spf13/cobra"
)

func newPauseCommand(app *cli, pause bool) *cobra.Command {
	use, short := "pause", "Pause transfers"
	if !pause {
		use, short = "unpause", "Resume transfers"
	}
	command := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				if pause {
					err = token.Pause(caller)
				} else {
					err = token.Unpause(caller)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "paused: %t\n", token.Paused())
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

func newCooldownCommand(app *cli) *cobra.Command {
	cooldown := &cobra.Command{
		Use:   "cooldown",
		Short: "Inspect or configure the large-transfer cooldown",
	}

	set := &cobra.Command{
		Use:   "set <duration-seconds> <threshold>",
		Short: "Replace the cooldown duration and threshold (0 turns it off)",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			var duration uint64
			if _, err := fmt.Sscan(args[0], &duration); err != nil {
				return fmt.Errorf("invalid duration %q", args[0])
			}
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				threshold, err := parseAmount(args[1], token.Decimals())
				if err != nil {
					return err
				}
				if err := token.SetUpCooldown(caller, duration, threshold); err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "cooldown: %ds for transfers of %s or more\n", duration, formatAmount(threshold, token))
				return nil
			})
		},
	}
	addFromFlag(set)

	show := &cobra.Command{
		Use:   "show <account>",
		Short: "Show when an account may next send a large transfer",
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
			out := command.OutOrStdout()
			last, ok := token.LastLargeTransferAt(account)
			if !ok {
				fmt.Fprintf(out, "%s has no large transfer on record\n", account.Hex())
				return nil
			}
			fmt.Fprintf(out, "last large transfer: %d\n", last)
			if token.CooldownEnabled() {
				availableAt := uint64(math.MaxUint64)
				if duration := token.TransferCooldownDuration(); last < math.MaxUint64-duration {
					availableAt = last + duration + 1
				}
				fmt.Fprintf(out, "available at:        %d\n", availableAt)
			}
			return nil
		},
	}

	cooldown.AddCommand(set, show)
	return cooldown
}

type roleAction string

const (
	roleGrant    roleAction = "grant-role"
	roleRevoke   roleAction = "revoke-role"
	roleRenounce roleAction = "renounce-role"
)

func newRoleCommand(app *cli, action roleAction) *cobra.Command {
	use := string(action) + " <role> <account>"
	short := map[roleAction]string{
		roleGrant:    "Grant a role (DEFAULT_ADMIN only)",
		roleRevoke:   "Revoke a role (DEFAULT_ADMIN only)",
		roleRenounce: "Give up a role held by the sender",
	}[action]
	args := cobra.ExactArgs(2)
	if action == roleRenounce {
		use = string(action) + " <role>"
		args = cobra.ExactArgs(1)
	}

	command := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(command *cobra.Command, args []string) error {
			role, err := ilock.ParseRole(args[0])
			if err != nil {
				return err
			}
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				account := caller
				if len(args) > 1 {
					if account, err = app.resolveAddress(args[1], token); err != nil {
						return err
					}
				}

				switch action {
				case roleGrant:
					err = token.GrantRole(caller, role, account)
				case roleRevoke:
					err = token.RevokeRole(caller, role, account)
				default:
					err = token.RenounceRole(caller, role, account)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "%s held by %s: %t\n", role.Name(), account.Hex(), token.HasRole(role, account))
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

func newTransferOwnershipCommand(app *cli) *cobra.Command {
	command := &cobra.Command{
		Use:   "transfer-ownership <new-owner>",
		Short: "Hand the treasury token to a new owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				newOwner, err := app.resolveAddress(args[0], token)
				if err != nil {
					return err
				}
				if err := token.TransferOwnership(caller, newOwner); err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "owner: %s\n", token.Owner().Hex())
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

func newRenounceOwnershipCommand(app *cli) *cobra.Command {
	command := &cobra.Command{
		Use:   "renounce-ownership",
		Short: "Leave the treasury token without an owner",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return app.mutate(command, func(token *ilock.Token) error {
				caller, err := app.caller(command, token)
				if err != nil {
					return err
				}
				if err := token.RenounceOwnership(caller); err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "owner: %s\n", common.Address{}.Hex())
				return nil
			})
		},
	}
	addFromFlag(command)
	return command
}

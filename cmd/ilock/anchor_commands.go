package main

import (
	"errors"
	"fmt"

	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
	"github.com/interlock-network/ilock-sdk-go/pkg/deployments"
	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
	"github.com/spf13/cobra"
)

func newAnchorCommand(app *cli) *cobra.Command {
	anchorCommand := &cobra.Command{
		Use:   "anchor",
		Short: "Manage the Hedera topic ledger events are anchored to",
	}

	createTopic := &cobra.Command{
		Use:   "create-topic",
		Short: "Create an event topic owned by the Hedera operator",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			operator, err := shared.OperatorConfigFromEnv()
			if err != nil {
				return err
			}
			submitter, err := anchor.NewHederaSubmitter(operator, "")
			if err != nil {
				return err
			}
			defer submitter.Close()

			memo, _ := command.Flags().GetString("memo")
			if memo == "" {
				memo = anchor.TopicMemo(deployments.ContractInterlockNetwork)
			}
			topicID, err := submitter.CreateTopic(command.Context(), memo)
			if err != nil {
				return err
			}
			app.logger.Info().Str("topic", topicID).Str("operator", submitter.OperatorAccountID()).Msg("created anchor topic")
			fmt.Fprintln(command.OutOrStdout(), topicID)
			return nil
		},
	}
	createTopic.Flags().String("memo", "", "topic memo (default ilock:events:<name>)")

	audit := &cobra.Command{
		Use:   "audit",
		Short: "Replay the anchor topic from the mirror node and compare it with the state file",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if app.config.AnchorTopic == "" {
				return fmt.Errorf("--anchor-topic is required")
			}
			state, err := deployments.ReadSnapshot(app.config.StatePath)
			if err != nil {
				return err
			}

			flags := command.Flags()
			hederaNetwork, _ := flags.GetString("hedera-network")
			mirrorURL, _ := flags.GetString("mirror-url")
			indexer, err := anchor.NewIndexer(anchor.IndexerConfig{
				Network:       hederaNetwork,
				MirrorBaseURL: mirrorURL,
				TopicID:       app.config.AnchorTopic,
				TokenName:     state.Name,
				Logger:        app.logger,
			})
			if err != nil {
				return err
			}
			if err := indexer.IndexOnce(command.Context()); err != nil {
				return err
			}

			out := command.OutOrStdout()
			if err := indexer.Audit(state); err != nil {
				var mismatch anchor.AuditMismatchError
				if errors.As(err, &mismatch) {
					for _, difference := range mismatch.Differences {
						fmt.Fprintln(out, difference)
					}
				}
				return err
			}
			fmt.Fprintf(out, "replay matches %s at event %d\n", app.config.StatePath, indexer.LastEventSequence())

			verified, err := indexer.VerifyCheckpoint(state)
			if err != nil {
				return err
			}
			if verified {
				fmt.Fprintln(out, "state hash matches the anchored checkpoint")
			}
			return nil
		},
	}
	audit.Flags().String("hedera-network", shared.NetworkTestnet, "Hedera network of the mirror node")
	audit.Flags().String("mirror-url", "", "mirror node base URL (default the network's public mirror)")

	checkpoint := &cobra.Command{
		Use:   "checkpoint",
		Short: "Anchor the state file's hash at its current event",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			state, err := deployments.ReadSnapshot(app.config.StatePath)
			if err != nil {
				return err
			}
			publisher, closePublisher, err := app.resumePublisher(state.Name)
			if err != nil {
				return err
			}
			defer closePublisher()
			if publisher == nil {
				return fmt.Errorf("--anchor-topic is required")
			}
			if err := publisher.Checkpoint(state); err != nil {
				return err
			}
			if err := app.savePending(publisher); err != nil {
				return err
			}
			if err := app.flush(command.Context(), publisher); err != nil {
				return err
			}
			stateHash, _ := anchor.StateHash(state)
			fmt.Fprintf(command.OutOrStdout(), "checkpoint %s at event %d\n", stateHash, state.EventSequence)
			return nil
		},
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Resend events a previous command could not anchor",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			state, err := deployments.ReadSnapshot(app.config.StatePath)
			if err != nil {
				return err
			}
			publisher, closePublisher, err := app.resumePublisher(state.Name)
			if err != nil {
				return err
			}
			defer closePublisher()
			if publisher == nil {
				return fmt.Errorf("--anchor-topic is required")
			}
			pending := publisher.Pending()
			if err := app.flush(command.Context(), publisher); err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), "anchored %d pending events\n", pending)
			return nil
		},
	}

	anchorCommand.AddCommand(createTopic, checkpoint, flush, audit)
	return anchorCommand
}

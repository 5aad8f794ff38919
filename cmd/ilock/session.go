package main

import (
	"context"
	"fmt"

	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
	"github.com/interlock-network/ilock-sdk-go/pkg/deployments"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
	"github.com/spf13/cobra"
)

// readToken restores the token from the state file for a read-only command.
func (app *cli) readToken() (*ilock.Token, error) {
	token, err := deployments.OpenToken(app.config.StatePath, ilock.WithClock(app.clock()), ilock.WithLogger(app.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s (run ilock deploy first): %w", app.config.StatePath, err)
	}
	return token, nil
}

// mutate restores the token, applies operation, saves the new state and
// anchors the operation's events when an anchor topic is configured.
// Messages a previous run failed to anchor go out first. A failed
// operation leaves the state file untouched.
func (app *cli) mutate(command *cobra.Command, operation func(token *ilock.Token) error) error {
	state, err := deployments.ReadSnapshot(app.config.StatePath)
	if err != nil {
		return fmt.Errorf("failed to open %s (run ilock deploy first): %w", app.config.StatePath, err)
	}

	options := []ilock.Option{ilock.WithClock(app.clock()), ilock.WithLogger(app.logger)}
	publisher, closePublisher, err := app.resumePublisher(state.Name)
	if err != nil {
		return err
	}
	defer closePublisher()
	if publisher != nil {
		options = append(options, ilock.WithEventSink(publisher))
	}

	token, err := ilock.Restore(state, options...)
	if err != nil {
		return err
	}
	if err := operation(token); err != nil {
		return err
	}
	if err := app.savePending(publisher); err != nil {
		return err
	}
	if err := deployments.WriteSnapshot(app.config.StatePath, token.Snapshot()); err != nil {
		return err
	}
	return app.flush(command.Context(), publisher)
}

func (app *cli) newPublisher(tokenName string) (*anchor.Publisher, func(), error) {
	if app.config.AnchorTopic == "" {
		return nil, func() {}, nil
	}

	submitter, closeSubmitter, err := app.openSubmitter(app.config.Network)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := anchor.NewPublisher(anchor.PublisherConfig{
		TopicID:   app.config.AnchorTopic,
		TokenName: tokenName,
		Submitter: submitter,
		Logger:    app.logger,
	})
	if err != nil {
		closeSubmitter()
		return nil, nil, err
	}
	return publisher, closeSubmitter, nil
}

// resumePublisher opens a publisher with the state file's unanchored
// messages already queued.
func (app *cli) resumePublisher(tokenName string) (*anchor.Publisher, func(), error) {
	publisher, closePublisher, err := app.newPublisher(tokenName)
	if err != nil || publisher == nil {
		return publisher, closePublisher, err
	}

	pending, err := deployments.ReadPending(app.pendingPath())
	if err == nil {
		err = publisher.Requeue(pending)
	}
	if err != nil {
		closePublisher()
		return nil, nil, err
	}
	if len(pending) > 0 {
		app.logger.Info().Int("events", len(pending)).Msg("resending unanchored events")
	}
	return publisher, closePublisher, nil
}

func openHederaSubmitter(network string) (anchor.Submitter, func(), error) {
	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("anchoring needs a Hedera operator: %w", err)
	}
	submitter, err := anchor.NewHederaSubmitter(operator, "ilock:"+network)
	if err != nil {
		return nil, nil, err
	}
	return submitter, func() { _ = submitter.Close() }, nil
}

func (app *cli) pendingPath() string {
	return deployments.PendingPath(app.config.StatePath)
}

// savePending records the queue so a crash or a failed flush cannot lose it.
func (app *cli) savePending(publisher *anchor.Publisher) error {
	if publisher == nil {
		return nil
	}
	return deployments.WritePending(app.pendingPath(), publisher.PendingMessages())
}

func (app *cli) flush(ctx context.Context, publisher *anchor.Publisher) error {
	if publisher == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	published, flushErr := publisher.Flush(ctx)
	if err := app.savePending(publisher); err != nil {
		return err
	}
	if flushErr != nil {
		return fmt.Errorf("state saved but %d events were not anchored (run ilock anchor flush to retry): %w", publisher.Pending(), flushErr)
	}
	app.logger.Info().Int("events", published).Str("topic", publisher.TopicID()).Msg("anchored events")
	return nil
}

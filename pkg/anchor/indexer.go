package anchor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/interlock-network/ilock-sdk-go/pkg/mirror"
	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
	"github.com/rs/zerolog"
)

type IndexerConfig struct {
	Network       string
	MirrorBaseURL string
	MirrorAPIKey  string
	HTTPClient    *http.Client
	TopicID       string
	TokenName     string
	Logger        zerolog.Logger
}

// ReplayState is the ledger as rebuilt from anchored events. Allowances are
// not tracked because transferFrom spends them without an event.
type ReplayState struct {
	Token             string
	EventSequence     uint64
	TopicSequence     int64
	TotalSupply       *uint256.Int
	Paused            bool
	Owner             common.Address
	CooldownDuration  uint64
	CooldownThreshold *uint256.Int
	Balances          map[common.Address]*uint256.Int
	Roles             map[ilock.Role]map[common.Address]struct{}
	LastEventAt       uint64
	LastConsensusAt   time.Time
}

func newReplayState(tokenName string) ReplayState {
	return ReplayState{
		Token:             tokenName,
		TotalSupply:       new(uint256.Int),
		CooldownThreshold: new(uint256.Int),
		Balances:          map[common.Address]*uint256.Int{},
		Roles:             map[ilock.Role]map[common.Address]struct{}{},
	}
}

// Indexer rebuilds a token's ledger from its event topic.
type Indexer struct {
	mirrorClient *mirror.Client
	topicID      string
	tokenName    string
	logger       zerolog.Logger

	mutex       sync.RWMutex
	state       ReplayState
	checkpoints map[uint64]string

	pollStopChannel chan struct{}
	pollDoneChannel chan struct{}
}

// NewIndexer creates a mirror-backed event indexer.
func NewIndexer(config IndexerConfig) (*Indexer, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	topicID := strings.TrimSpace(config.TopicID)
	if topicID == "" {
		return nil, fmt.Errorf("topic ID is required")
	}
	tokenName := strings.TrimSpace(config.TokenName)
	if tokenName == "" {
		tokenName = ilock.DefaultName
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network:    network,
		BaseURL:    config.MirrorBaseURL,
		APIKey:     config.MirrorAPIKey,
		HTTPClient: config.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &Indexer{
		mirrorClient: mirrorClient,
		topicID:      topicID,
		tokenName:    tokenName,
		logger:       config.Logger.With().Str("component", "indexer").Str("topic", topicID).Logger(),
		state:        newReplayState(tokenName),
		checkpoints:  map[uint64]string{},
	}, nil
}

// StateSnapshot returns a deep copy of the replayed state.
func (indexer *Indexer) StateSnapshot() ReplayState {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	snapshot := indexer.state
	snapshot.TotalSupply = indexer.state.TotalSupply.Clone()
	snapshot.CooldownThreshold = indexer.state.CooldownThreshold.Clone()
	snapshot.Balances = make(map[common.Address]*uint256.Int, len(indexer.state.Balances))
	for account, balance := range indexer.state.Balances {
		snapshot.Balances[account] = balance.Clone()
	}
	snapshot.Roles = make(map[ilock.Role]map[common.Address]struct{}, len(indexer.state.Roles))
	for role, members := range indexer.state.Roles {
		clone := make(map[common.Address]struct{}, len(members))
		for account := range members {
			clone[account] = struct{}{}
		}
		snapshot.Roles[role] = clone
	}
	return snapshot
}

func (indexer *Indexer) BalanceOf(account common.Address) *uint256.Int {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	if balance, ok := indexer.state.Balances[account]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

func (indexer *Indexer) TotalSupply() *uint256.Int {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	return indexer.state.TotalSupply.Clone()
}

func (indexer *Indexer) Paused() bool {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	return indexer.state.Paused
}

func (indexer *Indexer) HasRole(role ilock.Role, account common.Address) bool {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	_, ok := indexer.state.Roles[role][account]
	return ok
}

func (indexer *Indexer) LastEventSequence() uint64 {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	return indexer.state.EventSequence
}

// IndexOnce reads every topic message after the last one seen and applies
// the token's events. Messages that are not anchor messages for this token
// are skipped. A duplicate event sequence is ignored; a gap stops the run.
func (indexer *Indexer) IndexOnce(ctx context.Context) error {
	indexer.mutex.RLock()
	afterSequence := indexer.state.TopicSequence
	indexer.mutex.RUnlock()

	applied := 0
	err := indexer.mirrorClient.WalkTopicMessages(ctx, indexer.topicID, mirror.MessageQuery{AfterSequence: afterSequence}, func(item mirror.TopicMessage) error {
		ok, processErr := indexer.processMessage(item)
		if processErr != nil {
			return processErr
		}
		if ok {
			applied++
		}
		return nil
	})
	if applied > 0 {
		indexer.logger.Debug().Int("applied", applied).Uint64("sequence", indexer.LastEventSequence()).Msg("indexed events")
	}
	return err
}

func (indexer *Indexer) processMessage(item mirror.TopicMessage) (bool, error) {
	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	if item.SequenceNumber <= indexer.state.TopicSequence {
		return false, nil
	}

	message, err := decodeTopicMessage(item)
	if err != nil || message.Token != indexer.tokenName {
		if err != nil {
			indexer.logger.Debug().Err(err).Int64("topicSequence", item.SequenceNumber).Msg("skipping topic message")
		}
		indexer.state.TopicSequence = item.SequenceNumber
		return false, nil
	}

	if message.Kind == KindCheckpoint {
		indexer.checkpoints[message.Sequence] = message.StateHash
		indexer.state.TopicSequence = item.SequenceNumber
		return false, nil
	}
	if message.Sequence <= indexer.state.EventSequence {
		indexer.state.TopicSequence = item.SequenceNumber
		return false, nil
	}
	if message.Sequence != indexer.state.EventSequence+1 {
		return false, NewSequenceGapError(indexer.state.EventSequence+1, message.Sequence)
	}

	event, err := message.Event()
	if err != nil {
		return false, err
	}
	if err := applyEvent(&indexer.state, event); err != nil {
		return false, err
	}

	indexer.state.EventSequence = event.Sequence
	indexer.state.TopicSequence = item.SequenceNumber
	indexer.state.LastEventAt = event.Timestamp
	if consensusAt, parseErr := mirror.ParseConsensusTimestamp(item.ConsensusTimestamp); parseErr == nil {
		indexer.state.LastConsensusAt = consensusAt
	}
	return true, nil
}

func decodeTopicMessage(item mirror.TopicMessage) (Message, error) {
	payload, err := mirror.DecodeMessageData(item)
	if err != nil {
		return Message{}, err
	}
	return ParseMessageBytes(payload)
}

func applyEvent(state *ReplayState, event ilock.Event) error {
	zero := common.Address{}
	switch event.Kind {
	case ilock.EventTransfer:
		if event.From == zero {
			supply, overflow := new(uint256.Int).AddOverflow(state.TotalSupply, event.Amount)
			if overflow {
				return NewReplayError(event.Sequence, "total supply overflows")
			}
			state.TotalSupply = supply
		} else {
			balance := replayBalance(state, event.From)
			if balance.Lt(event.Amount) {
				return NewReplayError(event.Sequence, "%s spends %s with balance %s", event.From.Hex(), event.Amount.Dec(), balance.Dec())
			}
			state.Balances[event.From] = new(uint256.Int).Sub(balance, event.Amount)
		}
		if event.To == zero {
			if state.TotalSupply.Lt(event.Amount) {
				return NewReplayError(event.Sequence, "burn of %s exceeds total supply %s", event.Amount.Dec(), state.TotalSupply.Dec())
			}
			state.TotalSupply = new(uint256.Int).Sub(state.TotalSupply, event.Amount)
		} else {
			state.Balances[event.To] = new(uint256.Int).Add(replayBalance(state, event.To), event.Amount)
		}
	case ilock.EventApproval:
	case ilock.EventPaused:
		state.Paused = true
	case ilock.EventUnpaused:
		state.Paused = false
	case ilock.EventRoleGranted:
		members, ok := state.Roles[event.Role]
		if !ok {
			members = map[common.Address]struct{}{}
			state.Roles[event.Role] = members
		}
		members[event.Account] = struct{}{}
	case ilock.EventRoleRevoked:
		delete(state.Roles[event.Role], event.Account)
		if len(state.Roles[event.Role]) == 0 {
			delete(state.Roles, event.Role)
		}
	case ilock.EventOwnershipTransferred:
		state.Owner = event.NewOwner
	case ilock.EventCooldownConfigured:
		state.CooldownDuration = event.Duration
		state.CooldownThreshold = event.Threshold.Clone()
	default:
		return NewReplayError(event.Sequence, "unsupported event %q", event.Kind)
	}
	return nil
}

func replayBalance(state *ReplayState, account common.Address) *uint256.Int {
	if balance, ok := state.Balances[account]; ok {
		return balance
	}
	return new(uint256.Int)
}

// Audit compares the replay with a token snapshot and reports every
// difference in supply, pause state, owner, cooldown, roles and balances.
func (indexer *Indexer) Audit(snapshot ilock.State) error {
	replay := indexer.StateSnapshot()
	differences := make([]string, 0)
	differ := func(format string, arguments ...any) {
		differences = append(differences, fmt.Sprintf(format, arguments...))
	}

	if replay.EventSequence != snapshot.EventSequence {
		differ("event sequence: replay %d, snapshot %d", replay.EventSequence, snapshot.EventSequence)
	}
	if replay.TotalSupply.Dec() != snapshot.TotalSupply {
		differ("total supply: replay %s, snapshot %s", replay.TotalSupply.Dec(), snapshot.TotalSupply)
	}
	if replay.Paused != snapshot.Paused {
		differ("paused: replay %t, snapshot %t", replay.Paused, snapshot.Paused)
	}
	if replay.Owner != snapshot.Owner {
		differ("owner: replay %s, snapshot %s", replay.Owner.Hex(), snapshot.Owner.Hex())
	}
	if replay.CooldownDuration != snapshot.CooldownDuration {
		differ("cooldown duration: replay %d, snapshot %d", replay.CooldownDuration, snapshot.CooldownDuration)
	}
	if replay.CooldownThreshold.Dec() != snapshot.CooldownThreshold {
		differ("cooldown threshold: replay %s, snapshot %s", replay.CooldownThreshold.Dec(), snapshot.CooldownThreshold)
	}

	snapshotGrants := make([]string, 0, len(snapshot.Roles))
	for _, grant := range snapshot.Roles {
		snapshotGrants = append(snapshotGrants, grant.Role+"/"+grant.Account.Hex())
	}
	replayGrants := make([]string, 0)
	for role, members := range replay.Roles {
		for account := range members {
			replayGrants = append(replayGrants, role.Hex()+"/"+account.Hex())
		}
	}
	slices.Sort(snapshotGrants)
	slices.Sort(replayGrants)
	if !slices.Equal(snapshotGrants, replayGrants) {
		differ("roles: replay %v, snapshot %v", replayGrants, snapshotGrants)
	}

	seen := map[common.Address]struct{}{}
	for _, account := range snapshot.Accounts {
		seen[account.Address] = struct{}{}
		replayed := "0"
		if balance, ok := replay.Balances[account.Address]; ok {
			replayed = balance.Dec()
		}
		if replayed != account.Balance {
			differ("balance of %s: replay %s, snapshot %s", account.Address.Hex(), replayed, account.Balance)
		}
	}
	for account, balance := range replay.Balances {
		if _, ok := seen[account]; !ok && !balance.IsZero() {
			differ("balance of %s: replay %s, snapshot 0", account.Hex(), balance.Dec())
		}
	}

	if len(differences) > 0 {
		slices.Sort(differences)
		return NewAuditMismatchError(differences)
	}
	return nil
}

// StartPolling runs IndexOnce every interval until ctx is done or
// StopPolling is called. Errors are logged and retried on the next tick.
func (indexer *Indexer) StartPolling(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	indexer.mutex.Lock()
	if indexer.pollStopChannel != nil {
		indexer.mutex.Unlock()
		return fmt.Errorf("polling already started")
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	indexer.pollStopChannel = stop
	indexer.pollDoneChannel = done
	indexer.mutex.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := indexer.IndexOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				indexer.logger.Warn().Err(err).Msg("index run failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// StopPolling stops the polling loop and waits for it to exit.
func (indexer *Indexer) StopPolling() {
	indexer.mutex.Lock()
	stop := indexer.pollStopChannel
	done := indexer.pollDoneChannel
	indexer.pollStopChannel = nil
	indexer.pollDoneChannel = nil
	indexer.mutex.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

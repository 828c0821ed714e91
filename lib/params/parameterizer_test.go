package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/keypair"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

func newTestParameterizer(t *testing.T) (*Parameterizer, *poll.Engine, *common.ManualClock, func()) {
	st := storage.NewTestStorage()
	require.NoError(t, Init(st, nil))

	clock := common.NewManualClock(time.Unix(1500000000, 0))
	return NewParameterizer(st, clock), poll.NewEngine(st, clock), clock, func() { st.Close() }
}

func fundedAccount(t *testing.T, st *storage.LevelDBBackend, balance common.Amount) string {
	kp := keypair.Random()
	_, err := token.CreateAccount(st, kp.Address(), balance)
	require.NoError(t, err)
	return kp.Address()
}

func TestParamDefaultsAndValidation(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()
	require.NoError(t, Init(st, nil))

	value, err := Get(st, MinDeposit)
	require.NoError(t, err)
	require.Equal(t, DefaultParams[MinDeposit], value)

	_, err = Get(st, "noSuchThing")
	require.Equal(t, errors.NoSuchParameter, err)

	require.Equal(t, errors.InvalidParameterValue, Validate(DispensationPct, 101))
	require.Equal(t, errors.InvalidParameterValue, Validate(MinDeposit, 0))
	require.NoError(t, Validate(VoteQuorum, 0))
	require.Equal(t, errors.NoSuchParameter, Validate("noSuchThing", 1))

	all, err := GetAll(st)
	require.NoError(t, err)
	require.Len(t, all, len(DefaultParams))
}

func TestParamInitOverrides(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	require.NoError(t, Init(st, map[string]uint64{MinDeposit: 777}))

	value, err := Get(st, MinDeposit)
	require.NoError(t, err)
	require.Equal(t, uint64(777), value)

	err = Init(st, map[string]uint64{MinDeposit: 0})
	require.Equal(t, errors.InvalidParameterValue, err)
}

func TestProposeUnchallenged(t *testing.T) {
	pz, _, clock, cleanup := newTestParameterizer(t)
	defer cleanup()

	proposer := fundedAccount(t, pz.Storage(), 1000)

	proposal, err := pz.Propose(proposer, MinDeposit, 200)
	require.NoError(t, err)
	require.Equal(t, common.Amount(500), proposal.Deposit)

	balance, _ := token.BalanceOf(pz.Storage(), proposer)
	require.Equal(t, common.Amount(500), balance)

	// the same change cannot be proposed twice
	other := fundedAccount(t, pz.Storage(), 1000)
	_, err = pz.Propose(other, MinDeposit, 200)
	require.Equal(t, errors.ProposalAlreadyExists, err)

	// proposing the current value is pointless
	_, err = pz.Propose(other, MinDeposit, DefaultParams[MinDeposit])
	require.Equal(t, errors.InvalidParameterValue, err)

	// too early to process
	err = pz.ProcessProposal(proposal.ID)
	require.Equal(t, errors.InvalidPhase, err)

	applyStage, _ := GetDuration(pz.Storage(), PApplyStageLength)
	clock.Advance(applyStage + time.Second)

	require.NoError(t, pz.ProcessProposal(proposal.ID))

	value, _ := Get(pz.Storage(), MinDeposit)
	require.Equal(t, uint64(200), value)

	balance, _ = token.BalanceOf(pz.Storage(), proposer)
	require.Equal(t, common.Amount(1000), balance)

	_, err = pz.Proposal(proposal.ID)
	require.Equal(t, errors.NoSuchProposal, err)
}

func TestProposeInvalidValue(t *testing.T) {
	pz, _, _, cleanup := newTestParameterizer(t)
	defer cleanup()

	proposer := fundedAccount(t, pz.Storage(), 1000)

	_, err := pz.Propose(proposer, DispensationPct, 150)
	require.Equal(t, errors.InvalidParameterValue, err)

	_, err = pz.Propose(proposer, "noSuchThing", 1)
	require.Equal(t, errors.NoSuchParameter, err)
}

func TestProposalChallengeProposalWins(t *testing.T) {
	pz, engine, clock, cleanup := newTestParameterizer(t)
	defer cleanup()

	st := pz.Storage()
	proposer := fundedAccount(t, st, 1000)
	challenger := fundedAccount(t, st, 1000)
	voter := fundedAccount(t, st, 1000)

	proposal, err := pz.Propose(proposer, MinDeposit, 200)
	require.NoError(t, err)

	challenge, err := pz.ChallengeProposal(challenger, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, common.Amount(500), challenge.Stake)

	_, err = pz.ChallengeProposal(challenger, proposal.ID)
	require.Equal(t, errors.ChallengeInProgress, err)

	_, err = engine.RequestVotingRights(voter, 800)
	require.NoError(t, err)
	require.NoError(t, engine.CommitVote(voter, challenge.ID, poll.CommitHash(poll.VoteFor, 42), 800, 0))

	commitStage, _ := GetDuration(st, PCommitStageLength)
	clock.Advance(commitStage + time.Second)
	require.NoError(t, engine.RevealVote(voter, challenge.ID, poll.VoteFor, 42))

	revealStage, _ := GetDuration(st, PRevealStageLength)
	clock.Advance(revealStage + time.Second)

	require.NoError(t, pz.ProcessProposal(proposal.ID))

	value, _ := Get(st, MinDeposit)
	require.Equal(t, uint64(200), value)

	// the proposer took their stake back plus the winner's cut
	balance, _ := token.BalanceOf(st, proposer)
	require.Equal(t, common.Amount(1250), balance)

	resolved, err := pz.Challenge(challenge.ID)
	require.NoError(t, err)
	require.True(t, resolved.Resolved)
	require.True(t, resolved.ProposalWon)
	require.Equal(t, common.Amount(250), resolved.RewardPool)

	// the winning voter settles against the pool
	preview, err := pz.VoterReward(voter, challenge.ID, 42)
	require.NoError(t, err)
	reward, err := pz.ClaimReward(voter, challenge.ID, 42)
	require.NoError(t, err)
	require.Equal(t, preview, reward)
	require.Equal(t, common.Amount(250), reward)

	_, err = pz.ClaimReward(voter, challenge.ID, 42)
	require.Equal(t, errors.AlreadyClaimed, err)
}

func TestProposalChallengeChallengerWins(t *testing.T) {
	pz, engine, clock, cleanup := newTestParameterizer(t)
	defer cleanup()

	st := pz.Storage()
	proposer := fundedAccount(t, st, 1000)
	challenger := fundedAccount(t, st, 1000)
	voter := fundedAccount(t, st, 1000)

	proposal, err := pz.Propose(proposer, VoteQuorum, 70)
	require.NoError(t, err)

	challenge, err := pz.ChallengeProposal(challenger, proposal.ID)
	require.NoError(t, err)

	_, err = engine.RequestVotingRights(voter, 800)
	require.NoError(t, err)
	require.NoError(t, engine.CommitVote(voter, challenge.ID, poll.CommitHash(poll.VoteAgainst, 42), 800, 0))

	commitStage, _ := GetDuration(st, PCommitStageLength)
	clock.Advance(commitStage + time.Second)
	require.NoError(t, engine.RevealVote(voter, challenge.ID, poll.VoteAgainst, 42))

	revealStage, _ := GetDuration(st, PRevealStageLength)
	clock.Advance(revealStage + time.Second)

	require.NoError(t, pz.ProcessProposal(proposal.ID))

	// the parameter is untouched
	value, _ := Get(st, VoteQuorum)
	require.Equal(t, DefaultParams[VoteQuorum], value)

	balance, _ := token.BalanceOf(st, challenger)
	require.Equal(t, common.Amount(1250), balance)

	// the proposal is consumed either way
	err = pz.ProcessProposal(proposal.ID)
	require.Equal(t, errors.NoSuchProposal, err)
}

func TestProposalChallengeNobodyVotes(t *testing.T) {
	pz, _, clock, cleanup := newTestParameterizer(t)
	defer cleanup()

	st := pz.Storage()
	proposer := fundedAccount(t, st, 1000)
	challenger := fundedAccount(t, st, 1000)

	proposal, err := pz.Propose(proposer, MinDeposit, 200)
	require.NoError(t, err)
	challenge, err := pz.ChallengeProposal(challenger, proposal.ID)
	require.NoError(t, err)

	commitStage, _ := GetDuration(st, PCommitStageLength)
	revealStage, _ := GetDuration(st, PRevealStageLength)
	clock.Advance(commitStage + revealStage + time.Second)

	require.NoError(t, pz.ProcessProposal(proposal.ID))

	// the challenger takes the whole pot
	balance, _ := token.BalanceOf(st, challenger)
	require.Equal(t, common.Amount(1500), balance)

	resolved, _ := pz.Challenge(challenge.ID)
	require.Equal(t, common.Amount(0), resolved.RewardPool)
}

func TestParameterizerPredicates(t *testing.T) {
	pz, _, clock, cleanup := newTestParameterizer(t)
	defer cleanup()

	proposer := fundedAccount(t, pz.Storage(), 1000)
	challenger := fundedAccount(t, pz.Storage(), 1000)

	exists, err := pz.PropExists(MakeProposalID(MinDeposit, 300))
	require.NoError(t, err)
	require.False(t, exists)

	proposal, err := pz.Propose(proposer, MinDeposit, 300)
	require.NoError(t, err)

	exists, err = pz.PropExists(proposal.ID)
	require.NoError(t, err)
	require.True(t, exists)

	canBeSet, err := pz.CanBeSet(proposal.ID)
	require.NoError(t, err)
	require.False(t, canBeSet)

	_, err = pz.ChallengeProposal(challenger, proposal.ID)
	require.NoError(t, err)

	// a challenged proposal never becomes settable directly
	canBeSet, err = pz.CanBeSet(proposal.ID)
	require.NoError(t, err)
	require.False(t, canBeSet)

	resolvable, err := pz.ChallengeCanBeResolved(proposal.ID)
	require.NoError(t, err)
	require.False(t, resolvable)

	commitStage, err := GetDuration(pz.Storage(), PCommitStageLength)
	require.NoError(t, err)
	revealStage, err := GetDuration(pz.Storage(), PRevealStageLength)
	require.NoError(t, err)
	clock.Advance(commitStage + revealStage + time.Second)

	resolvable, err = pz.ChallengeCanBeResolved(proposal.ID)
	require.NoError(t, err)
	require.True(t, resolvable)

	require.NoError(t, pz.ProcessProposal(proposal.ID))

	exists, err = pz.PropExists(proposal.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

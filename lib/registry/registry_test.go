package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/keypair"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

type testFixture struct {
	st       *storage.LevelDBBackend
	clock    *common.ManualClock
	registry *Registry
	engine   *poll.Engine
}

func newTestFixture(t *testing.T) (*testFixture, func()) {
	st := storage.NewTestStorage()
	require.NoError(t, params.Init(st, nil))

	clock := common.NewManualClock(time.Unix(1500000000, 0))
	return &testFixture{
		st:       st,
		clock:    clock,
		registry: NewRegistry(st, clock),
		engine:   poll.NewEngine(st, clock),
	}, func() { st.Close() }
}

func (f *testFixture) fundedAccount(t *testing.T, balance common.Amount) string {
	kp := keypair.Random()
	_, err := token.CreateAccount(f.st, kp.Address(), balance)
	require.NoError(t, err)
	return kp.Address()
}

func (f *testFixture) advancePastApplyStage(t *testing.T) {
	applyStage, err := params.GetDuration(f.st, params.ApplyStageLength)
	require.NoError(t, err)
	f.clock.Advance(applyStage + time.Second)
}

func (f *testFixture) advancePastPoll(t *testing.T) {
	commitStage, err := params.GetDuration(f.st, params.CommitStageLength)
	require.NoError(t, err)
	revealStage, err := params.GetDuration(f.st, params.RevealStageLength)
	require.NoError(t, err)
	f.clock.Advance(commitStage + revealStage + time.Second)
}

func (f *testFixture) advancePastCommitStage(t *testing.T) {
	commitStage, err := params.GetDuration(f.st, params.CommitStageLength)
	require.NoError(t, err)
	f.clock.Advance(commitStage + time.Second)
}

func TestApplyAndWhitelist(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 200)
	require.NoError(t, err)
	require.Equal(t, StateApplied, listing.State())
	require.Equal(t, common.Amount(200), listing.Deposit)

	balance, _ := token.BalanceOf(f.st, owner)
	require.Equal(t, common.Amount(800), balance)

	// same content cannot be listed twice
	_, err = f.registry.Apply(owner, "example.org", 200)
	require.Equal(t, errors.ListingAlreadyExists, err)

	listed, err := f.registry.AppWasMade("example.org")
	require.NoError(t, err)
	require.True(t, listed)

	whitelisted, err := f.registry.IsWhitelisted("example.org")
	require.NoError(t, err)
	require.False(t, whitelisted)

	// the application stage has not passed yet
	ok, err := f.registry.CanBeWhitelisted(listing.ID)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, f.registry.UpdateStatus(listing.ID))
	whitelisted, _ = f.registry.IsWhitelisted("example.org")
	require.False(t, whitelisted)

	f.advancePastApplyStage(t)

	ok, err = f.registry.CanBeWhitelisted(listing.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.registry.UpdateStatus(listing.ID))
	whitelisted, _ = f.registry.IsWhitelisted("example.org")
	require.True(t, whitelisted)

	// a second update is a no-op
	require.NoError(t, f.registry.UpdateStatus(listing.ID))
}

func TestApplyDepositTooLow(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)

	_, err := f.registry.Apply(owner, "example.org", 50)
	require.Equal(t, errors.DepositTooLow, err)
}

func TestDepositAndWithdraw(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	other := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 200)
	require.NoError(t, err)

	_, err = f.registry.Deposit(other, listing.ID, 100)
	require.Equal(t, errors.NotListingOwner, err)

	listing, err = f.registry.Deposit(owner, listing.ID, 100)
	require.NoError(t, err)
	require.Equal(t, common.Amount(300), listing.Deposit)

	// the remainder must stay at the minimum deposit
	_, err = f.registry.Withdraw(owner, listing.ID, 250)
	require.Equal(t, errors.DepositTooLow, err)

	listing, err = f.registry.Withdraw(owner, listing.ID, 200)
	require.NoError(t, err)
	require.Equal(t, common.Amount(100), listing.Deposit)

	balance, _ := token.BalanceOf(f.st, owner)
	require.Equal(t, common.Amount(900), balance)
}

func TestExit(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 200)
	require.NoError(t, err)

	// applications cannot exit, only whitelisted listings
	err = f.registry.Exit(owner, listing.ID)
	require.Equal(t, errors.InvalidPhase, err)

	f.advancePastApplyStage(t)
	require.NoError(t, f.registry.UpdateStatus(listing.ID))

	require.NoError(t, f.registry.Exit(owner, listing.ID))

	balance, _ := token.BalanceOf(f.st, owner)
	require.Equal(t, common.Amount(1000), balance)

	listed, _ := f.registry.AppWasMade("example.org")
	require.False(t, listed)
}

func TestTouchAndRemove(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 100)
	require.NoError(t, err)

	// the minimum deposit rises above the listing's stake
	require.NoError(t, params.Set(f.st, params.MinDeposit, 300))

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)
	require.Nil(t, challenge)

	// the listing is gone, the owner refunded, the challenger untouched
	listed, _ := f.registry.AppWasMade("example.org")
	require.False(t, listed)

	ownerBalance, _ := token.BalanceOf(f.st, owner)
	require.Equal(t, common.Amount(1000), ownerBalance)
	challengerBalance, _ := token.BalanceOf(f.st, challenger)
	require.Equal(t, common.Amount(1000), challengerBalance)
}

func TestChallengeListingWins(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	voter := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 200)
	require.NoError(t, err)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, challenge)
	require.Equal(t, common.Amount(100), challenge.Stake)

	listing, _ = f.registry.Listing(listing.ID)
	require.Equal(t, StateChallenged, listing.State())

	// no second challenge while one is open
	_, err = f.registry.StartChallenge(challenger, listing.ID)
	require.Equal(t, errors.ChallengeInProgress, err)

	// and no withdrawal either
	_, err = f.registry.Withdraw(owner, listing.ID, 50)
	require.Equal(t, errors.ChallengeInProgress, err)

	_, err = f.engine.RequestVotingRights(voter, 500)
	require.NoError(t, err)
	require.NoError(t, f.engine.CommitVote(voter, challenge.ID, poll.CommitHash(poll.VoteFor, 420), 500, 0))

	f.advancePastCommitStage(t)
	require.NoError(t, f.engine.RevealVote(voter, challenge.ID, poll.VoteFor, 420))

	// the poll is still open
	require.Error(t, f.registry.UpdateStatus(listing.ID))

	revealStage, _ := params.GetDuration(f.st, params.RevealStageLength)
	f.clock.Advance(revealStage + time.Second)

	require.NoError(t, f.registry.UpdateStatus(listing.ID))

	// surviving the challenge whitelists the application and pays the
	// winner's cut of the challenger's stake into the deposit
	listing, _ = f.registry.Listing(listing.ID)
	require.Equal(t, StateWhitelisted, listing.State())
	require.Equal(t, common.Amount(250), listing.Deposit)

	challenge, _ = f.registry.Challenge(challenge.ID)
	require.True(t, challenge.Resolved)
	require.True(t, challenge.ListingWon)
	require.Equal(t, common.Amount(50), challenge.RewardPool)
	require.Equal(t, common.Amount(500), challenge.TotalWinning)

	_, err = f.registry.ResolveChallenge(challenge.ID)
	require.Equal(t, errors.AlreadyResolved, err)
}

func TestChallengeChallengerWins(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	voter := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 200)
	require.NoError(t, err)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)

	_, err = f.engine.RequestVotingRights(voter, 500)
	require.NoError(t, err)
	require.NoError(t, f.engine.CommitVote(voter, challenge.ID, poll.CommitHash(poll.VoteAgainst, 420), 500, 0))

	f.advancePastCommitStage(t)
	require.NoError(t, f.engine.RevealVote(voter, challenge.ID, poll.VoteAgainst, 420))

	revealStage, _ := params.GetDuration(f.st, params.RevealStageLength)
	f.clock.Advance(revealStage + time.Second)

	resolved, err := f.registry.ResolveChallenge(challenge.ID)
	require.NoError(t, err)
	require.False(t, resolved.ListingWon)

	// the listing is gone; the challenger holds their stake plus the cut,
	// the owner gets back what exceeded the matched stake
	listed, _ := f.registry.AppWasMade("example.org")
	require.False(t, listed)

	challengerBalance, _ := token.BalanceOf(f.st, challenger)
	require.Equal(t, common.Amount(1050), challengerBalance)
	ownerBalance, _ := token.BalanceOf(f.st, owner)
	require.Equal(t, common.Amount(900), ownerBalance)
}

func TestChallengeTieGoesToChallenger(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	alice := f.fundedAccount(t, 1000)
	bob := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 100)
	require.NoError(t, err)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)

	_, err = f.engine.RequestVotingRights(alice, 500)
	require.NoError(t, err)
	_, err = f.engine.RequestVotingRights(bob, 500)
	require.NoError(t, err)
	require.NoError(t, f.engine.CommitVote(alice, challenge.ID, poll.CommitHash(poll.VoteFor, 1), 500, 0))
	require.NoError(t, f.engine.CommitVote(bob, challenge.ID, poll.CommitHash(poll.VoteAgainst, 2), 500, 0))

	f.advancePastCommitStage(t)
	require.NoError(t, f.engine.RevealVote(alice, challenge.ID, poll.VoteFor, 1))
	require.NoError(t, f.engine.RevealVote(bob, challenge.ID, poll.VoteAgainst, 2))

	revealStage, _ := params.GetDuration(f.st, params.RevealStageLength)
	f.clock.Advance(revealStage + time.Second)

	resolved, err := f.registry.ResolveChallenge(challenge.ID)
	require.NoError(t, err)
	require.False(t, resolved.ListingWon)
}

func TestChallengeNobodyReveals(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 100)
	require.NoError(t, err)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)

	f.advancePastPoll(t)

	resolved, err := f.registry.ResolveChallenge(challenge.ID)
	require.NoError(t, err)
	require.False(t, resolved.ListingWon)
	require.Equal(t, common.Amount(0), resolved.RewardPool)

	// the whole pot went to the challenger
	challengerBalance, _ := token.BalanceOf(f.st, challenger)
	require.Equal(t, common.Amount(1100), challengerBalance)
}

// Full lifecycle: a listing for claimthis.net is challenged, two voters side
// with the challenger, the listing falls and both voters settle their claims
// against the same sealed epoch total.
func TestChallengeRewardLifecycle(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	alice := f.fundedAccount(t, 1000)
	bob := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "claimthis.net", 100)
	require.NoError(t, err)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)

	_, err = f.engine.RequestVotingRights(alice, 500)
	require.NoError(t, err)
	_, err = f.engine.RequestVotingRights(bob, 600)
	require.NoError(t, err)

	require.NoError(t, f.engine.CommitVote(alice, challenge.ID, poll.CommitHash(poll.VoteAgainst, 420), 500, 0))
	require.NoError(t, f.engine.CommitVote(bob, challenge.ID, poll.CommitHash(poll.VoteAgainst, 9000), 600, 0))

	f.advancePastCommitStage(t)
	require.NoError(t, f.engine.RevealVote(alice, challenge.ID, poll.VoteAgainst, 420))
	require.NoError(t, f.engine.RevealVote(bob, challenge.ID, poll.VoteAgainst, 9000))

	// claims before resolution are out of phase
	_, err = f.registry.ClaimReward(alice, challenge.ID, 420)
	require.Equal(t, errors.InvalidPhase, err)

	revealStage, _ := params.GetDuration(f.st, params.RevealStageLength)
	f.clock.Advance(revealStage + time.Second)
	require.NoError(t, f.registry.UpdateStatus(listing.ID))

	resolved, _ := f.registry.Challenge(challenge.ID)
	require.Equal(t, common.Amount(1100), resolved.TotalWinning)
	require.Equal(t, common.Amount(50), resolved.RewardPool)

	// a claim against a challenge that never existed
	_, err = f.registry.ClaimReward(alice, 666, 420)
	require.Equal(t, errors.NoSuchChallenge, err)

	// a claim with the wrong salt settles nothing
	_, err = f.registry.ClaimReward(alice, challenge.ID, 421)
	require.Equal(t, errors.SaltMismatch, err)

	// preview and claim agree
	preview, err := f.registry.VoterReward(alice, challenge.ID, 420)
	require.NoError(t, err)
	reward, err := f.registry.ClaimReward(alice, challenge.ID, 420)
	require.NoError(t, err)
	require.Equal(t, preview, reward)
	require.Equal(t, common.Amount(50*500/1100), reward)

	_, err = f.registry.ClaimReward(alice, challenge.ID, 420)
	require.Equal(t, errors.AlreadyClaimed, err)

	rewardBob, err := f.registry.ClaimReward(bob, challenge.ID, 9000)
	require.NoError(t, err)
	require.Equal(t, common.Amount(50*600/1100), rewardBob)

	require.True(t, reward+rewardBob <= resolved.RewardPool)

	aliceBalance, _ := token.BalanceOf(f.st, alice)
	require.Equal(t, common.Amount(500).MustAdd(reward), aliceBalance)
}

func TestClaimRewardLosingSide(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	alice := f.fundedAccount(t, 1000)
	bob := f.fundedAccount(t, 1000)

	listing, err := f.registry.Apply(owner, "example.org", 100)
	require.NoError(t, err)
	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)

	_, err = f.engine.RequestVotingRights(alice, 500)
	require.NoError(t, err)
	_, err = f.engine.RequestVotingRights(bob, 600)
	require.NoError(t, err)
	require.NoError(t, f.engine.CommitVote(alice, challenge.ID, poll.CommitHash(poll.VoteFor, 1), 500, 0))
	require.NoError(t, f.engine.CommitVote(bob, challenge.ID, poll.CommitHash(poll.VoteAgainst, 2), 600, 0))

	f.advancePastCommitStage(t)
	require.NoError(t, f.engine.RevealVote(alice, challenge.ID, poll.VoteFor, 1))
	require.NoError(t, f.engine.RevealVote(bob, challenge.ID, poll.VoteAgainst, 2))

	revealStage, _ := params.GetDuration(f.st, params.RevealStageLength)
	f.clock.Advance(revealStage + time.Second)
	require.NoError(t, f.registry.UpdateStatus(listing.ID))

	// alice voted for the losing side
	_, err = f.registry.ClaimReward(alice, challenge.ID, 1)
	require.Equal(t, errors.NotWinningVote, err)

	// a voter who never revealed has nothing to claim
	carol := f.fundedAccount(t, 1000)
	_, err = f.registry.ClaimReward(carol, challenge.ID, 3)
	require.Equal(t, errors.DidNotReveal, err)
}

func TestRegistryPredicates(t *testing.T) {
	f, cleanup := newTestFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)

	made, err := f.registry.AppWasMade("example.org")
	require.NoError(t, err)
	require.False(t, made)

	listing, err := f.registry.Apply(owner, "example.org", 100)
	require.NoError(t, err)

	made, err = f.registry.AppWasMade("example.org")
	require.NoError(t, err)
	require.True(t, made)

	canBe, err := f.registry.CanBeWhitelisted(listing.ID)
	require.NoError(t, err)
	require.False(t, canBe)

	exists, err := f.registry.ChallengeExists(listing.ID)
	require.NoError(t, err)
	require.False(t, exists)

	challenge, err := f.registry.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, challenge)

	exists, err = f.registry.ChallengeExists(listing.ID)
	require.NoError(t, err)
	require.True(t, exists)

	resolvable, err := f.registry.ChallengeCanBeResolved(listing.ID)
	require.NoError(t, err)
	require.False(t, resolvable)

	_, err = f.registry.DetermineReward(challenge.ID)
	require.Equal(t, errors.InvalidPhase, err)

	f.advancePastPoll(t)

	resolvable, err = f.registry.ChallengeCanBeResolved(listing.ID)
	require.NoError(t, err)
	require.True(t, resolvable)

	// nobody revealed, so the winner takes the whole pot
	reward, err := f.registry.DetermineReward(challenge.ID)
	require.NoError(t, err)
	require.Equal(t, common.Amount(200), reward)

	_, err = f.registry.ResolveChallenge(challenge.ID)
	require.NoError(t, err)

	reward, err = f.registry.DetermineReward(challenge.ID)
	require.NoError(t, err)
	require.Equal(t, common.Amount(200), reward)

	exists, err = f.registry.ChallengeExists(listing.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

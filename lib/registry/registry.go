package registry

import (
	logging "github.com/inconshreveable/log15"

	"github.com/curatenet/tcr/lib/bank"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/observer"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/metrics"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

var log logging.Logger = logging.New("module", "registry")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// Registry is the token-curated list itself: owners stake deposits to apply,
// anyone can challenge a listing by matching the stake, and challenges are
// decided by commit-reveal polls. Every mutating operation runs in a single
// storage transaction; observer events only fire after it commits.
type Registry struct {
	st    *storage.LevelDBBackend
	clock common.Clock
}

func NewRegistry(st *storage.LevelDBBackend, clock common.Clock) *Registry {
	return &Registry{st: st, clock: clock}
}

func (r *Registry) Storage() *storage.LevelDBBackend {
	return r.st
}

func (r *Registry) Listing(id string) (*Listing, error) {
	return GetListing(r.st, id)
}

func (r *Registry) Challenge(id uint64) (*Challenge, error) {
	return GetChallenge(r.st, id)
}

// AppWasMade reports whether any application or listing exists for the data.
func (r *Registry) AppWasMade(data string) (bool, error) {
	return ExistsListing(r.st, MakeListingID(data))
}

// IsWhitelisted reports whether the data sits on the whitelist right now. A
// whitelisted listing under challenge still counts until the challenge
// resolves against it.
func (r *Registry) IsWhitelisted(data string) (bool, error) {
	l, err := GetListing(r.st, MakeListingID(data))
	if err != nil {
		if err == errors.NoSuchListing {
			return false, nil
		}
		return false, err
	}

	return l.Whitelisted, nil
}

// CanBeWhitelisted reports whether UpdateStatus would whitelist the listing
// right now.
func (r *Registry) CanBeWhitelisted(id string) (bool, error) {
	l, err := GetListing(r.st, id)
	if err != nil {
		if err == errors.NoSuchListing {
			return false, nil
		}
		return false, err
	}

	return !l.Whitelisted && l.ChallengeID == 0 && r.clock.Now().Unix() >= l.ApplicationExpiry, nil
}

// ChallengeExists reports whether the listing has an unresolved challenge.
func (r *Registry) ChallengeExists(id string) (bool, error) {
	l, err := GetListing(r.st, id)
	if err != nil {
		if err == errors.NoSuchListing {
			return false, nil
		}
		return false, err
	}
	if l.ChallengeID == 0 {
		return false, nil
	}

	c, err := GetChallenge(r.st, l.ChallengeID)
	if err != nil {
		return false, err
	}
	return !c.Resolved, nil
}

// ChallengeCanBeResolved reports whether the listing's open challenge has a
// finished poll.
func (r *Registry) ChallengeCanBeResolved(id string) (bool, error) {
	open, err := r.ChallengeExists(id)
	if err != nil || !open {
		return false, err
	}

	l, err := GetListing(r.st, id)
	if err != nil {
		return false, err
	}
	p, err := poll.GetPoll(r.st, l.ChallengeID)
	if err != nil {
		return false, err
	}
	return p.Ended(r.clock.Now()), nil
}

// DetermineReward returns what the winner of the challenge takes home once
// it resolves: their stake plus the dispensation cut, or the whole pot when
// nobody revealed on the winning side. InvalidPhase until the poll ends.
func (r *Registry) DetermineReward(challengeID uint64) (common.Amount, error) {
	challenge, err := GetChallenge(r.st, challengeID)
	if err != nil {
		return 0, err
	}
	if challenge.Resolved {
		return challenge.Stake.MustAdd(challenge.Stake.MustSub(challenge.RewardPool)), nil
	}

	p, err := poll.GetPoll(r.st, challenge.ID)
	if err != nil {
		return 0, err
	}
	if !p.Ended(r.clock.Now()) {
		return 0, errors.InvalidPhase
	}

	quorum, err := params.Get(r.st, params.VoteQuorum)
	if err != nil {
		return 0, err
	}
	if p.TotalWinningTokensWithQuorum(quorum) == 0 {
		return challenge.Stake.MustAdd(challenge.Stake), nil
	}

	dispensationPct, err := params.Get(r.st, params.DispensationPct)
	if err != nil {
		return 0, err
	}
	return challenge.Stake.MustAdd(bank.WinnerReward(challenge.Stake, dispensationPct)), nil
}

// Apply stakes `deposit` on new content. The listing enters the application
// stage and can be whitelisted once the stage passes unchallenged.
func (r *Registry) Apply(owner, data string, deposit common.Amount) (listing *Listing, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if listing, err = r.apply(ts, owner, data, deposit); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	metrics.Registry.IncApplications()
	observer.ListingObserver.Trigger(observer.EventListingApplied, listing)
	log.Info("application made", "listing", listing.ID, "owner", owner, "deposit", deposit)
	return listing, nil
}

func (r *Registry) apply(ts *storage.LevelDBBackend, owner, data string, deposit common.Amount) (*Listing, error) {
	id := MakeListingID(data)

	if exists, err := ExistsListing(ts, id); err != nil {
		return nil, err
	} else if exists {
		return nil, errors.ListingAlreadyExists
	}

	minDeposit, err := params.Get(ts, params.MinDeposit)
	if err != nil {
		return nil, err
	}
	if deposit < common.Amount(minDeposit) {
		return nil, errors.DepositTooLow
	}

	if err := token.Transfer(ts, owner, token.EscrowRegistry, deposit); err != nil {
		return nil, err
	}

	applyStage, err := params.GetDuration(ts, params.ApplyStageLength)
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		ID:                id,
		Data:              data,
		Owner:             owner,
		Deposit:           deposit,
		ApplicationExpiry: r.clock.Now().Add(applyStage).Unix(),
	}
	if err := listing.Save(ts); err != nil {
		return nil, err
	}

	return listing, nil
}

// Deposit tops up the listing's stake; only the owner can.
func (r *Registry) Deposit(owner, id string, amount common.Amount) (listing *Listing, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if listing, err = r.deposit(ts, owner, id, amount); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	observer.ListingObserver.Trigger(observer.EventListingDeposit, listing)
	log.Debug("deposit added", "listing", id, "amount", amount)
	return listing, nil
}

func (r *Registry) deposit(ts *storage.LevelDBBackend, owner, id string, amount common.Amount) (*Listing, error) {
	listing, err := GetListing(ts, id)
	if err != nil {
		return nil, err
	}
	if listing.Owner != owner {
		return nil, errors.NotListingOwner
	}

	if err := token.Transfer(ts, owner, token.EscrowRegistry, amount); err != nil {
		return nil, err
	}

	listing.Deposit = listing.Deposit.MustAdd(amount)
	if err := listing.Save(ts); err != nil {
		return nil, err
	}

	return listing, nil
}

// Withdraw pays part of the stake back to the owner. The remainder must stay
// at or above the current minimum deposit, and nothing can leave while a
// challenge is open.
func (r *Registry) Withdraw(owner, id string, amount common.Amount) (listing *Listing, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if listing, err = r.withdraw(ts, owner, id, amount); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	observer.ListingObserver.Trigger(observer.EventListingWithdrawal, listing)
	log.Debug("deposit withdrawn", "listing", id, "amount", amount)
	return listing, nil
}

func (r *Registry) withdraw(ts *storage.LevelDBBackend, owner, id string, amount common.Amount) (*Listing, error) {
	listing, err := GetListing(ts, id)
	if err != nil {
		return nil, err
	}
	if listing.Owner != owner {
		return nil, errors.NotListingOwner
	}
	if listing.ChallengeID != 0 {
		return nil, errors.ChallengeInProgress
	}

	remaining, err := listing.Deposit.Sub(amount)
	if err != nil {
		return nil, err
	}

	minDeposit, err := params.Get(ts, params.MinDeposit)
	if err != nil {
		return nil, err
	}
	if remaining < common.Amount(minDeposit) {
		return nil, errors.DepositTooLow
	}

	if err := token.Transfer(ts, token.EscrowRegistry, owner, amount); err != nil {
		return nil, err
	}

	listing.Deposit = remaining
	if err := listing.Save(ts); err != nil {
		return nil, err
	}

	return listing, nil
}

// Exit takes a whitelisted listing off the registry voluntarily and refunds
// the whole stake. Not possible while a challenge is open.
func (r *Registry) Exit(owner, id string) (err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return err
	}

	if err = r.exit(ts, owner, id); err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	metrics.Registry.AddWhitelisted(-1)
	observer.ListingObserver.Trigger(observer.EventListingExited, id)
	log.Info("listing exited", "listing", id, "owner", owner)
	return nil
}

func (r *Registry) exit(ts *storage.LevelDBBackend, owner, id string) error {
	listing, err := GetListing(ts, id)
	if err != nil {
		return err
	}
	if listing.Owner != owner {
		return errors.NotListingOwner
	}
	if !listing.Whitelisted {
		return errors.InvalidPhase
	}
	if listing.ChallengeID != 0 {
		return errors.ChallengeInProgress
	}

	if err := token.Transfer(ts, token.EscrowRegistry, owner, listing.Deposit); err != nil {
		return err
	}

	return RemoveListing(ts, id)
}

// StartChallenge puts the listing up for a vote, matching its stake with the
// current minimum deposit. A listing whose stake has fallen below the minimum
// is touched-and-removed instead: it leaves the registry, the owner is
// refunded, and no poll is opened.
func (r *Registry) StartChallenge(challenger, id string) (challenge *Challenge, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	var touched bool
	if challenge, touched, err = r.startChallenge(ts, challenger, id); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	if touched {
		metrics.Registry.IncRemovals()
		observer.ListingObserver.Trigger(observer.EventListingRemoved, id)
		log.Info("listing touched and removed", "listing", id)
		return nil, nil
	}

	metrics.Registry.AddOpenChallenges(1)
	observer.ChallengeObserver.Trigger(observer.EventChallengeStarted, challenge)
	observer.PollObserver.Trigger(observer.EventPollStarted, challenge.ID)
	metrics.Poll.IncStarted()
	log.Info("challenge started", "listing", id, "challenge", challenge.ID, "challenger", challenger)
	return challenge, nil
}

func (r *Registry) startChallenge(ts *storage.LevelDBBackend, challenger, id string) (*Challenge, bool, error) {
	listing, err := GetListing(ts, id)
	if err != nil {
		return nil, false, err
	}
	if listing.ChallengeID != 0 {
		return nil, false, errors.ChallengeInProgress
	}

	minDeposit, err := params.Get(ts, params.MinDeposit)
	if err != nil {
		return nil, false, err
	}
	stake := common.Amount(minDeposit)

	// touch and remove: the stake no longer covers the table stakes
	if listing.Deposit < stake {
		if err := token.Transfer(ts, token.EscrowRegistry, listing.Owner, listing.Deposit); err != nil {
			return nil, false, err
		}
		if err := RemoveListing(ts, id); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	if err := token.Transfer(ts, challenger, token.EscrowRegistry, stake); err != nil {
		return nil, false, err
	}

	commitStage, err := params.GetDuration(ts, params.CommitStageLength)
	if err != nil {
		return nil, false, err
	}
	revealStage, err := params.GetDuration(ts, params.RevealStageLength)
	if err != nil {
		return nil, false, err
	}

	p, err := poll.NewPoll(ts, r.clock.Now(), commitStage, revealStage)
	if err != nil {
		return nil, false, err
	}

	challenge := &Challenge{
		ID:         p.ID,
		ListingID:  id,
		Challenger: challenger,
		Stake:      stake,
	}
	if err := challenge.Save(ts); err != nil {
		return nil, false, err
	}

	listing.ChallengeID = p.ID
	if err := listing.Save(ts); err != nil {
		return nil, false, err
	}

	return challenge, false, nil
}

// UpdateStatus moves a listing forward once time allows it: an unchallenged
// listing past its application stage is whitelisted, and a listing whose
// challenge poll has ended gets the challenge resolved. Calling it when there
// is nothing to do is a no-op.
func (r *Registry) UpdateStatus(id string) (err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return err
	}

	outcome, err := r.updateStatus(ts, id)
	if err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	r.announce(id, outcome)
	return nil
}

type statusOutcome struct {
	whitelisted bool
	removed     bool
	resolved    *Challenge
}

func (r *Registry) announce(id string, outcome statusOutcome) {
	if outcome.resolved != nil {
		metrics.Registry.AddOpenChallenges(-1)
		observer.ChallengeObserver.Trigger(observer.EventChallengeResolved, outcome.resolved)
		log.Info("challenge resolved",
			"listing", id, "challenge", outcome.resolved.ID, "listingWon", outcome.resolved.ListingWon)
	}
	if outcome.whitelisted {
		metrics.Registry.AddWhitelisted(1)
		observer.ListingObserver.Trigger(observer.EventListingWhitelisted, id)
		log.Info("listing whitelisted", "listing", id)
	}
	if outcome.removed {
		metrics.Registry.IncRemovals()
		observer.ListingObserver.Trigger(observer.EventListingRemoved, id)
		log.Info("listing removed", "listing", id)
	}
}

func (r *Registry) updateStatus(ts *storage.LevelDBBackend, id string) (outcome statusOutcome, err error) {
	listing, err := GetListing(ts, id)
	if err != nil {
		return outcome, err
	}

	if listing.ChallengeID != 0 {
		return r.resolveChallenge(ts, listing)
	}

	if !listing.Whitelisted && r.clock.Now().Unix() >= listing.ApplicationExpiry {
		listing.Whitelisted = true
		if err := listing.Save(ts); err != nil {
			return outcome, err
		}
		outcome.whitelisted = true
	}

	return outcome, nil
}

// ResolveChallenge settles one challenge by id once its poll has ended.
func (r *Registry) ResolveChallenge(id uint64) (challenge *Challenge, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	c, err := GetChallenge(ts, id)
	if err != nil {
		ts.Discard()
		return nil, err
	}
	if c.Resolved {
		ts.Discard()
		return nil, errors.AlreadyResolved
	}

	listing, err := GetListing(ts, c.ListingID)
	if err != nil {
		ts.Discard()
		return nil, err
	}

	outcome, err := r.resolveChallenge(ts, listing)
	if err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	r.announce(c.ListingID, outcome)
	return outcome.resolved, nil
}

func (r *Registry) resolveChallenge(ts *storage.LevelDBBackend, listing *Listing) (outcome statusOutcome, err error) {
	challenge, err := GetChallenge(ts, listing.ChallengeID)
	if err != nil {
		return outcome, err
	}
	if challenge.Resolved {
		return outcome, errors.AlreadyResolved
	}

	p, err := poll.GetPoll(ts, challenge.ID)
	if err != nil {
		return outcome, err
	}
	if !p.Ended(r.clock.Now()) {
		return outcome, errors.InvalidPhase
	}

	quorum, err := params.Get(ts, params.VoteQuorum)
	if err != nil {
		return outcome, err
	}
	dispensationPct, err := params.Get(ts, params.DispensationPct)
	if err != nil {
		return outcome, err
	}

	challenge.ListingWon = p.PassedWithQuorum(quorum)
	challenge.TotalWinning = p.TotalWinningTokensWithQuorum(quorum)
	challenge.Resolved = true

	winnerCut := bank.WinnerReward(challenge.Stake, dispensationPct)
	challenge.RewardPool = bank.VoterPool(challenge.Stake, dispensationPct)

	// with no revealed weight on the winning side the whole pot goes to the
	// winner and there is nothing for voters to claim
	if challenge.TotalWinning == 0 {
		winnerCut = challenge.Stake
		challenge.RewardPool = 0
	}

	if err := challenge.Save(ts); err != nil {
		return outcome, err
	}

	if challenge.ListingWon {
		listing.ChallengeID = 0
		listing.Deposit = listing.Deposit.MustAdd(winnerCut)
		if !listing.Whitelisted {
			listing.Whitelisted = true
			outcome.whitelisted = true
		}
		if err := listing.Save(ts); err != nil {
			return outcome, err
		}
	} else {
		// the challenger takes their stake back plus the winner's cut of the
		// listing's matched stake; whatever the owner staked beyond the match
		// is refunded
		payout := challenge.Stake.MustAdd(winnerCut)
		if err := token.Transfer(ts, token.EscrowRegistry, challenge.Challenger, payout); err != nil {
			return outcome, err
		}

		remainder := listing.Deposit.MustSub(challenge.Stake)
		if remainder > 0 {
			if err := token.Transfer(ts, token.EscrowRegistry, listing.Owner, remainder); err != nil {
				return outcome, err
			}
		}

		if err := RemoveListing(ts, listing.ID); err != nil {
			return outcome, err
		}
		outcome.removed = true
	}

	outcome.resolved = challenge
	return outcome, nil
}

// ClaimReward pays a winning voter their pro-rata slice of the reward pool.
// The epoch total is sealed on the first claim, so every claim settles
// against the same denominator.
func (r *Registry) ClaimReward(voter string, challengeID uint64, salt uint64) (reward common.Amount, err error) {
	ts, err := r.st.OpenTransaction()
	if err != nil {
		return 0, err
	}

	if reward, err = r.claimReward(ts, voter, challengeID, salt); err != nil {
		ts.Discard()
		return 0, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return 0, err
	}

	metrics.Registry.AddRewardClaimed(uint64(reward))
	observer.RewardObserver.Trigger(observer.EventRewardClaimed, challengeID, voter, reward)
	log.Info("reward claimed", "challenge", challengeID, "voter", voter, "reward", reward)
	return reward, nil
}

func (r *Registry) claimReward(ts *storage.LevelDBBackend, voter string, challengeID uint64, salt uint64) (common.Amount, error) {
	challenge, err := GetChallenge(ts, challengeID)
	if err != nil {
		return 0, err
	}
	if !challenge.Resolved {
		return 0, errors.InvalidPhase
	}

	if err := bank.MarkClaimed(ts, challengeID, voter); err != nil {
		return 0, err
	}

	tokens, err := poll.NumWinningTokens(ts, challengeID, voter, salt, challenge.WinningChoice())
	if err != nil {
		return 0, err
	}

	total, err := bank.SealTotal(ts, challengeID, challenge.TotalWinning)
	if err != nil {
		return 0, err
	}
	if err := bank.RecordVoterWeight(ts, challengeID, voter, tokens); err != nil {
		return 0, err
	}

	reward, err := bank.VoterReward(challenge.RewardPool, tokens, total)
	if err != nil {
		return 0, err
	}

	if reward > 0 {
		if err := token.Transfer(ts, token.EscrowRegistry, voter, reward); err != nil {
			return 0, err
		}
	}

	return reward, nil
}

// VoterReward previews what ClaimReward would pay, without settling anything.
func (r *Registry) VoterReward(voter string, challengeID uint64, salt uint64) (common.Amount, error) {
	challenge, err := GetChallenge(r.st, challengeID)
	if err != nil {
		return 0, err
	}
	if !challenge.Resolved {
		return 0, errors.InvalidPhase
	}

	tokens, err := poll.NumWinningTokens(r.st, challengeID, voter, salt, challenge.WinningChoice())
	if err != nil {
		return 0, err
	}

	total := challenge.TotalWinning
	if sealed, err := bank.IsSealed(r.st, challengeID); err != nil {
		return 0, err
	} else if sealed {
		if total, err = bank.GetTotal(r.st, challengeID); err != nil {
			return 0, err
		}
	}

	return bank.VoterReward(challenge.RewardPool, tokens, total)
}

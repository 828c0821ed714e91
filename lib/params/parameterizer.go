package params

import (
	logging "github.com/inconshreveable/log15"

	"github.com/curatenet/tcr/lib/bank"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/observer"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/metrics"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

var log logging.Logger = logging.New("module", "params")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// Parameterizer runs the proposal process the parameter store is governed
// by: parameter changes are staked, challengeable and decided by the same
// commit-reveal polls that decide listing challenges.
type Parameterizer struct {
	st    *storage.LevelDBBackend
	clock common.Clock
}

func NewParameterizer(st *storage.LevelDBBackend, clock common.Clock) *Parameterizer {
	return &Parameterizer{st: st, clock: clock}
}

func (pz *Parameterizer) Storage() *storage.LevelDBBackend {
	return pz.st
}

func (pz *Parameterizer) Proposal(id string) (*Proposal, error) {
	return GetProposal(pz.st, id)
}

func (pz *Parameterizer) Challenge(id uint64) (*ParamChallenge, error) {
	return GetParamChallenge(pz.st, id)
}

func (pz *Parameterizer) PropExists(id string) (bool, error) {
	return ExistsProposal(pz.st, id)
}

// CanBeSet reports whether ProcessProposal would apply the proposal's value
// right now: application window over and no challenge standing in the way.
func (pz *Parameterizer) CanBeSet(id string) (bool, error) {
	p, err := GetProposal(pz.st, id)
	if err != nil {
		if err == errors.NoSuchProposal {
			return false, nil
		}
		return false, err
	}

	return p.ChallengeID == 0 && pz.clock.Now().Unix() >= p.AppExpiry, nil
}

// ChallengeCanBeResolved reports whether the proposal's open challenge has a
// finished poll.
func (pz *Parameterizer) ChallengeCanBeResolved(id string) (bool, error) {
	p, err := GetProposal(pz.st, id)
	if err != nil {
		if err == errors.NoSuchProposal {
			return false, nil
		}
		return false, err
	}
	if p.ChallengeID == 0 {
		return false, nil
	}

	c, err := GetParamChallenge(pz.st, p.ChallengeID)
	if err != nil {
		return false, err
	}
	if c.Resolved {
		return false, nil
	}

	pl, err := poll.GetPoll(pz.st, p.ChallengeID)
	if err != nil {
		return false, err
	}
	return pl.Ended(pz.clock.Now()), nil
}

// Propose stakes the proposal deposit on changing `name` to `value`.
// Proposing the value the parameter already has is rejected.
func (pz *Parameterizer) Propose(proposer, name string, value uint64) (proposal *Proposal, err error) {
	ts, err := pz.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if proposal, err = pz.propose(ts, proposer, name, value); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	observer.ParamObserver.Trigger(observer.EventProposalMade, proposal)
	log.Info("proposal made", "proposal", proposal.ID, "name", name, "value", value)
	return proposal, nil
}

func (pz *Parameterizer) propose(ts *storage.LevelDBBackend, proposer, name string, value uint64) (*Proposal, error) {
	if err := Validate(name, value); err != nil {
		return nil, err
	}

	current, err := Get(ts, name)
	if err != nil {
		return nil, err
	}
	if current == value {
		return nil, errors.InvalidParameterValue
	}

	id := MakeProposalID(name, value)
	if exists, err := ExistsProposal(ts, id); err != nil {
		return nil, err
	} else if exists {
		return nil, errors.ProposalAlreadyExists
	}

	deposit, err := Get(ts, PMinDeposit)
	if err != nil {
		return nil, err
	}
	if err := token.Transfer(ts, proposer, token.EscrowParameterizer, common.Amount(deposit)); err != nil {
		return nil, err
	}

	applyStage, err := GetDuration(ts, PApplyStageLength)
	if err != nil {
		return nil, err
	}

	proposal := &Proposal{
		ID:        id,
		Name:      name,
		Value:     value,
		Proposer:  proposer,
		Deposit:   common.Amount(deposit),
		AppExpiry: pz.clock.Now().Add(applyStage).Unix(),
	}
	if err := proposal.Save(ts); err != nil {
		return nil, err
	}

	return proposal, nil
}

// ChallengeProposal matches the proposer's stake and opens a poll over the
// change.
func (pz *Parameterizer) ChallengeProposal(challenger, proposalID string) (challenge *ParamChallenge, err error) {
	ts, err := pz.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if challenge, err = pz.challengeProposal(ts, challenger, proposalID); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	metrics.Poll.IncStarted()
	observer.ParamObserver.Trigger(observer.EventProposalChallenged, challenge)
	observer.PollObserver.Trigger(observer.EventPollStarted, challenge.ID)
	log.Info("proposal challenged", "proposal", proposalID, "challenge", challenge.ID, "challenger", challenger)
	return challenge, nil
}

func (pz *Parameterizer) challengeProposal(ts *storage.LevelDBBackend, challenger, proposalID string) (*ParamChallenge, error) {
	proposal, err := GetProposal(ts, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ChallengeID != 0 {
		return nil, errors.ChallengeInProgress
	}

	if err := token.Transfer(ts, challenger, token.EscrowParameterizer, proposal.Deposit); err != nil {
		return nil, err
	}

	commitStage, err := GetDuration(ts, PCommitStageLength)
	if err != nil {
		return nil, err
	}
	revealStage, err := GetDuration(ts, PRevealStageLength)
	if err != nil {
		return nil, err
	}

	p, err := poll.NewPoll(ts, pz.clock.Now(), commitStage, revealStage)
	if err != nil {
		return nil, err
	}

	challenge := &ParamChallenge{
		ID:         p.ID,
		ProposalID: proposalID,
		Challenger: challenger,
		Stake:      proposal.Deposit,
	}
	if err := challenge.Save(ts); err != nil {
		return nil, err
	}

	proposal.ChallengeID = p.ID
	if err := proposal.Save(ts); err != nil {
		return nil, err
	}

	return challenge, nil
}

// ProcessProposal settles the proposal: an unchallenged proposal past its
// application stage takes effect and refunds the stake; a challenged one
// follows its poll. Either way the proposal record is consumed.
func (pz *Parameterizer) ProcessProposal(proposalID string) (err error) {
	ts, err := pz.st.OpenTransaction()
	if err != nil {
		return err
	}

	resolved, err := pz.processProposal(ts, proposalID)
	if err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	observer.ParamObserver.Trigger(observer.EventProposalProcessed, proposalID)
	if resolved != nil {
		log.Info("proposal processed", "proposal", proposalID, "proposalWon", resolved.ProposalWon)
	} else {
		log.Info("proposal processed", "proposal", proposalID, "proposalWon", true)
	}
	return nil
}

func (pz *Parameterizer) processProposal(ts *storage.LevelDBBackend, proposalID string) (*ParamChallenge, error) {
	proposal, err := GetProposal(ts, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.ChallengeID == 0 {
		if pz.clock.Now().Unix() < proposal.AppExpiry {
			return nil, errors.InvalidPhase
		}

		if err := Set(ts, proposal.Name, proposal.Value); err != nil {
			return nil, err
		}
		if err := token.Transfer(ts, token.EscrowParameterizer, proposal.Proposer, proposal.Deposit); err != nil {
			return nil, err
		}
		return nil, RemoveProposal(ts, proposalID)
	}

	challenge, err := GetParamChallenge(ts, proposal.ChallengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Resolved {
		return nil, errors.AlreadyResolved
	}

	p, err := poll.GetPoll(ts, challenge.ID)
	if err != nil {
		return nil, err
	}
	if !p.Ended(pz.clock.Now()) {
		return nil, errors.InvalidPhase
	}

	quorum, err := Get(ts, PVoteQuorum)
	if err != nil {
		return nil, err
	}
	dispensationPct, err := Get(ts, PDispensationPct)
	if err != nil {
		return nil, err
	}

	challenge.ProposalWon = p.PassedWithQuorum(quorum)
	challenge.TotalWinning = p.TotalWinningTokensWithQuorum(quorum)
	challenge.Resolved = true

	winnerCut := bank.WinnerReward(challenge.Stake, dispensationPct)
	challenge.RewardPool = bank.VoterPool(challenge.Stake, dispensationPct)
	if challenge.TotalWinning == 0 {
		winnerCut = challenge.Stake
		challenge.RewardPool = 0
	}

	if err := challenge.Save(ts); err != nil {
		return nil, err
	}

	winner := challenge.Challenger
	if challenge.ProposalWon {
		winner = proposal.Proposer
		if err := Set(ts, proposal.Name, proposal.Value); err != nil {
			return nil, err
		}
	}

	payout := challenge.Stake.MustAdd(winnerCut)
	if err := token.Transfer(ts, token.EscrowParameterizer, winner, payout); err != nil {
		return nil, err
	}

	if err := RemoveProposal(ts, proposalID); err != nil {
		return nil, err
	}

	return challenge, nil
}

// ClaimReward pays a winning voter their slice of a processed proposal
// challenge; the epoch total is sealed on first claim.
func (pz *Parameterizer) ClaimReward(voter string, challengeID uint64, salt uint64) (reward common.Amount, err error) {
	ts, err := pz.st.OpenTransaction()
	if err != nil {
		return 0, err
	}

	if reward, err = pz.claimReward(ts, voter, challengeID, salt); err != nil {
		ts.Discard()
		return 0, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return 0, err
	}

	observer.RewardObserver.Trigger(observer.EventRewardClaimed, challengeID, voter, reward)
	log.Info("reward claimed", "challenge", challengeID, "voter", voter, "reward", reward)
	return reward, nil
}

func (pz *Parameterizer) claimReward(ts *storage.LevelDBBackend, voter string, challengeID uint64, salt uint64) (common.Amount, error) {
	challenge, err := GetParamChallenge(ts, challengeID)
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
		if err := token.Transfer(ts, token.EscrowParameterizer, voter, reward); err != nil {
			return 0, err
		}
	}

	return reward, nil
}

// VoterReward previews what ClaimReward would pay.
func (pz *Parameterizer) VoterReward(voter string, challengeID uint64, salt uint64) (common.Amount, error) {
	challenge, err := GetParamChallenge(pz.st, challengeID)
	if err != nil {
		return 0, err
	}
	if !challenge.Resolved {
		return 0, errors.InvalidPhase
	}

	tokens, err := poll.NumWinningTokens(pz.st, challengeID, voter, salt, challenge.WinningChoice())
	if err != nil {
		return 0, err
	}

	total := challenge.TotalWinning
	if sealed, err := bank.IsSealed(pz.st, challengeID); err != nil {
		return 0, err
	} else if sealed {
		if total, err = bank.GetTotal(pz.st, challengeID); err != nil {
			return 0, err
		}
	}

	return bank.VoterReward(challenge.RewardPool, tokens, total)
}

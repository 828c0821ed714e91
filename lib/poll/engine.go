package poll

import (
	logging "github.com/inconshreveable/log15"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/observer"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/metrics"
	"github.com/curatenet/tcr/lib/storage"
)

var log logging.Logger = logging.New("module", "poll")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// Engine runs the voter-facing side of commit-reveal voting. Every mutating
// operation opens its own storage transaction and only triggers observer
// events once that transaction has committed.
type Engine struct {
	st    *storage.LevelDBBackend
	clock common.Clock
}

func NewEngine(st *storage.LevelDBBackend, clock common.Clock) *Engine {
	return &Engine{st: st, clock: clock}
}

func (e *Engine) Storage() *storage.LevelDBBackend {
	return e.st
}

func (e *Engine) Poll(id uint64) (*Poll, error) {
	return GetPoll(e.st, id)
}

func (e *Engine) Rights(voter string) (*Rights, error) {
	return GetRights(e.st, voter)
}

func (e *Engine) Commitment(id uint64, voter string) (*VoteCommitment, error) {
	return GetVoteCommitment(e.st, id, voter)
}

// RequestVotingRights escrows `amount` of the voter's tokens with the voting
// escrow so they can back commitments.
func (e *Engine) RequestVotingRights(voter string, amount common.Amount) (rights *Rights, err error) {
	ts, err := e.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if rights, err = RequestVotingRights(ts, voter, amount); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	log.Debug("voting rights requested", "voter", voter, "amount", amount)
	return rights, nil
}

// WithdrawVotingRights pays unlocked escrowed tokens back to the voter.
func (e *Engine) WithdrawVotingRights(voter string, amount common.Amount) (rights *Rights, err error) {
	ts, err := e.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	if rights, err = WithdrawVotingRights(ts, voter, amount); err != nil {
		ts.Discard()
		return nil, err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return nil, err
	}

	log.Debug("voting rights withdrawn", "voter", voter, "amount", amount)
	return rights, nil
}

// CommitVote locks `tokens` of the voter's rights behind `secretHash` for the
// poll. Committing again during the commit period replaces the previous hash
// and re-adjusts the locked amount; `prevPollID` is an optional client-side
// ordering hint and is kept with the commitment.
func (e *Engine) CommitVote(voter string, pollID uint64, secretHash string, tokens common.Amount, prevPollID uint64) (err error) {
	ts, err := e.st.OpenTransaction()
	if err != nil {
		return err
	}

	if err = e.commitVote(ts, voter, pollID, secretHash, tokens, prevPollID); err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	metrics.Poll.IncCommits()
	observer.PollObserver.Trigger(observer.EventVoteCommitted, pollID, voter)
	log.Debug("vote committed", "poll", pollID, "voter", voter, "tokens", tokens)
	return nil
}

func (e *Engine) commitVote(ts *storage.LevelDBBackend, voter string, pollID uint64, secretHash string, tokens common.Amount, prevPollID uint64) error {
	p, err := GetPoll(ts, pollID)
	if err != nil {
		return err
	}
	if !p.CommitPeriodActive(e.clock.Now()) {
		return errors.InvalidPhase
	}

	if prevPollID != 0 && prevPollID != pollID {
		if exists, err := ExistsPoll(ts, prevPollID); err != nil {
			return err
		} else if !exists {
			return errors.NoSuchPoll
		}
	}

	rights, err := GetRights(ts, voter)
	if err != nil {
		return err
	}
	if tokens > rights.Deposited {
		return errors.InsufficientRights
	}

	// a fresh commitment for the same poll releases the previous lock
	var previous common.Amount
	if exists, err := DidCommit(ts, pollID, voter); err != nil {
		return err
	} else if exists {
		v, err := GetVoteCommitment(ts, pollID, voter)
		if err != nil {
			return err
		}
		if v.Revealed {
			return errors.AlreadyRevealed
		}
		previous = v.Tokens
	}

	available := rights.Unlocked().MustAdd(previous)
	if tokens > available {
		return errors.InsufficientUnlocked
	}

	rights.Locked = rights.Locked.MustSub(previous).MustAdd(tokens)
	if err := rights.Save(ts); err != nil {
		return err
	}

	v := &VoteCommitment{
		PollID:     pollID,
		Voter:      voter,
		SecretHash: secretHash,
		Tokens:     tokens,
		PrevPollID: prevPollID,
	}
	return v.Save(ts)
}

// RevealVote opens the commitment: the resupplied (choice, salt) pair must
// reproduce the committed hash. The revealed tokens count toward the chosen
// side and unlock immediately.
func (e *Engine) RevealVote(voter string, pollID uint64, choice VoteOption, salt uint64) (err error) {
	ts, err := e.st.OpenTransaction()
	if err != nil {
		return err
	}

	if err = e.revealVote(ts, voter, pollID, choice, salt); err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	metrics.Poll.IncReveals()
	observer.PollObserver.Trigger(observer.EventVoteRevealed, pollID, voter)
	log.Debug("vote revealed", "poll", pollID, "voter", voter, "choice", choice)
	return nil
}

func (e *Engine) revealVote(ts *storage.LevelDBBackend, voter string, pollID uint64, choice VoteOption, salt uint64) error {
	if choice != VoteFor && choice != VoteAgainst {
		return errors.InvalidVoteOption
	}

	p, err := GetPoll(ts, pollID)
	if err != nil {
		return err
	}
	if !p.RevealPeriodActive(e.clock.Now()) {
		return errors.InvalidPhase
	}

	v, err := GetVoteCommitment(ts, pollID, voter)
	if err != nil {
		return err
	}
	if v.Revealed {
		return errors.AlreadyRevealed
	}

	if CommitHash(choice, salt) != v.SecretHash {
		return errors.SaltMismatch
	}

	if choice == VoteFor {
		p.VotesFor = p.VotesFor.MustAdd(v.Tokens)
	} else {
		p.VotesAgainst = p.VotesAgainst.MustAdd(v.Tokens)
	}
	if err := p.Save(ts); err != nil {
		return err
	}

	v.Revealed = true
	v.Choice = choice
	if err := v.Save(ts); err != nil {
		return err
	}

	rights, err := GetRights(ts, voter)
	if err != nil {
		return err
	}
	rights.Locked = rights.Locked.MustSub(v.Tokens)
	return rights.Save(ts)
}

// RescueTokens unlocks tokens stuck behind a commitment that was never
// revealed, once the poll has ended. The forfeited weight never counts toward
// either side.
func (e *Engine) RescueTokens(voter string, pollID uint64) (err error) {
	ts, err := e.st.OpenTransaction()
	if err != nil {
		return err
	}

	if err = e.rescueTokens(ts, voter, pollID); err != nil {
		ts.Discard()
		return err
	}

	if err = ts.Commit(); err != nil {
		ts.Discard()
		return err
	}

	observer.PollObserver.Trigger(observer.EventTokensRescued, pollID, voter)
	log.Debug("tokens rescued", "poll", pollID, "voter", voter)
	return nil
}

func (e *Engine) rescueTokens(ts *storage.LevelDBBackend, voter string, pollID uint64) error {
	p, err := GetPoll(ts, pollID)
	if err != nil {
		return err
	}
	if !p.Ended(e.clock.Now()) {
		return errors.InvalidPhase
	}

	v, err := GetVoteCommitment(ts, pollID, voter)
	if err != nil {
		return err
	}
	if v.Revealed || v.Rescued {
		// the lock was already released, either by reveal or a prior rescue
		return errors.AlreadyRevealed
	}

	rights, err := GetRights(ts, voter)
	if err != nil {
		return err
	}
	rights.Locked = rights.Locked.MustSub(v.Tokens)
	if err := rights.Save(ts); err != nil {
		return err
	}

	v.Rescued = true
	return v.Save(ts)
}

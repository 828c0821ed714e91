package poll

import (
	"fmt"
	"math/big"
	"time"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

// Poll is one commit-reveal vote. the storage should support,
//  * find by `ID`
//
// models
//  * 'id'
// 	- 'pl-poll-<Poll.ID>': `Poll`
//  * per-voter commitment
// 	- 'pl-vote-<Poll.ID>-<voter>': `VoteCommitment`
//  * monotonic id counter
// 	- 'pl-seq': uint64

const PollPrefix string = "pl-poll-"
const VotePrefix string = "pl-vote-"
const PollSequenceKey string = "pl-seq"

type VoteOption uint64

const (
	VoteAgainst VoteOption = 0
	VoteFor     VoteOption = 1
)

type Poll struct {
	ID            uint64
	CommitEndDate int64 // unix seconds
	RevealEndDate int64 // unix seconds
	VotesFor      common.Amount
	VotesAgainst  common.Amount
}

// VoteCommitment is one voter's stake in one poll. `Choice` is only
// meaningful once `Revealed` is true.
type VoteCommitment struct {
	PollID     uint64
	Voter      string
	SecretHash string
	Tokens     common.Amount
	Revealed   bool
	Choice     VoteOption
	Rescued    bool
	PrevPollID uint64
}

func (p *Poll) String() string {
	return string(common.MustJSONMarshal(p))
}

func (p *Poll) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(p)
	return
}

func (p *Poll) CommitPeriodActive(now time.Time) bool {
	return now.Unix() < p.CommitEndDate
}

func (p *Poll) RevealPeriodActive(now time.Time) bool {
	return now.Unix() >= p.CommitEndDate && now.Unix() < p.RevealEndDate
}

func (p *Poll) Ended(now time.Time) bool {
	return now.Unix() >= p.RevealEndDate
}

// Passed reports whether the vote came out in favor under a simple majority.
// Ties go against: a challenged listing needs a strict majority to survive,
// so the status quo stays contestable.
func (p *Poll) Passed() bool {
	return p.PassedWithQuorum(50)
}

// PassedWithQuorum requires the for-side to hold strictly more than
// `quorum` percent of the revealed weight. The products are taken over
// big.Int so large stakes cannot overflow.
func (p *Poll) PassedWithQuorum(quorum uint64) bool {
	votesFor := new(big.Int).SetUint64(uint64(p.VotesFor))
	total := new(big.Int).SetUint64(uint64(p.VotesFor.MustAdd(p.VotesAgainst)))

	lhs := new(big.Int).Mul(votesFor, big.NewInt(100))
	rhs := new(big.Int).Mul(total, new(big.Int).SetUint64(quorum))
	return lhs.Cmp(rhs) > 0
}

func (p *Poll) WinningChoiceWithQuorum(quorum uint64) VoteOption {
	if p.PassedWithQuorum(quorum) {
		return VoteFor
	}
	return VoteAgainst
}

func (p *Poll) TotalWinningTokensWithQuorum(quorum uint64) common.Amount {
	if p.PassedWithQuorum(quorum) {
		return p.VotesFor
	}
	return p.VotesAgainst
}

func (p *Poll) WinningChoice() VoteOption {
	return p.WinningChoiceWithQuorum(50)
}

func (p *Poll) TotalWinningTokens() common.Amount {
	return p.TotalWinningTokensWithQuorum(50)
}

func (p *Poll) Save(st *storage.LevelDBBackend) (err error) {
	key := GetPollKey(p.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, p)
	}
	return st.New(key, p)
}

func (v *VoteCommitment) Save(st *storage.LevelDBBackend) (err error) {
	key := GetVoteKey(v.PollID, v.Voter)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, v)
	}
	return st.New(key, v)
}

func GetPollKey(id uint64) string {
	return fmt.Sprintf("%s%020d", PollPrefix, id)
}

func GetVoteKey(id uint64, voter string) string {
	return fmt.Sprintf("%s%020d-%s", VotePrefix, id, voter)
}

func ExistsPoll(st *storage.LevelDBBackend, id uint64) (bool, error) {
	return st.Has(GetPollKey(id))
}

func GetPoll(st *storage.LevelDBBackend, id uint64) (p *Poll, err error) {
	if err = st.Get(GetPollKey(id), &p); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoSuchPoll
		}
		return
	}

	return
}

func GetVoteCommitment(st *storage.LevelDBBackend, id uint64, voter string) (v *VoteCommitment, err error) {
	if err = st.Get(GetVoteKey(id, voter), &v); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoCommitment
		}
		return
	}

	return
}

func DidCommit(st *storage.LevelDBBackend, id uint64, voter string) (bool, error) {
	return st.Has(GetVoteKey(id, voter))
}

func DidReveal(st *storage.LevelDBBackend, id uint64, voter string) (bool, error) {
	v, err := GetVoteCommitment(st, id, voter)
	if err != nil {
		if err == errors.NoCommitment {
			return false, nil
		}
		return false, err
	}

	return v.Revealed, nil
}

// NewPoll creates the next poll inside the caller's storage transaction; the
// id comes from a persisted counter so it is unique and monotonic.
func NewPoll(st *storage.LevelDBBackend, now time.Time, commitStageLength, revealStageLength time.Duration) (*Poll, error) {
	id, err := nextPollID(st)
	if err != nil {
		return nil, err
	}

	commitEnd := now.Add(commitStageLength)
	revealEnd := commitEnd.Add(revealStageLength)

	p := &Poll{
		ID:            id,
		CommitEndDate: commitEnd.Unix(),
		RevealEndDate: revealEnd.Unix(),
	}
	if err := p.Save(st); err != nil {
		return nil, err
	}

	return p, nil
}

func nextPollID(st *storage.LevelDBBackend) (uint64, error) {
	var id uint64

	exists, err := st.Has(PollSequenceKey)
	if err != nil {
		return 0, err
	}
	if exists {
		if err := st.Get(PollSequenceKey, &id); err != nil {
			return 0, err
		}
	}

	id++
	if exists {
		err = st.Set(PollSequenceKey, id)
	} else {
		err = st.New(PollSequenceKey, id)
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

// NumWinningTokens re-derives the commitment at claim time: the voter must
// have revealed, the revealed choice must sit on `winning`, and the
// resupplied salt must reproduce the committed hash.
func NumWinningTokens(st *storage.LevelDBBackend, id uint64, voter string, salt uint64, winning VoteOption) (common.Amount, error) {
	v, err := GetVoteCommitment(st, id, voter)
	if err != nil {
		if err == errors.NoCommitment {
			return 0, errors.DidNotReveal
		}
		return 0, err
	}
	if !v.Revealed {
		return 0, errors.DidNotReveal
	}
	if v.Choice != winning {
		return 0, errors.NotWinningVote
	}
	if CommitHash(v.Choice, salt) != v.SecretHash {
		return 0, errors.SaltMismatch
	}

	return v.Tokens, nil
}

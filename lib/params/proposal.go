package params

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
)

// Proposal is one attempt to reparameterize the registry. Its id is derived
// from the (name, value) pair, so the same change cannot be proposed twice
// while one proposal is in flight.
//
// models
//  * 'id'
// 	- 'pm-proposal-<Proposal.ID>': `Proposal`
//  * 'challenge id'
// 	- 'pm-challenge-<ParamChallenge.ID>': `ParamChallenge`

const (
	ProposalPrefix       string = "pm-proposal-"
	ParamChallengePrefix string = "pm-challenge-"
)

type Proposal struct {
	ID          string
	Name        string
	Value       uint64
	Proposer    string
	Deposit     common.Amount
	AppExpiry   int64  // unix seconds
	ChallengeID uint64 // 0 while unchallenged
}

// ParamChallenge mirrors a registry challenge for a proposal; its id is the
// id of the poll deciding it.
type ParamChallenge struct {
	ID         uint64
	ProposalID string
	Challenger string

	Stake      common.Amount
	RewardPool common.Amount

	Resolved     bool
	ProposalWon  bool
	TotalWinning common.Amount
}

func MakeProposalID(name string, value uint64) string {
	return common.MustMakeObjectHashString([]interface{}{name, value})
}

func (p *Proposal) String() string {
	return string(common.MustJSONMarshal(p))
}

func (p *Proposal) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(p)
	return
}

func (p *Proposal) Save(st *storage.LevelDBBackend) (err error) {
	key := GetProposalKey(p.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, p)
	}
	return st.New(key, p)
}

func (c *ParamChallenge) String() string {
	return string(common.MustJSONMarshal(c))
}

func (c *ParamChallenge) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(c)
	return
}

func (c *ParamChallenge) WinningChoice() poll.VoteOption {
	if c.ProposalWon {
		return poll.VoteFor
	}
	return poll.VoteAgainst
}

func (c *ParamChallenge) Save(st *storage.LevelDBBackend) (err error) {
	key := GetParamChallengeKey(c.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, c)
	}
	return st.New(key, c)
}

func GetProposalKey(id string) string {
	return fmt.Sprintf("%s%s", ProposalPrefix, id)
}

func GetParamChallengeKey(id uint64) string {
	return fmt.Sprintf("%s%020d", ParamChallengePrefix, id)
}

func ExistsProposal(st *storage.LevelDBBackend, id string) (bool, error) {
	return st.Has(GetProposalKey(id))
}

func GetProposal(st *storage.LevelDBBackend, id string) (p *Proposal, err error) {
	if err = st.Get(GetProposalKey(id), &p); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoSuchProposal
		}
		return
	}

	return
}

func RemoveProposal(st *storage.LevelDBBackend, id string) error {
	return st.Remove(GetProposalKey(id))
}

func GetParamChallenge(st *storage.LevelDBBackend, id uint64) (c *ParamChallenge, err error) {
	if err = st.Get(GetParamChallengeKey(id), &c); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoSuchChallenge
		}
		return
	}

	return
}

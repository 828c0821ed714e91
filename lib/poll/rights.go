package poll

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

// Rights tracks a voter's tokens held by the voting escrow. `Deposited` is
// everything the voter paid in; `Locked` is the slice currently backing
// active commitments, so `Deposited - Locked` is free to withdraw or commit.
//
// models
//  * 'voter'
// 	- 'vr-<voter>': `Rights`

const RightsPrefix string = "vr-"

type Rights struct {
	Voter     string
	Deposited common.Amount
	Locked    common.Amount
}

func (r *Rights) String() string {
	return string(common.MustJSONMarshal(r))
}

func (r *Rights) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(r)
	return
}

func (r *Rights) Unlocked() common.Amount {
	return r.Deposited.MustSub(r.Locked)
}

func (r *Rights) Save(st *storage.LevelDBBackend) (err error) {
	key := GetRightsKey(r.Voter)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, r)
	}
	return st.New(key, r)
}

func GetRightsKey(voter string) string {
	return fmt.Sprintf("%s%s", RightsPrefix, voter)
}

// GetRights never fails on an unknown voter; it hands back a zeroed record.
func GetRights(st *storage.LevelDBBackend, voter string) (r *Rights, err error) {
	key := GetRightsKey(voter)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}
	if !exists {
		return &Rights{Voter: voter}, nil
	}

	if err = st.Get(key, &r); err != nil {
		return
	}

	return
}

// RequestVotingRights moves `amount` tokens from the voter into the voting
// escrow and credits the voter's deposited rights.
func RequestVotingRights(st *storage.LevelDBBackend, voter string, amount common.Amount) (*Rights, error) {
	if err := token.Transfer(st, voter, token.EscrowVoting, amount); err != nil {
		return nil, err
	}

	rights, err := GetRights(st, voter)
	if err != nil {
		return nil, err
	}

	deposited, err := rights.Deposited.Add(amount)
	if err != nil {
		return nil, err
	}
	rights.Deposited = deposited

	if err := rights.Save(st); err != nil {
		return nil, err
	}

	return rights, nil
}

// WithdrawVotingRights pays `amount` unlocked tokens back out of the voting
// escrow. Tokens locked behind unresolved commitments stay put until they are
// revealed or rescued.
func WithdrawVotingRights(st *storage.LevelDBBackend, voter string, amount common.Amount) (*Rights, error) {
	rights, err := GetRights(st, voter)
	if err != nil {
		return nil, err
	}

	if rights.Unlocked() < amount {
		return nil, errors.InsufficientUnlocked
	}

	if err := token.Transfer(st, token.EscrowVoting, voter, amount); err != nil {
		return nil, err
	}

	rights.Deposited = rights.Deposited.MustSub(amount)
	if err := rights.Save(st); err != nil {
		return nil, err
	}

	return rights, nil
}

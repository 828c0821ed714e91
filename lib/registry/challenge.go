package registry

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
)

// Challenge is one attempt to have a listing removed. Its id is the id of the
// poll deciding it, which also serves as the reward epoch once resolved.
//
// models
//  * 'id'
// 	- 'rg-challenge-<Challenge.ID>': `Challenge`

const ChallengePrefix string = "rg-challenge-"

type Challenge struct {
	ID         uint64
	ListingID  string
	Challenger string

	// Stake is the matched amount both sides put at risk; RewardPool is the
	// voters' share of the loser's stake, fixed at resolution.
	Stake      common.Amount
	RewardPool common.Amount

	Resolved     bool
	ListingWon   bool
	TotalWinning common.Amount
}

func (c *Challenge) String() string {
	return string(common.MustJSONMarshal(c))
}

func (c *Challenge) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(c)
	return
}

// WinningChoice is only meaningful once the challenge is resolved.
func (c *Challenge) WinningChoice() poll.VoteOption {
	if c.ListingWon {
		return poll.VoteFor
	}
	return poll.VoteAgainst
}

func (c *Challenge) Save(st *storage.LevelDBBackend) (err error) {
	key := GetChallengeKey(c.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, c)
	}
	return st.New(key, c)
}

func GetChallengeKey(id uint64) string {
	return fmt.Sprintf("%s%020d", ChallengePrefix, id)
}

func ExistsChallenge(st *storage.LevelDBBackend, id uint64) (bool, error) {
	return st.Has(GetChallengeKey(id))
}

func GetChallenge(st *storage.LevelDBBackend, id uint64) (c *Challenge, err error) {
	if err = st.Get(GetChallengeKey(id), &c); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoSuchChallenge
		}
		return
	}

	return
}

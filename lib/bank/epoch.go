package bank

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

// The epoch ledger keeps the per-challenge accounting that reward claims
// settle against. An epoch is sealed once with the total winning weight when
// the first claim arrives, and every voter's winning weight is recorded at
// most once, so repeated claims can be refused without re-tallying the poll.
//
// models
//  * 'total', write-once
// 	- 'ep-total-<epoch>': `common.Amount`
//  * 'voter weight', write-once
// 	- 'ep-voter-<epoch>-<voter>': `common.Amount`
//  * 'claimed'
// 	- 'ep-claimed-<epoch>-<voter>': `bool`

const (
	EpochPrefixTotal   string = "ep-total-"
	EpochPrefixVoter   string = "ep-voter-"
	EpochPrefixClaimed string = "ep-claimed-"
)

func GetTotalKey(epoch uint64) string {
	return fmt.Sprintf("%s%020d", EpochPrefixTotal, epoch)
}

func GetVoterKey(epoch uint64, voter string) string {
	return fmt.Sprintf("%s%020d-%s", EpochPrefixVoter, epoch, voter)
}

func GetClaimedKey(epoch uint64, voter string) string {
	return fmt.Sprintf("%s%020d-%s", EpochPrefixClaimed, epoch, voter)
}

// SealTotal records the total winning weight for the epoch. The first write
// wins; later calls leave the sealed value untouched and return it.
func SealTotal(st *storage.LevelDBBackend, epoch uint64, total common.Amount) (common.Amount, error) {
	key := GetTotalKey(epoch)

	exists, err := st.Has(key)
	if err != nil {
		return 0, err
	}
	if exists {
		var sealed common.Amount
		if err := st.Get(key, &sealed); err != nil {
			return 0, err
		}
		return sealed, nil
	}

	if err := st.New(key, total); err != nil {
		return 0, err
	}
	return total, nil
}

func IsSealed(st *storage.LevelDBBackend, epoch uint64) (bool, error) {
	return st.Has(GetTotalKey(epoch))
}

func GetTotal(st *storage.LevelDBBackend, epoch uint64) (total common.Amount, err error) {
	err = st.Get(GetTotalKey(epoch), &total)
	return
}

// RecordVoterWeight snapshots one voter's winning weight in the epoch. It is
// write-once per voter.
func RecordVoterWeight(st *storage.LevelDBBackend, epoch uint64, voter string, weight common.Amount) error {
	key := GetVoterKey(epoch, voter)

	exists, err := st.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return errors.StorageRecordAlreadyExists
	}

	return st.New(key, weight)
}

func GetVoterWeight(st *storage.LevelDBBackend, epoch uint64, voter string) (weight common.Amount, err error) {
	err = st.Get(GetVoterKey(epoch, voter), &weight)
	return
}

// MarkClaimed refuses the second claim for the same (epoch, voter) pair.
func MarkClaimed(st *storage.LevelDBBackend, epoch uint64, voter string) error {
	key := GetClaimedKey(epoch, voter)

	exists, err := st.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return errors.AlreadyClaimed
	}

	return st.New(key, true)
}

func HasClaimed(st *storage.LevelDBBackend, epoch uint64, voter string) (bool, error) {
	return st.Has(GetClaimedKey(epoch, voter))
}

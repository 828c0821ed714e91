package registry

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

// Listing is one registry entry, from application to whitelist (or removal).
// The id is derived from the listed content, so the same content can never be
// listed twice. the storage should support,
//  * find by `ID`
//  * get list by created order
//
// models
//  * 'id'
// 	- 'rg-listing-<Listing.ID>': `Listing`
//  * 'created'
// 	- 'rg-created-<sequential uuid1>': `Listing.ID`

const (
	ListingPrefix        string = "rg-listing-"
	ListingPrefixCreated string = "rg-created-"
)

type ListingState string

const (
	StateApplied     ListingState = "applied"
	StateWhitelisted ListingState = "whitelisted"
	StateChallenged  ListingState = "challenged"
)

type Listing struct {
	ID                string
	Data              string
	Owner             string
	Deposit           common.Amount
	ApplicationExpiry int64 // unix seconds
	Whitelisted       bool
	ChallengeID       uint64 // 0 while unchallenged

	createdKey string
}

// MakeListingID derives the listing id from the listed content.
func MakeListingID(data string) string {
	return common.MustMakeObjectHashString(data)
}

func (l *Listing) String() string {
	return string(common.MustJSONMarshal(l))
}

func (l *Listing) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(l)
	return
}

// State derives the listing's lifecycle state. An open challenge shadows
// everything else.
func (l *Listing) State() ListingState {
	if l.ChallengeID != 0 {
		return StateChallenged
	}
	if l.Whitelisted {
		return StateWhitelisted
	}
	return StateApplied
}

func (l *Listing) Save(st *storage.LevelDBBackend) (err error) {
	key := GetListingKey(l.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, l)
	}

	if err = st.New(key, l); err != nil {
		return
	}
	l.createdKey = GetListingCreatedKey(common.GetUniqueIDFromUUID())
	return st.New(l.createdKey, l.ID)
}

func GetListingKey(id string) string {
	return fmt.Sprintf("%s%s", ListingPrefix, id)
}

func GetListingCreatedKey(created string) string {
	return fmt.Sprintf("%s%s", ListingPrefixCreated, created)
}

func ExistsListing(st *storage.LevelDBBackend, id string) (bool, error) {
	return st.Has(GetListingKey(id))
}

func GetListing(st *storage.LevelDBBackend, id string) (l *Listing, err error) {
	if err = st.Get(GetListingKey(id), &l); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.NoSuchListing
		}
		return
	}

	return
}

func RemoveListing(st *storage.LevelDBBackend, id string) error {
	return st.Remove(GetListingKey(id))
}

func GetListingIDsByCreated(st *storage.LevelDBBackend, options storage.ListOptions) (func() (string, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(ListingPrefixCreated, options)

	return (func() (string, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return "", false
			}

			var id string
			common.MustUnmarshalJSON(item.Value, &id)
			return id, hasNext
		}), (func() {
			closeFunc()
		})
}

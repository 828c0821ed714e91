package token

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/storage"
)

// Account is the token ledger's balance model. the storage should support,
//  * find by `Address`:
// 	- key: `Address`: value: `Account`
//  * get list by created order:
//
// models
//  * 'address'
// 	- 'ta-address-<Account.Address>': `Account`
//  * 'created'
// 	- 'ta-created-<sequential uuid1>': `Account.Address`

const AccountPrefixAddress string = "ta-address-"
const AccountPrefixCreated string = "ta-created-"

type Account struct {
	Address string
	Balance common.Amount
}

func NewAccount(address string, balance common.Amount) *Account {
	return &Account{
		Address: address,
		Balance: balance,
	}
}

func (a *Account) String() string {
	return string(common.MustJSONMarshal(a))
}

func (a *Account) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(a)
	return
}

func (a *Account) Deserialize(encoded []byte) (err error) {
	return common.DecodeJSONValue(encoded, a)
}

func (a *Account) Save(st *storage.LevelDBBackend) (err error) {
	key := GetAccountKey(a.Address)

	var exists bool
	exists, err = st.Has(key)
	if err != nil {
		return
	}

	if exists {
		err = st.Set(key, a)
	} else {
		if err = st.New(key, a); err != nil {
			return
		}
		createdKey := GetAccountCreatedKey(common.GetUniqueIDFromUUID())
		err = st.New(createdKey, a.Address)
	}

	return
}

func (a *Account) GetBalance() common.Amount {
	return a.Balance
}

// Add fund to an account
//
// If the amount would make the account overflow over the full supply of
// tokens, an `error` is returned.
func (a *Account) Deposit(fund common.Amount) error {
	if val, err := a.GetBalance().Add(fund); err != nil {
		return err
	} else {
		a.Balance = val
	}
	return nil
}

// Remove fund from an account
//
// If the amount would make the account go negative, an `error` is returned.
func (a *Account) Withdraw(fund common.Amount) error {
	if val, err := a.GetBalance().Sub(fund); err != nil {
		return err
	} else {
		a.Balance = val
	}
	return nil
}

func GetAccountKey(address string) string {
	return fmt.Sprintf("%s%s", AccountPrefixAddress, address)
}

func GetAccountCreatedKey(created string) string {
	return fmt.Sprintf("%s%s", AccountPrefixCreated, created)
}

func ExistsAccount(st *storage.LevelDBBackend, address string) (exists bool, err error) {
	return st.Has(GetAccountKey(address))
}

func GetAccount(st *storage.LevelDBBackend, address string) (a *Account, err error) {
	if err = st.Get(GetAccountKey(address), &a); err != nil {
		return
	}

	return
}

func GetAccountAddressesByCreated(st *storage.LevelDBBackend, options storage.ListOptions) (func() (string, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(AccountPrefixCreated, options)

	return (func() (string, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return "", false
			}

			var address string
			common.MustUnmarshalJSON(item.Value, &address)
			return address, hasNext
		}), (func() {
			closeFunc()
		})
}

//
// ERC20-style token ledger the registry escrows deposits against.
//
// The ledger only knows about balances and allowances; everything about
// listings, polls and rewards lives above it. Transfers that would leave any
// balance negative fail and change nothing.
//
package token

import (
	"fmt"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

const AllowancePrefix string = "ta-allowance-"

// Well-known escrow addresses held by the protocol components.
const (
	EscrowRegistry      = "escrow.registry"
	EscrowVoting        = "escrow.voting"
	EscrowParameterizer = "escrow.parameterizer"
)

type Allowance struct {
	Owner   string
	Spender string
	Amount  common.Amount
}

func GetAllowanceKey(owner, spender string) string {
	return fmt.Sprintf("%s%s-%s", AllowancePrefix, owner, spender)
}

// CreateAccount creates a new account with the given balance; it fails with
// `AccountAlreadyExists` when the address is already known.
func CreateAccount(st *storage.LevelDBBackend, address string, balance common.Amount) (*Account, error) {
	if exists, err := ExistsAccount(st, address); err != nil {
		return nil, err
	} else if exists {
		return nil, errors.AccountAlreadyExists
	}

	account := NewAccount(address, balance)
	if err := account.Save(st); err != nil {
		return nil, err
	}

	return account, nil
}

func BalanceOf(st *storage.LevelDBBackend, address string) (common.Amount, error) {
	exists, err := ExistsAccount(st, address)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	account, err := GetAccount(st, address)
	if err != nil {
		return 0, err
	}

	return account.GetBalance(), nil
}

// Transfer moves `amount` from `from` to `to`. The receiving account is
// created on first credit; the sending account must exist and cover the
// amount.
func Transfer(st *storage.LevelDBBackend, from, to string, amount common.Amount) error {
	exists, err := ExistsAccount(st, from)
	if err != nil {
		return err
	}
	if !exists {
		return errors.AccountDoesNotExist
	}

	sender, err := GetAccount(st, from)
	if err != nil {
		return err
	}
	if err := sender.Withdraw(amount); err != nil {
		return err
	}

	// self-transfer is a no-op once the balance check passed
	if from == to {
		return nil
	}

	receiver, err := getOrCreateAccount(st, to)
	if err != nil {
		return err
	}
	if err := receiver.Deposit(amount); err != nil {
		return err
	}

	if err := sender.Save(st); err != nil {
		return err
	}
	return receiver.Save(st)
}

// Approve lets `spender` later pull up to `amount` out of `owner`'s balance
// with `TransferFrom`. A second call replaces the previous allowance.
func Approve(st *storage.LevelDBBackend, owner, spender string, amount common.Amount) error {
	key := GetAllowanceKey(owner, spender)
	allowance := Allowance{Owner: owner, Spender: spender, Amount: amount}

	exists, err := st.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return st.Set(key, allowance)
	}
	return st.New(key, allowance)
}

func GetAllowance(st *storage.LevelDBBackend, owner, spender string) (common.Amount, error) {
	key := GetAllowanceKey(owner, spender)

	exists, err := st.Has(key)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var allowance Allowance
	if err := st.Get(key, &allowance); err != nil {
		return 0, err
	}

	return allowance.Amount, nil
}

// TransferFrom moves `amount` from `from` to `to` on behalf of `spender`,
// consuming the allowance `from` granted to `spender`.
func TransferFrom(st *storage.LevelDBBackend, spender, from, to string, amount common.Amount) error {
	allowed, err := GetAllowance(st, from, spender)
	if err != nil {
		return err
	}
	if allowed < amount {
		return errors.InsufficientAllowance
	}

	if err := Transfer(st, from, to, amount); err != nil {
		return err
	}

	remaining := allowed.MustSub(amount)
	return st.Set(GetAllowanceKey(from, spender), Allowance{Owner: from, Spender: spender, Amount: remaining})
}

func getOrCreateAccount(st *storage.LevelDBBackend, address string) (*Account, error) {
	exists, err := ExistsAccount(st, address)
	if err != nil {
		return nil, err
	}
	if !exists {
		return NewAccount(address, 0), nil
	}

	return GetAccount(st, address)
}

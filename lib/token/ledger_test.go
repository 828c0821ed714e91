package token

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/keypair"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

func TestCreateAccount(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	kp := keypair.Random()

	account, err := CreateAccount(st, kp.Address(), common.Amount(1000))
	require.NoError(t, err)
	require.Equal(t, common.Amount(1000), account.GetBalance())

	_, err = CreateAccount(st, kp.Address(), common.Amount(1000))
	require.Equal(t, errors.AccountAlreadyExists, err)

	balance, err := BalanceOf(st, kp.Address())
	require.NoError(t, err)
	require.Equal(t, common.Amount(1000), balance)
}

func TestBalanceOfUnknownAccountIsZero(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	balance, err := BalanceOf(st, keypair.Random().Address())
	require.NoError(t, err)
	require.Equal(t, common.Amount(0), balance)
}

func TestTransfer(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	sender := keypair.Random()
	receiver := keypair.Random()

	_, err := CreateAccount(st, sender.Address(), common.Amount(1000))
	require.NoError(t, err)

	require.NoError(t, Transfer(st, sender.Address(), receiver.Address(), common.Amount(400)))

	senderBalance, _ := BalanceOf(st, sender.Address())
	receiverBalance, _ := BalanceOf(st, receiver.Address())
	require.Equal(t, common.Amount(600), senderBalance)
	require.Equal(t, common.Amount(400), receiverBalance)
}

func TestTransferInsufficientBalance(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	sender := keypair.Random()
	receiver := keypair.Random()

	_, err := CreateAccount(st, sender.Address(), common.Amount(100))
	require.NoError(t, err)

	err = Transfer(st, sender.Address(), receiver.Address(), common.Amount(200))
	require.Equal(t, errors.AccountBalanceUnderZero, err)

	// nothing moved
	senderBalance, _ := BalanceOf(st, sender.Address())
	receiverBalance, _ := BalanceOf(st, receiver.Address())
	require.Equal(t, common.Amount(100), senderBalance)
	require.Equal(t, common.Amount(0), receiverBalance)
}

func TestTransferFromUnknownAccount(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	err := Transfer(st, keypair.Random().Address(), keypair.Random().Address(), common.Amount(1))
	require.Equal(t, errors.AccountDoesNotExist, err)
}

func TestApproveAndTransferFrom(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	owner := keypair.Random()
	spender := keypair.Random()
	receiver := keypair.Random()

	_, err := CreateAccount(st, owner.Address(), common.Amount(1000))
	require.NoError(t, err)

	require.NoError(t, Approve(st, owner.Address(), spender.Address(), common.Amount(500)))

	allowed, err := GetAllowance(st, owner.Address(), spender.Address())
	require.NoError(t, err)
	require.Equal(t, common.Amount(500), allowed)

	require.NoError(t, TransferFrom(st, spender.Address(), owner.Address(), receiver.Address(), common.Amount(300)))

	ownerBalance, _ := BalanceOf(st, owner.Address())
	receiverBalance, _ := BalanceOf(st, receiver.Address())
	require.Equal(t, common.Amount(700), ownerBalance)
	require.Equal(t, common.Amount(300), receiverBalance)

	allowed, _ = GetAllowance(st, owner.Address(), spender.Address())
	require.Equal(t, common.Amount(200), allowed)

	// the remaining allowance no longer covers this
	err = TransferFrom(st, spender.Address(), owner.Address(), receiver.Address(), common.Amount(300))
	require.Equal(t, errors.InsufficientAllowance, err)
}

func TestAccountsByCreatedOrder(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	var createdOrder []string
	for i := 0; i < 10; i++ {
		kp := keypair.Random()
		_, err := CreateAccount(st, kp.Address(), common.Amount(100))
		require.NoError(t, err)
		createdOrder = append(createdOrder, kp.Address())
	}

	var saved []string
	iterFunc, closeFunc := GetAccountAddressesByCreated(st, nil)
	for {
		address, hasNext := iterFunc()
		if !hasNext {
			break
		}
		saved = append(saved, address)
	}
	closeFunc()

	require.Equal(t, createdOrder, saved)
}

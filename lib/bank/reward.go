package bank

import (
	"math/big"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
)

// Reward splits for a resolved challenge. The pot is the loser's stake; the
// winner takes `dispensationPct` percent of it on top of their own returned
// stake, and the remainder is shared by the winning voters pro rata.

// WinnerReward is the winner's cut of the loser's stake.
func WinnerReward(stake common.Amount, dispensationPct uint64) common.Amount {
	r := new(big.Int).Mul(big.NewInt(0).SetUint64(uint64(stake)), big.NewInt(0).SetUint64(dispensationPct))
	r.Div(r, big.NewInt(100))
	return common.Amount(r.Uint64())
}

// VoterPool is what is left of the loser's stake for the winning voters.
func VoterPool(stake common.Amount, dispensationPct uint64) common.Amount {
	return stake.MustSub(WinnerReward(stake, dispensationPct))
}

// VoterReward is one voter's pro-rata slice of the pool. The product is taken
// before the division so small weights do not round to zero early.
func VoterReward(pool, tokens, totalWinning common.Amount) (common.Amount, error) {
	if totalWinning == 0 {
		return 0, errors.DivisionByZero
	}

	r := new(big.Int).Mul(big.NewInt(0).SetUint64(uint64(pool)), big.NewInt(0).SetUint64(uint64(tokens)))
	r.Div(r, big.NewInt(0).SetUint64(uint64(totalWinning)))
	return common.Amount(r.Uint64()), nil
}

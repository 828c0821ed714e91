package httputils

import (
	"net/http"

	"github.com/curatenet/tcr/lib/errors"
)

var ErrorsToStatus = map[uint]int{
	errors.NoSuchListing.Code:        http.StatusNotFound,
	errors.ListingAlreadyExists.Code: http.StatusConflict,
	errors.InvalidPhase.Code:         http.StatusBadRequest,
	errors.AlreadyResolved.Code:      http.StatusConflict,
	errors.NoSuchChallenge.Code:      http.StatusNotFound,
	errors.ChallengeInProgress.Code:  http.StatusConflict,
	errors.NotListingOwner.Code:      http.StatusForbidden,
	errors.DepositTooLow.Code:        http.StatusBadRequest,

	errors.NoSuchPoll.Code:           http.StatusNotFound,
	errors.InsufficientRights.Code:   http.StatusBadRequest,
	errors.InsufficientUnlocked.Code: http.StatusBadRequest,
	errors.SaltMismatch.Code:         http.StatusBadRequest,
	errors.DidNotReveal.Code:         http.StatusBadRequest,
	errors.AlreadyRevealed.Code:      http.StatusConflict,
	errors.NoCommitment.Code:         http.StatusNotFound,
	errors.InvalidVoteOption.Code:    http.StatusBadRequest,

	errors.AlreadyClaimed.Code: http.StatusConflict,
	errors.DivisionByZero.Code: http.StatusBadRequest,
	errors.NotWinningVote.Code: http.StatusBadRequest,

	errors.NoSuchParameter.Code:       http.StatusNotFound,
	errors.InvalidParameterValue.Code: http.StatusBadRequest,
	errors.ProposalAlreadyExists.Code: http.StatusConflict,
	errors.NoSuchProposal.Code:        http.StatusNotFound,

	errors.AccountAlreadyExists.Code:    http.StatusConflict,
	errors.AccountDoesNotExist.Code:     http.StatusNotFound,
	errors.AccountBalanceUnderZero.Code: http.StatusBadRequest,
	errors.MaximumBalanceReached.Code:   http.StatusBadRequest,
	errors.InsufficientAllowance.Code:   http.StatusBadRequest,

	errors.StorageRecordDoesNotExist.Code:  http.StatusNotFound,
	errors.StorageRecordAlreadyExists.Code: http.StatusConflict,

	errors.BadRequestParameter.Code:     http.StatusBadRequest,
	errors.PageQueryLimitMaxExceed.Code: http.StatusBadRequest,
	errors.TooManyRequests.Code:         http.StatusTooManyRequests,
}

// StatusCode maps a coded protocol error to its HTTP status; anything else is
// an internal error.
func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, ok := ErrorsToStatus[e.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// One observable per resource; registry, poll engine and parameterizer
// trigger these after their storage transaction has committed, so a
// subscriber never sees an event for state that was rolled back.
var ListingObserver = observable.New()
var ChallengeObserver = observable.New()
var PollObserver = observable.New()
var RewardObserver = observable.New()
var ParamObserver = observable.New()

const (
	// ListingObserver
	EventListingApplied     = "applied"
	EventListingWhitelisted = "whitelisted"
	EventListingRemoved     = "removed"
	EventListingDeposit     = "deposit"
	EventListingWithdrawal  = "withdrawal"
	EventListingExited      = "exited"

	// ChallengeObserver
	EventChallengeStarted  = "challenge-started"
	EventChallengeResolved = "challenge-resolved"

	// PollObserver
	EventPollStarted   = "poll-started"
	EventVoteCommitted = "vote-committed"
	EventVoteRevealed  = "vote-revealed"
	EventTokensRescued = "tokens-rescued"

	// RewardObserver
	EventRewardClaimed = "reward-claimed"

	// ParamObserver
	EventProposalMade       = "proposal-made"
	EventProposalChallenged = "proposal-challenged"
	EventProposalProcessed  = "proposal-processed"

	ConditionAll = "*"
)

package resource

const (
	APIVersionV1 = "/v1"

	URLListings          = "/v1/listings"
	URLListing           = "/v1/listings/{id}"
	URLListingChallenge  = "/v1/listings/{id}/challenge"
	URLListingDeposit    = "/v1/listings/{id}/deposit"
	URLListingWithdraw   = "/v1/listings/{id}/withdraw"
	URLListingExit       = "/v1/listings/{id}/exit"
	URLListingStatus     = "/v1/listings/{id}/status"
	URLChallenge         = "/v1/challenges/{id}"
	URLChallengeClaim    = "/v1/challenges/{id}/claim"
	URLChallengeReward   = "/v1/challenges/{id}/reward"
	URLPoll              = "/v1/polls/{id}"
	URLPollCommit        = "/v1/polls/{id}/commit"
	URLPollReveal        = "/v1/polls/{id}/reveal"
	URLPollRescue        = "/v1/polls/{id}/rescue"
	URLRights            = "/v1/rights/{address}"
	URLRightsRequest     = "/v1/rights"
	URLRightsWithdraw    = "/v1/rights/{address}/withdraw"
	URLAccount           = "/v1/accounts/{address}"
	URLParams            = "/v1/params"
	URLProposals         = "/v1/proposals"
	URLProposal          = "/v1/proposals/{id}"
	URLProposalChallenge = "/v1/proposals/{id}/challenge"
	URLProposalProcess   = "/v1/proposals/{id}/process"
	URLProposalClaim     = "/v1/proposals/claims/{id}"
)

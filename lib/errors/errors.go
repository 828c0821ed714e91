package errors

// Every failure surfaced by the protocol is one of these coded errors; an
// operation that returns a non-nil error leaves storage untouched.
var (
	// protocol: listing / challenge lifecycle
	NoSuchListing        = NewError(100, "listing does not exist")
	ListingAlreadyExists = NewError(101, "listing was already applied or whitelisted")
	InvalidPhase         = NewError(102, "operation attempted outside its valid time window or lifecycle state")
	AlreadyResolved      = NewError(103, "challenge is already resolved")
	NoSuchChallenge      = NewError(104, "challenge does not exist or is not resolved")
	ChallengeInProgress  = NewError(105, "listing has an unresolved challenge")
	NotListingOwner      = NewError(106, "sender does not own the listing")
	DepositTooLow        = NewError(107, "deposit is under the minimum deposit")

	// protocol: poll engine / voting rights
	NoSuchPoll           = NewError(110, "poll does not exist")
	InsufficientRights   = NewError(111, "committed tokens exceed the voter's unlocked voting rights")
	InsufficientUnlocked = NewError(112, "withdrawal exceeds the voter's unlocked voting rights")
	SaltMismatch         = NewError(113, "revealed (choice, salt) pair does not match the committed hash")
	DidNotReveal         = NewError(114, "voter did not reveal a vote in this poll")
	AlreadyRevealed      = NewError(115, "vote was already revealed")
	NoCommitment         = NewError(116, "voter has no commitment in this poll")
	InvalidVoteOption    = NewError(117, "vote option must be 0 or 1")

	// protocol: rewards
	AlreadyClaimed = NewError(120, "reward for this challenge was already claimed by this voter")
	DivisionByZero = NewError(121, "no winning tokens to divide the reward pool by")
	NotWinningVote = NewError(122, "revealed vote was not on the winning side")

	// protocol: parameterizer
	NoSuchParameter       = NewError(130, "unknown parameter name")
	InvalidParameterValue = NewError(131, "parameter value is out of range")
	ProposalAlreadyExists = NewError(132, "an identical reparameterization is already proposed")
	NoSuchProposal        = NewError(133, "proposal does not exist")

	// token ledger
	AccountAlreadyExists    = NewError(140, "account already exists")
	AccountDoesNotExist     = NewError(141, "account does not exist")
	AccountBalanceUnderZero = NewError(142, "account balance would go under zero")
	MaximumBalanceReached   = NewError(143, "monetary amount would exceed the total supply")
	InsufficientAllowance   = NewError(144, "transfer exceeds the approved allowance")

	// storage
	StorageCoreError           = NewError(150, "storage error")
	StorageRecordDoesNotExist  = NewError(151, "record does not exist in storage")
	StorageRecordAlreadyExists = NewError(152, "record already exists in storage")
	NotImplemented             = NewError(153, "not implemented")

	// api
	BadRequestParameter     = NewError(160, "found invalid request parameter")
	PageQueryLimitMaxExceed = NewError(161, "limit over maximum limit")
	TooManyRequests         = NewError(162, "too many requests; reduce your request rate")
)

package client

import (
	"encoding/json"
	"fmt"
)

// Problem is the RFC 7807 body the server returns for any failed request.
type Problem struct {
	Type     string                     `json:"type"`
	Title    string                     `json:"title"`
	Status   int                        `json:"status"`
	Detail   string                     `json:"detail,omitempty"`
	Instance string                     `json:"instance,omitempty"`
	Code     uint                       `json:"code,omitempty"`
	Extras   map[string]json.RawMessage `json:"extras,omitempty"`
}

type Error struct {
	Problem Problem
}

func (e Error) Error() string {
	return fmt.Sprintf("%s (status=%d code=%d)", e.Problem.Title, e.Problem.Status, e.Problem.Code)
}

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Listing struct {
	Links struct {
		Self      Link `json:"self"`
		Owner     Link `json:"owner"`
		Challenge Link `json:"challenge"`
	} `json:"_links"`

	ID                string `json:"id"`
	Data              string `json:"data"`
	Owner             string `json:"owner"`
	Deposit           uint64 `json:"deposit"`
	State             string `json:"state"`
	ApplicationExpiry int64  `json:"application_expiry"`
	Whitelisted       bool   `json:"whitelisted"`
	ChallengeID       uint64 `json:"challenge_id"`
}

type ListingsPage struct {
	Links struct {
		Self Link `json:"self"`
		Next Link `json:"next"`
		Prev Link `json:"prev"`
	} `json:"_links"`
	Embedded struct {
		Records []Listing `json:"records"`
	} `json:"_embedded"`
}

type Challenge struct {
	Links struct {
		Self    Link `json:"self"`
		Listing Link `json:"listing"`
		Poll    Link `json:"poll"`
	} `json:"_links"`

	ID           uint64 `json:"id"`
	ListingID    string `json:"listing_id"`
	Challenger   string `json:"challenger"`
	Stake        uint64 `json:"stake"`
	RewardPool   uint64 `json:"reward_pool"`
	Resolved     bool   `json:"resolved"`
	ListingWon   bool   `json:"listing_won"`
	TotalWinning uint64 `json:"total_winning"`
}

type Poll struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`

	ID            uint64 `json:"id"`
	CommitEndDate int64  `json:"commit_end_date"`
	RevealEndDate int64  `json:"reveal_end_date"`
	VotesFor      uint64 `json:"votes_for"`
	VotesAgainst  uint64 `json:"votes_against"`
}

type Rights struct {
	Links struct {
		Self    Link `json:"self"`
		Account Link `json:"account"`
	} `json:"_links"`

	Voter     string `json:"voter"`
	Deposited uint64 `json:"deposited"`
	Locked    uint64 `json:"locked"`
	Unlocked  uint64 `json:"unlocked"`
}

type Account struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`

	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type Proposal struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`

	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       uint64 `json:"value"`
	Proposer    string `json:"proposer"`
	Deposit     uint64 `json:"deposit"`
	AppExpiry   int64  `json:"app_expiry"`
	ChallengeID uint64 `json:"challenge_id"`
}

// Params carries the current parameter table keyed by parameter name.
type Params map[string]uint64

type Reward struct {
	Reward uint64 `json:"reward"`
}

type Status struct {
	Status string `json:"status"`
}

type ProposalChallenge struct {
	ChallengeID uint64 `json:"challenge_id"`
	ProposalID  string `json:"proposal_id"`
	Stake       uint64 `json:"stake"`
}

type NodeInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

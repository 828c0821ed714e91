package client

import (
	"encoding/json"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/curatenet/tcr/lib/common"
)

const (
	UrlPrefixForAPIV1 = "/v1"

	UrlListings          = "/listings"
	UrlListing           = "/listings/{id}"
	UrlListingChallenge  = "/listings/{id}/challenge"
	UrlListingDeposit    = "/listings/{id}/deposit"
	UrlListingWithdraw   = "/listings/{id}/withdraw"
	UrlListingExit       = "/listings/{id}/exit"
	UrlListingStatus     = "/listings/{id}/status"
	UrlChallenge         = "/challenges/{id}"
	UrlChallengeClaim    = "/challenges/{id}/claim"
	UrlChallengeReward   = "/challenges/{id}/reward"
	UrlPoll              = "/polls/{id}"
	UrlPollCommit        = "/polls/{id}/commit"
	UrlPollReveal        = "/polls/{id}/reveal"
	UrlPollRescue        = "/polls/{id}/rescue"
	UrlRights            = "/rights/{address}"
	UrlRightsRequest     = "/rights"
	UrlRightsWithdraw    = "/rights/{address}/withdraw"
	UrlAccount           = "/accounts/{address}"
	UrlParams            = "/params"
	UrlProposals         = "/proposals"
	UrlProposal          = "/proposals/{id}"
	UrlProposalChallenge = "/proposals/{id}/challenge"
	UrlProposalProcess   = "/proposals/{id}/process"
	UrlProposalClaim     = "/proposals/claims/{id}"
)

type QueryKey string

func (qk QueryKey) String() string {
	return string(qk)
}

const (
	QueryLimit   QueryKey = "limit"
	QueryReverse QueryKey = "reverse"
	QueryCursor  QueryKey = "cursor"
	QueryVoter   QueryKey = "voter"
	QuerySalt    QueryKey = "salt"
)

type Q struct {
	Key   QueryKey
	Value string
}

type Queries []Q

func (qs Queries) toQueryString() string {
	if len(qs) == 0 {
		return ""
	}
	urlValues := neturl.Values{}
	for _, q := range qs {
		switch q.Key {
		case QueryLimit, QueryReverse, QueryCursor, QueryVoter, QuerySalt:
			urlValues.Add(q.Key.String(), q.Value)
		}
	}
	return "?" + urlValues.Encode()
}

type Client struct {
	URL string

	HTTP *common.HTTP2Client
}

func NewClient(url string) *Client {
	httpClient, err := common.NewHTTP2Client(0, 0, true)
	if err != nil {
		panic(err)
	}
	return &Client{
		URL:  url,
		HTTP: httpClient,
	}
}

func (c *Client) toResponse(resp *http.Response, response interface{}) (err error) {
	defer resp.Body.Close()
	decoder := json.NewDecoder(resp.Body)

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		var p Problem
		if err = decoder.Decode(&p); err != nil {
			return
		}
		return Error{Problem: p}
	}

	if response == nil {
		return
	}
	return decoder.Decode(&response)
}

func (c *Client) Get(path string, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Get(url, headers)
}

func (c *Client) Post(path string, body []byte, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Post(url, body, headers)
}

func jsonHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	return headers
}

func (c *Client) get(url string, response interface{}) (err error) {
	resp, err := c.Get(url, jsonHeaders())
	if err != nil {
		return
	}
	return c.toResponse(resp, response)
}

func (c *Client) post(url string, body interface{}, response interface{}) (err error) {
	var b []byte
	if body != nil {
		if b, err = json.Marshal(body); err != nil {
			return
		}
	}
	resp, err := c.Post(url, b, jsonHeaders())
	if err != nil {
		return
	}
	return c.toResponse(resp, response)
}

func idPath(pattern string, id string) string {
	return strings.Replace(pattern, "{id}", id, -1)
}

func idPathUint64(pattern string, id uint64) string {
	return idPath(pattern, strconv.FormatUint(id, 10))
}

func (c *Client) LoadNodeInfo() (info NodeInfo, err error) {
	resp, err := c.HTTP.Get(c.URL+"/", jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &info)
	return
}

func (c *Client) LoadListing(id string) (listing Listing, err error) {
	err = c.get(idPath(UrlListing, id), &listing)
	return
}

func (c *Client) LoadListings(queries ...Q) (page ListingsPage, err error) {
	err = c.get(UrlListings+Queries(queries).toQueryString(), &page)
	return
}

func (c *Client) Apply(owner, data string, deposit common.Amount) (listing Listing, err error) {
	body := map[string]interface{}{"owner": owner, "data": data, "deposit": deposit}
	err = c.post(UrlListings, body, &listing)
	return
}

func (c *Client) Deposit(owner, id string, amount common.Amount) (listing Listing, err error) {
	body := map[string]interface{}{"owner": owner, "amount": amount}
	err = c.post(idPath(UrlListingDeposit, id), body, &listing)
	return
}

func (c *Client) Withdraw(owner, id string, amount common.Amount) (listing Listing, err error) {
	body := map[string]interface{}{"owner": owner, "amount": amount}
	err = c.post(idPath(UrlListingWithdraw, id), body, &listing)
	return
}

func (c *Client) Exit(owner, id string) (err error) {
	return c.post(idPath(UrlListingExit, id), map[string]interface{}{"owner": owner}, nil)
}

// StartChallenge returns a zero-ID challenge with no error when the listing
// was touched and removed instead of being challenged.
func (c *Client) StartChallenge(challenger, id string) (challenge Challenge, err error) {
	body := map[string]interface{}{"challenger": challenger}

	var raw json.RawMessage
	if err = c.post(idPath(UrlListingChallenge, id), body, &raw); err != nil {
		return
	}

	var status Status
	if json.Unmarshal(raw, &status) == nil && status.Status == "removed" {
		return
	}
	err = json.Unmarshal(raw, &challenge)
	return
}

// UpdateStatus reports State "removed" when resolving took the listing off
// the registry.
func (c *Client) UpdateStatus(id string) (listing Listing, err error) {
	var raw json.RawMessage
	if err = c.post(idPath(UrlListingStatus, id), nil, &raw); err != nil {
		return
	}

	var status Status
	if json.Unmarshal(raw, &status) == nil && status.Status == "removed" {
		listing.ID = id
		listing.State = status.Status
		return
	}
	err = json.Unmarshal(raw, &listing)
	return
}

func (c *Client) LoadChallenge(id uint64) (challenge Challenge, err error) {
	err = c.get(idPathUint64(UrlChallenge, id), &challenge)
	return
}

func (c *Client) ClaimReward(voter string, challengeID uint64, salt uint64) (reward Reward, err error) {
	body := map[string]interface{}{"voter": voter, "salt": salt}
	err = c.post(idPathUint64(UrlChallengeClaim, challengeID), body, &reward)
	return
}

func (c *Client) VoterReward(voter string, challengeID uint64, salt uint64) (reward Reward, err error) {
	queries := Queries{
		{Key: QueryVoter, Value: voter},
		{Key: QuerySalt, Value: strconv.FormatUint(salt, 10)},
	}
	err = c.get(idPathUint64(UrlChallengeReward, challengeID)+queries.toQueryString(), &reward)
	return
}

func (c *Client) LoadPoll(id uint64) (p Poll, err error) {
	err = c.get(idPathUint64(UrlPoll, id), &p)
	return
}

func (c *Client) CommitVote(voter string, pollID uint64, secretHash string, tokens common.Amount, prevPollID uint64) (err error) {
	body := map[string]interface{}{
		"voter":        voter,
		"secret_hash":  secretHash,
		"tokens":       tokens,
		"prev_poll_id": prevPollID,
	}
	return c.post(idPathUint64(UrlPollCommit, pollID), body, nil)
}

func (c *Client) RevealVote(voter string, pollID uint64, choice uint64, salt uint64) (err error) {
	body := map[string]interface{}{"voter": voter, "choice": choice, "salt": salt}
	return c.post(idPathUint64(UrlPollReveal, pollID), body, nil)
}

func (c *Client) RescueTokens(voter string, pollID uint64) (err error) {
	return c.post(idPathUint64(UrlPollRescue, pollID), map[string]interface{}{"voter": voter}, nil)
}

func (c *Client) RequestVotingRights(voter string, amount common.Amount) (rights Rights, err error) {
	body := map[string]interface{}{"voter": voter, "amount": amount}
	err = c.post(UrlRightsRequest, body, &rights)
	return
}

func (c *Client) WithdrawVotingRights(voter string, amount common.Amount) (rights Rights, err error) {
	body := map[string]interface{}{"amount": amount}
	err = c.post(strings.Replace(UrlRightsWithdraw, "{address}", voter, -1), body, &rights)
	return
}

func (c *Client) LoadVotingRights(voter string) (rights Rights, err error) {
	err = c.get(strings.Replace(UrlRights, "{address}", voter, -1), &rights)
	return
}

func (c *Client) LoadAccount(address string) (account Account, err error) {
	err = c.get(strings.Replace(UrlAccount, "{address}", address, -1), &account)
	return
}

func (c *Client) LoadParams() (p Params, err error) {
	var raw map[string]json.RawMessage
	if err = c.get(UrlParams, &raw); err != nil {
		return
	}

	p = Params{}
	for name, value := range raw {
		var v uint64
		if json.Unmarshal(value, &v) == nil {
			p[name] = v
		}
	}
	return
}

func (c *Client) Propose(proposer, name string, value uint64) (proposal Proposal, err error) {
	body := map[string]interface{}{"proposer": proposer, "name": name, "value": value}
	err = c.post(UrlProposals, body, &proposal)
	return
}

func (c *Client) LoadProposal(id string) (proposal Proposal, err error) {
	err = c.get(idPath(UrlProposal, id), &proposal)
	return
}

func (c *Client) ChallengeProposal(challenger, id string) (challenge ProposalChallenge, err error) {
	body := map[string]interface{}{"challenger": challenger}
	err = c.post(idPath(UrlProposalChallenge, id), body, &challenge)
	return
}

func (c *Client) ProcessProposal(id string) (err error) {
	return c.post(idPath(UrlProposalProcess, id), nil, nil)
}

func (c *Client) ClaimProposalReward(voter string, challengeID uint64, salt uint64) (reward Reward, err error) {
	body := map[string]interface{}{"voter": voter, "salt": salt}
	err = c.post(idPathUint64(UrlProposalClaim, challengeID), body, &reward)
	return
}

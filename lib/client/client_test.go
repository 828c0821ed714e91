package client

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/curatenet/tcr/lib/api"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/keypair"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"
)

type clientFixture struct {
	st     *storage.LevelDBBackend
	clock  *common.ManualClock
	server *httptest.Server
	client *Client
}

func newClientFixture(t *testing.T) (*clientFixture, func()) {
	st := storage.NewTestStorage()
	require.NoError(t, params.Init(st, nil))

	clock := common.NewManualClock(time.Unix(1500000000, 0))
	handler := api.NewHandler(st, clock)
	router := handler.Router(common.NewRateLimitRule(common.RateLimitAPI), nil)

	server := httptest.NewServer(router)
	c := NewClient(server.URL)
	return &clientFixture{st: st, clock: clock, server: server, client: c}, func() {
		server.Close()
		st.Close()
		c.HTTP.Close()
	}
}

func (f *clientFixture) fundedAccount(t *testing.T, balance common.Amount) string {
	kp := keypair.Random()
	_, err := token.CreateAccount(f.st, kp.Address(), balance)
	require.NoError(t, err)
	return kp.Address()
}

func TestClientNodeInfo(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	info, err := f.client.LoadNodeInfo()
	require.NoError(t, err)
	require.NotEmpty(t, info.Version)
}

func TestClientListingLifecycle(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)

	listing, err := f.client.Apply(owner, "example.org", 200)
	require.NoError(t, err)
	require.Equal(t, "applied", listing.State)
	require.Equal(t, owner, listing.Owner)

	got, err := f.client.LoadListing(listing.ID)
	require.NoError(t, err)
	require.Equal(t, "example.org", got.Data)

	f.clock.Advance(time.Duration(params.DefaultParams[params.ApplyStageLength])*time.Second + time.Second)
	updated, err := f.client.UpdateStatus(listing.ID)
	require.NoError(t, err)
	require.Equal(t, "whitelisted", updated.State)

	account, err := f.client.LoadAccount(owner)
	require.NoError(t, err)
	require.EqualValues(t, 800, account.Balance)
}

func TestClientProblemBecomesError(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	_, err := f.client.LoadListing("deadbeef")
	require.Error(t, err)

	ce, ok := err.(Error)
	require.True(t, ok)
	require.Equal(t, 404, ce.Problem.Status)
	require.EqualValues(t, errors.NoSuchListing.Code, ce.Problem.Code)
}

func TestClientVotingRights(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	voter := f.fundedAccount(t, 1000)

	rights, err := f.client.RequestVotingRights(voter, 600)
	require.NoError(t, err)
	require.EqualValues(t, 600, rights.Deposited)

	rights, err = f.client.WithdrawVotingRights(voter, 100)
	require.NoError(t, err)
	require.EqualValues(t, 500, rights.Deposited)
	require.EqualValues(t, 500, rights.Unlocked)
}

func TestClientChallengeFlow(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	owner := f.fundedAccount(t, 1000)
	challenger := f.fundedAccount(t, 1000)
	voter := f.fundedAccount(t, 1000)

	listing, err := f.client.Apply(owner, "example.org", 100)
	require.NoError(t, err)

	challenge, err := f.client.StartChallenge(challenger, listing.ID)
	require.NoError(t, err)
	require.NotZero(t, challenge.ID)
	require.Equal(t, listing.ID, challenge.ListingID)

	_, err = f.client.RequestVotingRights(voter, 500)
	require.NoError(t, err)

	salt := uint64(42)
	hash := poll.CommitHash(poll.VoteAgainst, salt)
	require.NoError(t, f.client.CommitVote(voter, challenge.ID, hash, 500, 0))

	f.clock.Advance(time.Duration(params.DefaultParams[params.CommitStageLength])*time.Second + time.Second)
	require.NoError(t, f.client.RevealVote(voter, challenge.ID, 0, salt))

	f.clock.Advance(time.Duration(params.DefaultParams[params.RevealStageLength])*time.Second + time.Second)
	updated, err := f.client.UpdateStatus(listing.ID)
	require.NoError(t, err)
	require.Equal(t, "removed", updated.State)

	_, err = f.client.LoadListing(listing.ID)
	ce, ok := err.(Error)
	require.True(t, ok)
	require.EqualValues(t, errors.NoSuchListing.Code, ce.Problem.Code)

	resolved, err := f.client.LoadChallenge(challenge.ID)
	require.NoError(t, err)
	require.True(t, resolved.Resolved)
	require.False(t, resolved.ListingWon)

	reward, err := f.client.VoterReward(voter, challenge.ID, salt)
	require.NoError(t, err)
	claimed, err := f.client.ClaimReward(voter, challenge.ID, salt)
	require.NoError(t, err)
	require.Equal(t, reward.Reward, claimed.Reward)
}

func TestClientParamsAndProposal(t *testing.T) {
	f, cleanup := newClientFixture(t)
	defer cleanup()

	p, err := f.client.LoadParams()
	require.NoError(t, err)
	require.EqualValues(t, params.DefaultParams[params.MinDeposit], p[params.MinDeposit])

	proposer := f.fundedAccount(t, 1000)
	proposal, err := f.client.Propose(proposer, params.MinDeposit, 300)
	require.NoError(t, err)
	require.Equal(t, params.MinDeposit, proposal.Name)

	f.clock.Advance(time.Duration(params.DefaultParams[params.PApplyStageLength])*time.Second + time.Second)
	require.NoError(t, f.client.ProcessProposal(proposal.ID))

	p, err = f.client.LoadParams()
	require.NoError(t, err)
	require.EqualValues(t, 300, p[params.MinDeposit])
}

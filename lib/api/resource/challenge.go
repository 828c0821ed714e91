package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/registry"
)

type Challenge struct {
	c *registry.Challenge
}

func NewChallenge(c *registry.Challenge) *Challenge {
	return &Challenge{c: c}
}

func (r Challenge) GetMap() hal.Entry {
	return hal.Entry{
		"id":            r.c.ID,
		"listing_id":    r.c.ListingID,
		"challenger":    r.c.Challenger,
		"stake":         r.c.Stake,
		"reward_pool":   r.c.RewardPool,
		"resolved":      r.c.Resolved,
		"listing_won":   r.c.ListingWon,
		"total_winning": r.c.TotalWinning,
	}
}

func (r Challenge) Resource() *hal.Resource {
	h := hal.NewResource(r, r.LinkSelf())
	h.AddLink("listing", hal.NewLink(strings.Replace(URLListing, "{id}", r.c.ListingID, -1)))
	h.AddLink("poll", hal.NewLink(strings.Replace(URLPoll, "{id}", strconv.FormatUint(r.c.ID, 10), -1)))
	return h
}

func (r Challenge) LinkSelf() string {
	return strings.Replace(URLChallenge, "{id}", strconv.FormatUint(r.c.ID, 10), -1)
}

func (r Challenge) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

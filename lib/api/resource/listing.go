package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/registry"
)

type Listing struct {
	l *registry.Listing
}

func NewListing(l *registry.Listing) *Listing {
	return &Listing{l: l}
}

func (r Listing) GetMap() hal.Entry {
	return hal.Entry{
		"id":                 r.l.ID,
		"data":               r.l.Data,
		"owner":              r.l.Owner,
		"deposit":            r.l.Deposit,
		"state":              string(r.l.State()),
		"application_expiry": r.l.ApplicationExpiry,
		"whitelisted":        r.l.Whitelisted,
		"challenge_id":       r.l.ChallengeID,
	}
}

func (r Listing) Resource() *hal.Resource {
	h := hal.NewResource(r, r.LinkSelf())
	if r.l.ChallengeID != 0 {
		challengeURL := strings.Replace(URLChallenge, "{id}", strconv.FormatUint(r.l.ChallengeID, 10), -1)
		h.AddLink("challenge", hal.NewLink(challengeURL))
	}
	h.AddLink("owner", hal.NewLink(strings.Replace(URLAccount, "{address}", r.l.Owner, -1)))
	return h
}

func (r Listing) LinkSelf() string {
	return strings.Replace(URLListing, "{id}", r.l.ID, -1)
}

func (r Listing) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

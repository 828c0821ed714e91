package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/poll"
)

type Poll struct {
	p *poll.Poll
}

func NewPoll(p *poll.Poll) *Poll {
	return &Poll{p: p}
}

func (r Poll) GetMap() hal.Entry {
	return hal.Entry{
		"id":              r.p.ID,
		"commit_end_date": r.p.CommitEndDate,
		"reveal_end_date": r.p.RevealEndDate,
		"votes_for":       r.p.VotesFor,
		"votes_against":   r.p.VotesAgainst,
	}
}

func (r Poll) Resource() *hal.Resource {
	return hal.NewResource(r, r.LinkSelf())
}

func (r Poll) LinkSelf() string {
	return strings.Replace(URLPoll, "{id}", strconv.FormatUint(r.p.ID, 10), -1)
}

func (r Poll) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

type Rights struct {
	r *poll.Rights
}

func NewRights(rights *poll.Rights) *Rights {
	return &Rights{r: rights}
}

func (r Rights) GetMap() hal.Entry {
	return hal.Entry{
		"voter":     r.r.Voter,
		"deposited": r.r.Deposited,
		"locked":    r.r.Locked,
		"unlocked":  r.r.Unlocked(),
	}
}

func (r Rights) Resource() *hal.Resource {
	h := hal.NewResource(r, r.LinkSelf())
	h.AddLink("account", hal.NewLink(strings.Replace(URLAccount, "{address}", r.r.Voter, -1)))
	return h
}

func (r Rights) LinkSelf() string {
	return strings.Replace(URLRights, "{address}", r.r.Voter, -1)
}

func (r Rights) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

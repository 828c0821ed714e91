package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/params"
)

type Proposal struct {
	p *params.Proposal
}

func NewProposal(p *params.Proposal) *Proposal {
	return &Proposal{p: p}
}

func (r Proposal) GetMap() hal.Entry {
	return hal.Entry{
		"id":           r.p.ID,
		"name":         r.p.Name,
		"value":        r.p.Value,
		"proposer":     r.p.Proposer,
		"deposit":      r.p.Deposit,
		"app_expiry":   r.p.AppExpiry,
		"challenge_id": r.p.ChallengeID,
	}
}

func (r Proposal) Resource() *hal.Resource {
	return hal.NewResource(r, r.LinkSelf())
}

func (r Proposal) LinkSelf() string {
	return strings.Replace(URLProposal, "{id}", r.p.ID, -1)
}

func (r Proposal) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

type Params struct {
	values map[string]uint64
}

func NewParams(values map[string]uint64) *Params {
	return &Params{values: values}
}

func (r Params) GetMap() hal.Entry {
	entry := hal.Entry{}
	for name, value := range r.values {
		entry[name] = value
	}
	return entry
}

func (r Params) Resource() *hal.Resource {
	return hal.NewResource(r, r.LinkSelf())
}

func (r Params) LinkSelf() string {
	return URLParams
}

func (r Params) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

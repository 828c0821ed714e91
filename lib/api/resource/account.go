package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/token"
)

type Account struct {
	a *token.Account
}

func NewAccount(a *token.Account) *Account {
	return &Account{a: a}
}

func (r Account) GetMap() hal.Entry {
	return hal.Entry{
		"address": r.a.Address,
		"balance": r.a.Balance,
	}
}

func (r Account) Resource() *hal.Resource {
	h := hal.NewResource(r, r.LinkSelf())
	h.AddLink("rights", hal.NewLink(strings.Replace(URLRights, "{address}", r.a.Address, -1)))
	return h
}

func (r Account) LinkSelf() string {
	return strings.Replace(URLAccount, "{address}", r.a.Address, -1)
}

func (r Account) MarshalJSON() ([]byte, error) {
	return common.JSONMarshalWithoutEscapeHTML(r.Resource().GetMap())
}

package api

import (
	"net/http"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/token"
)

func (h *Handler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	address := pathVar(r, "address")

	exists, err := token.ExistsAccount(h.st, address)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if !exists {
		httputils.WriteJSONError(w, errors.AccountDoesNotExist)
		return
	}

	a, err := token.GetAccount(h.st, address)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewAccount(a))
}

package api

import (
	"net/http"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/registry"
)

func (h *Handler) GetListingsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var (
		resources []resource.Resource
		cursor    []byte
	)
	iterFunc, closeFunc := h.st.GetIterator(registry.ListingPrefixCreated, p.ListOptions())
	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}
		var id string
		common.MustUnmarshalJSON(item.Value, &id)

		l, err := registry.GetListing(h.st, id)
		if err != nil {
			// removed listings leave their created-index entry behind
			if err == errors.NoSuchListing {
				continue
			}
			closeFunc()
			httputils.WriteJSONError(w, err)
			return
		}
		resources = append(resources, resource.NewListing(l))
		cursor = item.Key
	}
	closeFunc()

	httputils.WriteJSON(w, http.StatusOK, p.ResourceList(resources, cursor))
}

func (h *Handler) GetListingHandler(w http.ResponseWriter, r *http.Request) {
	l, err := registry.GetListing(h.st, pathVar(r, "id"))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewListing(l))
}

func (h *Handler) PostListingHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Owner   string        `json:"owner"`
		Data    string        `json:"data"`
		Deposit common.Amount `json:"deposit"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	l, err := h.registry.Apply(body.Owner, body.Data, body.Deposit)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, resource.NewListing(l))
}

func (h *Handler) PostListingDepositHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Owner  string        `json:"owner"`
		Amount common.Amount `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	l, err := h.registry.Deposit(body.Owner, pathVar(r, "id"), body.Amount)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewListing(l))
}

func (h *Handler) PostListingWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Owner  string        `json:"owner"`
		Amount common.Amount `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	l, err := h.registry.Withdraw(body.Owner, pathVar(r, "id"), body.Amount)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewListing(l))
}

func (h *Handler) PostListingExitHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Owner string `json:"owner"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := h.registry.Exit(body.Owner, pathVar(r, "id")); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "exited"})
}

func (h *Handler) PostListingChallengeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Challenger string `json:"challenger"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	c, err := h.registry.StartChallenge(body.Challenger, pathVar(r, "id"))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if c == nil {
		// touched and removed
		httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, resource.NewChallenge(c))
}

func (h *Handler) PostListingStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	if err := h.registry.UpdateStatus(id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	l, err := registry.GetListing(h.st, id)
	if err != nil {
		// resolving against the listing removed it
		if err == errors.NoSuchListing {
			httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
			return
		}
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewListing(l))
}

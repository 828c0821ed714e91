package api

import (
	"net/http"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/poll"
)

func (h *Handler) GetPollHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	p, err := poll.GetPoll(h.st, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewPoll(p))
}

func (h *Handler) PostPollCommitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body struct {
		Voter      string        `json:"voter"`
		SecretHash string        `json:"secret_hash"`
		Tokens     common.Amount `json:"tokens"`
		PrevPollID uint64        `json:"prev_poll_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := h.engine.CommitVote(body.Voter, id, body.SecretHash, body.Tokens, body.PrevPollID); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "committed"})
}

func (h *Handler) PostPollRevealHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body struct {
		Voter  string `json:"voter"`
		Choice uint64 `json:"choice"`
		Salt   uint64 `json:"salt"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := h.engine.RevealVote(body.Voter, id, poll.VoteOption(body.Choice), body.Salt); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "revealed"})
}

func (h *Handler) PostPollRescueHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body struct {
		Voter string `json:"voter"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := h.engine.RescueTokens(body.Voter, id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "rescued"})
}

func (h *Handler) PostRightsHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Voter  string        `json:"voter"`
		Amount common.Amount `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	rights, err := h.engine.RequestVotingRights(body.Voter, body.Amount)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRights(rights))
}

func (h *Handler) GetRightsHandler(w http.ResponseWriter, r *http.Request) {
	rights, err := h.engine.Rights(pathVar(r, "address"))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRights(rights))
}

func (h *Handler) PostRightsWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount common.Amount `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	rights, err := h.engine.WithdrawVotingRights(pathVar(r, "address"), body.Amount)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRights(rights))
}

package api

import (
	"net/http"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/params"
)

func (h *Handler) GetParamsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := params.GetAll(h.st)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewParams(all))
}

func (h *Handler) PostProposalHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Proposer string `json:"proposer"`
		Name     string `json:"name"`
		Value    uint64 `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	p, err := h.pz.Propose(body.Proposer, body.Name, body.Value)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, resource.NewProposal(p))
}

func (h *Handler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	p, err := params.GetProposal(h.st, pathVar(r, "id"))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewProposal(p))
}

func (h *Handler) PostProposalChallengeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Challenger string `json:"challenger"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	c, err := h.pz.ChallengeProposal(body.Challenger, pathVar(r, "id"))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"challenge_id": c.ID,
		"proposal_id":  c.ProposalID,
		"stake":        c.Stake,
	})
}

func (h *Handler) PostProposalProcessHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.pz.ProcessProposal(pathVar(r, "id")); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *Handler) PostProposalClaimHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body struct {
		Voter string `json:"voter"`
		Salt  uint64 `json:"salt"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	reward, err := h.pz.ClaimReward(body.Voter, id, body.Salt)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]interface{}{"reward": reward})
}

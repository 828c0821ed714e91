package api

import (
	"net/http"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/registry"
)

func (h *Handler) GetChallengeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	c, err := registry.GetChallenge(h.st, id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewChallenge(c))
}

func (h *Handler) PostChallengeClaimHandler(w http.ResponseWriter, r *http.Request) {
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

	reward, err := h.registry.ClaimReward(body.Voter, id, body.Salt)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]interface{}{"reward": reward})
}

func (h *Handler) GetChallengeRewardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathVarUint64(r, "id")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	voter := r.URL.Query().Get("voter")
	salt, err := queryUint64(r, "salt")
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	reward, err := h.registry.VoterReward(voter, id, salt)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]interface{}{"reward": reward})
}

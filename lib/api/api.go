package api

import (
	"net/http"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curatenet/tcr/lib/api/resource"
	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/network/httpcache"
	"github.com/curatenet/tcr/lib/network/httputils"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/registry"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/version"
)

var log logging.Logger = logging.New("module", "api")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// Handler serves the registry over HTTP; one handler per node, sharing the
// node's storage with the protocol engines.
type Handler struct {
	st       *storage.LevelDBBackend
	registry *registry.Registry
	engine   *poll.Engine
	pz       *params.Parameterizer
}

func NewHandler(st *storage.LevelDBBackend, clock common.Clock) *Handler {
	return &Handler{
		st:       st,
		registry: registry.NewRegistry(st, clock),
		engine:   poll.NewEngine(st, clock),
		pz:       params.NewParameterizer(st, clock),
	}
}

// Router wires every endpoint. The cache client only wraps safe reads; nil
// disables caching.
func (h *Handler) Router(rule common.RateLimitRule, cacheClient *httpcache.Client) *mux.Router {
	router := mux.NewRouter()

	router.Use(RecoverMiddleware(log))
	router.Use(RateLimitMiddleware(log, rule))
	router.Use(MetricsMiddleware())

	cached := func(handlerFunc http.HandlerFunc) http.HandlerFunc {
		if cacheClient == nil {
			return handlerFunc
		}
		return cacheClient.WrapHandlerFunc(handlerFunc)
	}

	router.HandleFunc("/", h.GetNodeInfoHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc(resource.URLListings, cached(h.GetListingsHandler)).Methods("GET")
	router.HandleFunc(resource.URLListings, h.PostListingHandler).Methods("POST")
	router.HandleFunc(resource.URLListing, h.GetListingHandler).Methods("GET")
	router.HandleFunc(resource.URLListingDeposit, h.PostListingDepositHandler).Methods("POST")
	router.HandleFunc(resource.URLListingWithdraw, h.PostListingWithdrawHandler).Methods("POST")
	router.HandleFunc(resource.URLListingExit, h.PostListingExitHandler).Methods("POST")
	router.HandleFunc(resource.URLListingChallenge, h.PostListingChallengeHandler).Methods("POST")
	router.HandleFunc(resource.URLListingStatus, h.PostListingStatusHandler).Methods("POST")

	router.HandleFunc(resource.URLChallenge, h.GetChallengeHandler).Methods("GET")
	router.HandleFunc(resource.URLChallengeClaim, h.PostChallengeClaimHandler).Methods("POST")
	router.HandleFunc(resource.URLChallengeReward, h.GetChallengeRewardHandler).Methods("GET")

	router.HandleFunc(resource.URLPoll, h.GetPollHandler).Methods("GET")
	router.HandleFunc(resource.URLPollCommit, h.PostPollCommitHandler).Methods("POST")
	router.HandleFunc(resource.URLPollReveal, h.PostPollRevealHandler).Methods("POST")
	router.HandleFunc(resource.URLPollRescue, h.PostPollRescueHandler).Methods("POST")

	router.HandleFunc(resource.URLRightsRequest, h.PostRightsHandler).Methods("POST")
	router.HandleFunc(resource.URLRights, h.GetRightsHandler).Methods("GET")
	router.HandleFunc(resource.URLRightsWithdraw, h.PostRightsWithdrawHandler).Methods("POST")

	router.HandleFunc(resource.URLAccount, h.GetAccountHandler).Methods("GET")

	router.HandleFunc(resource.URLParams, cached(h.GetParamsHandler)).Methods("GET")
	router.HandleFunc(resource.URLProposals, h.PostProposalHandler).Methods("POST")
	router.HandleFunc(resource.URLProposal, h.GetProposalHandler).Methods("GET")
	router.HandleFunc(resource.URLProposalChallenge, h.PostProposalChallengeHandler).Methods("POST")
	router.HandleFunc(resource.URLProposalProcess, h.PostProposalProcessHandler).Methods("POST")
	router.HandleFunc(resource.URLProposalClaim, h.PostProposalClaimHandler).Methods("POST")

	return router
}

// NodeInfo is the root document: version and build info.
type NodeInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func (h *Handler) GetNodeInfoHandler(w http.ResponseWriter, r *http.Request) {
	info := NodeInfo{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
	}
	httputils.WriteJSON(w, http.StatusOK, info)
}

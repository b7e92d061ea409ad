package bridgerpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	log "github.com/sirupsen/logrus"
)

// methodAliases maps the published snake_case method names onto the exported
// handler names the codec resolves. CamelCase names keep working as-is.
var methodAliases = map[string]string{
	"bridge.verify_deposit":       "bridge.VerifyDeposit",
	"bridge.request_withdrawal":   "bridge.RequestWithdrawal",
	"bridge.challenge_withdrawal": "bridge.ChallengeWithdrawal",
	"bridge.resolve_challenge":    "bridge.ResolveChallenge",
	"bridge.pending_withdrawals":  "bridge.PendingWithdrawals",
	"bridge.active_challenges":    "bridge.ActiveChallenges",
	"bridge.relayer_quorum":       "bridge.RelayerQuorum",
	"bridge.relayer_status":       "bridge.RelayerStatus",
	"bridge.deposit_history":      "bridge.DepositHistory",
	"bridge.slash_log":            "bridge.SlashLog",
	"bridge.bond_relayer":         "bridge.BondRelayer",
	"bridge.claim_rewards":        "bridge.ClaimRewards",
	"bridge.submit_settlement":    "bridge.SubmitSettlement",
	"bridge.reward_claims":        "bridge.RewardClaims",
	"bridge.settlement_log":       "bridge.SettlementLog",
	"bridge.configure_asset":      "bridge.ConfigureAsset",
	"bridge.set_incentive_params": "bridge.SetIncentiveParams",
}

// Server is the JSON-RPC 2.0 front of the bridge daemon.
type Server struct {
	httpServer *http.Server
}

func NewServer(port uint32, svc *Service) (*Server, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(svc, "bridge"); err != nil {
		return nil, fmt.Errorf("failed to register bridge rpc service: %s", err)
	}

	router := mux.NewRouter()
	router.Handle("/rpc", aliasMethods(rpcServer)).Methods(http.MethodPost)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
	}, nil
}

func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("rpc server exited")
		}
	}()
	log.Infof("rpc server listening on %s", s.httpServer.Addr)
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:all
	s.httpServer.Shutdown(ctx)
}

// aliasMethods rewrites the request's method field through methodAliases
// before handing it to the codec.
func aliasMethods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		// nolint:all
		r.Body.Close()

		var request map[string]json.RawMessage
		if err := json.Unmarshal(body, &request); err == nil {
			var method string
			if err := json.Unmarshal(request["method"], &method); err == nil {
				if alias, ok := methodAliases[strings.TrimSpace(method)]; ok {
					raw, _ := json.Marshal(alias)
					request["method"] = raw
					body, _ = json.Marshal(request)
				}
			}
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

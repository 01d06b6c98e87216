package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each dependency to {"status": "ok"|"error"}.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type eventPath struct {
	EventID string `path:"eventID"`
}

type teamPath struct {
	EventID string `path:"eventID"`
	TeamID  string `path:"teamID"`
}

type submitRequest struct {
	ActionRequest
	APIKey            string `header:"X-Api-Key"`
	IdempotencyHeader string `header:"Idempotency-Key"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Bingo API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Records player actions and tracks team progress on bingo boards.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/actions
	postAction, _ := r.NewOperationContext(http.MethodPost, "/api/actions")
	postAction.SetSummary("Submit action")
	postAction.SetDescription("Records an action and applies it to every active event the player is in. " +
		"A repeated idempotency key returns the original action id with status 200.")
	postAction.AddReqStructure(submitRequest{})
	postAction.AddRespStructure(ActionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postAction.AddRespStructure(ActionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAction)

	// GET /api/events/active
	getActive, _ := r.NewOperationContext(http.MethodGet, "/api/events/active")
	getActive.SetSummary("Active events")
	getActive.SetDescription("Returns the events whose window contains the current time.")
	getActive.AddRespStructure([]EventResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getActive)

	// GET /api/events/{eventID}/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/events/{eventID}/leaderboard")
	getLeaderboard.SetSummary("Leaderboard")
	getLeaderboard.SetDescription("Ranks the teams of an event by points. Tied teams share a rank.")
	getLeaderboard.AddReqStructure(eventPath{})
	getLeaderboard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getLeaderboard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLeaderboard)

	// GET /api/events/{eventID}/teams/{teamID}/board
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/events/{eventID}/teams/{teamID}/board")
	getBoard.SetSummary("Team board")
	getBoard.SetDescription("Returns the team's medal level on every tile of the event.")
	getBoard.AddReqStructure(teamPath{})
	getBoard.AddRespStructure(BoardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getBoard)

	// GET /api/events/{eventID}/teams/{teamID}/proofs
	getProofs, _ := r.NewOperationContext(http.MethodGet, "/api/events/{eventID}/teams/{teamID}/proofs")
	getProofs.SetSummary("Team proofs")
	getProofs.SetDescription("Lists the actions kept as evidence for the team's progress, newest first.")
	getProofs.AddReqStructure(teamPath{})
	getProofs.AddRespStructure([]ProofResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getProofs.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getProofs)

	// GET /api/events/{eventID}/teams/{teamID}/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/events/{eventID}/teams/{teamID}/stream")
	getStream.SetSummary("Team notification stream")
	getStream.SetDescription("Server-Sent Events stream of the team's task and bingo notifications.")
	getStream.AddReqStructure(teamPath{})
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// GET /ws/events/{eventID}
	getFeed, _ := r.NewOperationContext(http.MethodGet, "/ws/events/{eventID}")
	getFeed.SetSummary("Event notification feed")
	getFeed.SetDescription("Upgrades to a WebSocket that receives every notification of the event as a JSON text message.")
	getFeed.AddReqStructure(eventPath{})
	getFeed.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getFeed)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/sqlgate/sqlgate/core/gateway/executor"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	"github.com/sqlgate/sqlgate/core/infrastructure/transport/http/dto"
	gwcontext "github.com/sqlgate/sqlgate/core/shared/context"
	sharederrors "github.com/sqlgate/sqlgate/core/shared/errors"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps any failure to the uniform error envelope. AppErrors
// carry their own HTTP status; anything else is an internal fault.
func writeError(w http.ResponseWriter, err error) {
	var appErr *sharederrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, dto.ErrorResponse{Success: false, Error: appErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Success: false, Error: err.Error()})
}

// handleHealth reports gateway liveness, no auth required
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// handleServers enumerates the profile catalog with live connectivity.
// An empty catalog is a successful response with an empty list, not an
// error.
func handleServers(exec *executor.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := exec.ServerStatuses(r.Context())

		servers := make([]dto.ServerInfo, len(statuses))
		for i, s := range statuses {
			servers[i] = dto.ServerInfo{
				Name:      s.Profile.Name,
				Host:      s.Profile.Host,
				Port:      s.Profile.Port,
				Connected: s.Connected,
				Healthy:   s.Healthy,
				ReadOnly:  s.Profile.ReadOnly,
			}
		}

		var defaultServer *string
		if name := exec.DefaultServerName(); name != "" {
			defaultServer = &name
		}

		writeJSON(w, http.StatusOK, dto.ServersResponse{
			Success: true,
			Data: dto.ServersData{
				Servers:       servers,
				DefaultServer: defaultServer,
			},
		})
	}
}

// handleDatabases lists databases on the profile named by the optional
// 'server' query parameter (default profile when omitted)
func handleDatabases(exec *executor.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databases, err := exec.ListDatabases(r.Context(), r.URL.Query().Get("server"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.DatabasesResponse{
			Success: true,
			Data:    dto.DatabasesData{Databases: databases},
		})
	}
}

// handleQuery runs one statement through the gateway pipeline.
// Failures that never reach a backend map to 4xx; backend execution
// failures are reported in-band with a 200 envelope and execution_ms.
func handleQuery(exec *executor.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.New("handler")

		var req dto.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, sharederrors.NewAppError(sharederrors.ErrCodeInvalidInput, "invalid JSON body", err))
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, sharederrors.NewAppError(sharederrors.ErrCodeInvalidInput, "'sql' is required", err))
			return
		}

		// Propagate chi's request ID so executor logs correlate with
		// access logs
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = gwcontext.WithRequestID(ctx, reqID)
		}

		result, err := exec.ExecuteQuery(ctx, executor.QueryRequest{
			SQL:      req.SQL,
			Server:   req.Server,
			Database: req.Database,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		resp := dto.QueryResponse{
			Success:     result.Success,
			Error:       result.Error,
			ExecutionMs: &result.ExecutionMs,
		}
		if result.Success {
			resp.Data = &dto.QueryData{
				Recordset: result.Recordset,
				RowCount:  result.RowCount,
			}
		} else {
			log.Debugf("Backend execution failed: %s", result.Error)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

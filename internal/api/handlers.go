package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/saldoapp/account-ledger/internal/ledger"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/service"
)

// AuditReader reads pages of the movement audit trail.
type AuditReader interface {
	GetAuditByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*models.MovementAudit, error)
}

// Handler is for handling api requests
type Handler struct {
	accountService  *service.AccountService
	movementService *service.MovementService
	audit           AuditReader
}

func NewHandler(accountService *service.AccountService, movementService *service.MovementService, audit AuditReader) *Handler {
	return &Handler{
		accountService:  accountService,
		movementService: movementService,
		audit:           audit,
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// for error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLedgerError maps the closed ledger error set to HTTP statuses.
func respondLedgerError(w http.ResponseWriter, err error) {
	var invalidOp *ledger.InvalidOperationError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNotAllowed):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrLockNotAcquired):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalidOp):
		respondError(w, http.StatusUnprocessableEntity, invalidOp.Reason)
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), businessID, req.Name)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, accountResponse(account))
}

// handles account retrieval
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	account, err := h.accountService.GetAccount(r.Context(), vars["id"], vars["businessId"])
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, accountResponse(account))
}

// handles account listing for a business
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	accounts, err := h.accountService.ListAccounts(r.Context(), businessID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, accountResponse(account))
	}

	respondJSON(w, http.StatusOK, response)
}

// handles balance retrieval
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	balance, err := h.accountService.GetBalance(r.Context(), vars["id"], vars["businessId"])
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.BalanceResponse{
		AccountID: vars["id"],
		Balance:   balance,
	})
}

// handles movement creation
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	movement, err := h.movementService.CreateMovement(r.Context(), ledger.CreateMovementInput{
		AccountID:   vars["id"],
		BusinessID:  vars["businessId"],
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, movementResponse(movement))
}

// handles movement list retrieval
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// the account must exist and belong to the business
	if _, err := h.accountService.GetAccount(r.Context(), vars["id"], vars["businessId"]); err != nil {
		respondLedgerError(w, err)
		return
	}

	limit, offset := parsePagination(r)
	movements, err := h.movementService.ListMovements(r.Context(), vars["id"], limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := make([]models.MovementResponse, 0, len(movements))
	for _, mv := range movements {
		response = append(response, movementResponse(mv))
	}

	respondJSON(w, http.StatusOK, response)
}

// handles withdrawal dry-run validation
func (h *Handler) ValidateWithdrawal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if _, err := h.accountService.GetAccount(r.Context(), vars["id"], vars["businessId"]); err != nil {
		respondLedgerError(w, err)
		return
	}

	var req models.WithdrawalValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.movementService.ValidateWithdrawal(r.Context(), vars["id"], req.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, models.WithdrawalValidationResponse{
		IsValid:                  result.Valid,
		CurrentBalance:           result.CurrentBalance,
		AvailableBalance:         result.AvailableBalance,
		DailyWithdrawalRemaining: result.DailyWithdrawalRemaining,
		Reason:                   result.Reason,
	})
}

// handles audit trail retrieval
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if _, err := h.accountService.GetAccount(r.Context(), vars["id"], vars["businessId"]); err != nil {
		respondLedgerError(w, err)
		return
	}

	limit, offset := parsePagination(r)
	records, err := h.audit.GetAuditByAccountID(r.Context(), vars["id"], limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// handles health check
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func accountResponse(account *models.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:         account.ID,
		BusinessID: account.BusinessID,
		Name:       account.Name,
		CreatedAt:  account.CreatedAt,
	}
}

func movementResponse(mv *models.AccountMovement) models.MovementResponse {
	return models.MovementResponse{
		ID:          mv.ID,
		AccountID:   mv.AccountID,
		Type:        mv.Type,
		Amount:      mv.Amount,
		Description: mv.Description,
		CreatedAt:   mv.CreatedAt,
	}
}

// parsePagination reads limit/offset query parameters with the same
// defaults for every listing endpoint.
func parsePagination(r *http.Request) (limit, offset int) {
	// default limit is set to 10
	limit = 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	// default offset is set to 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsedOffset, err := strconv.Atoi(offsetStr)
		if err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	return limit, offset
}

// sets up the API routes
func SetupRoutes(r *mux.Router, accountService *service.AccountService, movementService *service.MovementService, audit AuditReader, metricsHandler http.Handler) {
	h := NewHandler(accountService, movementService, audit)

	// Health check (check if API is working)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// Account routes
	r.HandleFunc("/businesses/{businessId}/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/businesses/{businessId}/accounts", h.ListAccounts).Methods("GET")
	r.HandleFunc("/businesses/{businessId}/accounts/{id}", h.GetAccount).Methods("GET")
	r.HandleFunc("/businesses/{businessId}/accounts/{id}/balance", h.GetBalance).Methods("GET")

	// Movement routes
	r.HandleFunc("/businesses/{businessId}/accounts/{id}/movements", h.CreateMovement).Methods("POST")
	r.HandleFunc("/businesses/{businessId}/accounts/{id}/movements", h.ListMovements).Methods("GET")
	r.HandleFunc("/businesses/{businessId}/accounts/{id}/withdrawal-validations", h.ValidateWithdrawal).Methods("POST")
	r.HandleFunc("/businesses/{businessId}/accounts/{id}/audit", h.ListAudit).Methods("GET")
}

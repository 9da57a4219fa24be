package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/handlers/render"
	"github.com/akosachev/ledgerpay/internal/handlers/userctx"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type transactionResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	BankAccountID   *uuid.UUID `json:"bank_account_id,omitempty"`
	Type            string     `json:"type"`
	Amount          float64    `json:"amount"`
	Status          string     `json:"status"`
	Description     string     `json:"description,omitempty"`
	ReferenceNumber string     `json:"reference_number"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	AccountName     *string    `json:"account_name,omitempty"`
	AccountNumber   *string    `json:"account_number,omitempty"`
	BankName        *string    `json:"bank_name,omitempty"`
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	amount, _ := t.Amount.Float64()
	return transactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		BankAccountID:   t.BankAccountID,
		Type:            t.Type,
		Amount:          amount,
		Status:          t.Status,
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
		AccountName:     t.AccountName,
		AccountNumber:   t.AccountNumber,
		BankName:        t.BankName,
	}
}

type createTransactionRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	BankAccountID uuid.UUID       `json:"bankAccountId" validate:"required"`
	Description   string          `json:"description" validate:"max=500"`
}

func handleCreateWithdrawal(ledgerService ledgerService, l logger.Logger) http.Handler {
	type response struct {
		Message     string              `json:"message"`
		Transaction transactionResponse `json:"transaction"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[createTransactionRequest](w, r)
		if err != nil {
			return
		}

		created, err := ledgerService.CreateWithdrawal(r.Context(), user.ID, data.BankAccountID, data.Amount, data.Description)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{
				Message:     "Withdrawal transaction created successfully",
				Transaction: toTransactionResponse(created),
			}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrBankAccountNotFound):
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
		default:
			l.Error("Failed to create withdrawal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCreateDeposit(ledgerService ledgerService, l logger.Logger) http.Handler {
	type response struct {
		Message     string              `json:"message"`
		Transaction transactionResponse `json:"transaction"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[createTransactionRequest](w, r)
		if err != nil {
			return
		}

		created, err := ledgerService.CreateDeposit(r.Context(), user.ID, data.BankAccountID, data.Amount, data.Description)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{
				Message:     "Deposit transaction created successfully",
				Transaction: toTransactionResponse(created),
			}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrBankAccountNotFound):
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
		default:
			l.Error("Failed to create deposit", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCancelTransaction(ledgerService ledgerService, l logger.Logger) http.Handler {
	type response struct {
		Message     string              `json:"message"`
		Transaction transactionResponse `json:"transaction"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
			return
		}

		cancelled, err := ledgerService.Cancel(r.Context(), id, &user)

		switch {
		case err == nil:
			render.JSON(w, response{
				Message:     "Transaction cancelled successfully",
				Transaction: toTransactionResponse(cancelled),
			})
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidStateTransition):
			render.ServiceError(w, "Transaction cannot be cancelled", http.StatusBadRequest)
		default:
			l.Error("Failed to cancel transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSetTransactionStatus(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		Status string `json:"status" validate:"required,oneof=processing completed cancelled failed"`
	}
	type response struct {
		Message     string              `json:"message"`
		Transaction transactionResponse `json:"transaction"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := ledgerService.SetStatus(r.Context(), id, data.Status)

		switch {
		case err == nil:
			render.JSON(w, response{
				Message:     "Transaction status updated successfully",
				Transaction: toTransactionResponse(updated),
			})
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidStateTransition):
			render.ServiceError(w, "Status transition not allowed", http.StatusBadRequest)
		default:
			l.Error("Failed to update transaction status", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(ledgerService ledgerService, l logger.Logger) http.Handler {
	type pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"totalPages"`
	}
	type response struct {
		Transactions []transactionResponse `json:"transactions"`
		Pagination   pagination            `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		query := r.URL.Query()

		page := queryInt(query.Get("page"), defaultPage)
		if page < 1 {
			page = defaultPage
		}
		limit := queryInt(query.Get("limit"), defaultLimit)
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		filter := models.TransactionFilter{
			Limit:  limit,
			Offset: (page - 1) * limit,
		}

		if t := query.Get("type"); t != "" {
			if !models.ValidTransactionType(t) {
				render.ServiceError(w, "Unknown transaction type", http.StatusBadRequest)
				return
			}
			filter.Type = t
		}

		if s := query.Get("status"); s != "" {
			if !models.ValidTransactionStatus(s) {
				render.ServiceError(w, "Unknown transaction status", http.StatusBadRequest)
				return
			}
			filter.Status = s
		}

		// Admins may narrow the listing to one user
		if u := query.Get("user_id"); u != "" && user.IsAdmin() {
			userID, err := uuid.Parse(u)
			if err != nil {
				render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
				return
			}
			filter.UserID = &userID
		}

		transactions, total, err := ledgerService.List(r.Context(), &user, filter)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			items = append(items, toTransactionResponse(t))
		}

		render.JSON(w, response{
			Transactions: items,
			Pagination: pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: (total + int64(limit) - 1) / int64(limit),
			},
		})
	})
}

func handleGetTransaction(ledgerService ledgerService, l logger.Logger) http.Handler {
	type response struct {
		Transaction transactionResponse `json:"transaction"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
			return
		}

		tr, err := ledgerService.Get(r.Context(), id, &user)

		switch {
		case err == nil:
			render.JSON(w, response{Transaction: toTransactionResponse(tr)})
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		default:
			l.Error("Failed to get transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// queryInt parses a query param, falling back to def on empty or junk input
func queryInt(value string, def int) int {
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}

	return parsed
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/handlers/render"
	"github.com/akosachev/ledgerpay/internal/handlers/userctx"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

type bankAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Username      string    `json:"username,omitempty"`
}

func toBankAccountResponse(a models.BankAccount) bankAccountResponse {
	return bankAccountResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountName:   a.AccountName,
		AccountNumber: a.AccountNumber,
		BankName:      a.BankName,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		Username:      a.Username,
	}
}

func handleCreateBankAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		AccountName   string `json:"accountName" validate:"required,min=1,max=255"`
		AccountNumber string `json:"accountNumber" validate:"required,min=1,max=50"`
		BankName      string `json:"bankName" validate:"required,min=1,max=255"`
	}
	type response struct {
		Message string              `json:"message"`
		Account bankAccountResponse `json:"account"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		account, err := accountService.Create(r.Context(), user.ID, data.AccountName, data.AccountNumber, data.BankName)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{
				Message: "Bank account added successfully",
				Account: toBankAccountResponse(account),
			}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrBankAccountExists):
			render.ServiceError(w, "Bank account already exists", http.StatusConflict)
		default:
			l.Error("Failed to create bank account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListBankAccounts(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		Accounts []bankAccountResponse `json:"accounts"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accounts, err := accountService.List(r.Context(), &user)
		if err != nil {
			l.Error("Failed to list bank accounts", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]bankAccountResponse, 0, len(accounts))
		for _, a := range accounts {
			items = append(items, toBankAccountResponse(a))
		}

		render.JSON(w, response{Accounts: items})
	})
}

func handleGetBankAccount(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		Account bankAccountResponse `json:"account"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
			return
		}

		account, err := accountService.Get(r.Context(), id, &user)

		switch {
		case err == nil:
			render.JSON(w, response{Account: toBankAccountResponse(account)})
		case errors.Is(err, apperrors.ErrBankAccountNotFound):
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
		default:
			l.Error("Failed to get bank account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateBankAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		AccountName   *string `json:"accountName" validate:"omitempty,min=1,max=255"`
		AccountNumber *string `json:"accountNumber" validate:"omitempty,min=1,max=50"`
		BankName      *string `json:"bankName" validate:"omitempty,min=1,max=255"`
	}
	type response struct {
		Message string              `json:"message"`
		Account bankAccountResponse `json:"account"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		update := models.BankAccountUpdate{
			AccountName:   data.AccountName,
			AccountNumber: data.AccountNumber,
			BankName:      data.BankName,
		}
		if update.IsZero() {
			render.ServiceError(w, "No fields to update", http.StatusBadRequest)
			return
		}

		account, err := accountService.Update(r.Context(), id, &user, update)

		switch {
		case err == nil:
			render.JSON(w, response{
				Message: "Bank account updated successfully",
				Account: toBankAccountResponse(account),
			})
		case errors.Is(err, apperrors.ErrBankAccountNotFound):
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBankAccountExists):
			render.ServiceError(w, "Bank account already exists", http.StatusConflict)
		default:
			l.Error("Failed to update bank account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteBankAccount(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
			return
		}

		err = accountService.Delete(r.Context(), id, &user)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Bank account deleted successfully"})
		case errors.Is(err, apperrors.ErrBankAccountNotFound):
			render.ServiceError(w, "Bank account not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBankAccountInUse):
			render.ServiceError(w, "Bank account has active transactions", http.StatusBadRequest)
		default:
			l.Error("Failed to delete bank account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

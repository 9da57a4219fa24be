package handlers

import (
	"errors"
	"net/http"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/handlers/render"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

type userResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	IsVerified  bool    `json:"isVerified"`
	Balance     float64 `json:"balance"`
}

func toUserResponse(u models.User) userResponse {
	balance, _ := u.Balance.Float64()
	return userResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		Balance:     balance,
	}
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username    string `json:"username" validate:"required,min=3,max=50,alphanum"`
		Password    string `json:"password" validate:"required,min=6"`
		DisplayName string `json:"displayName" validate:"omitempty,min=1,max=100"`
	}
	type response struct {
		Message string       `json:"message"`
		Token   string       `json:"token"`
		User    userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Register(r.Context(), data.Username, data.Password, data.DisplayName)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{
				Message: "User registered successfully",
				Token:   token,
				User:    toUserResponse(user),
			}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username already exists", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string       `json:"message"`
		Token   string       `json:"token"`
		User    userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Login(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			render.JSON(w, response{
				Message: "User logged in successfully",
				Token:   token,
				User:    toUserResponse(user),
			})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/handlers/render"
	"github.com/akosachev/ledgerpay/internal/handlers/userctx"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

func handleUserProfile() http.Handler {
	type response struct {
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{User: toUserResponse(user)})
	})
}

func handleUpdateProfile(userService userService, l logger.Logger) http.Handler {
	type request struct {
		DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=100"`
	}
	type response struct {
		Message string       `json:"message"`
		User    userResponse `json:"user"`
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

		if data.DisplayName == nil {
			render.ServiceError(w, "No fields to update", http.StatusBadRequest)
			return
		}

		updated, err := userService.UpdateProfile(r.Context(), user.ID, models.UserProfileUpdate{
			DisplayName: data.DisplayName,
		})

		switch {
		case err == nil:
			render.JSON(w, response{
				Message: "Profile updated successfully",
				User:    toUserResponse(updated),
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to update profile", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

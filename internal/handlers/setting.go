package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/handlers/render"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

type settingResponse struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSettingResponses(settings []models.Setting) []settingResponse {
	items := make([]settingResponse, 0, len(settings))
	for _, s := range settings {
		items = append(items, settingResponse{Name: s.Name, Value: s.Value, UpdatedAt: s.UpdatedAt})
	}
	return items
}

func handlePublicSettings(settingService settingService, l logger.Logger) http.Handler {
	type response struct {
		Settings []settingResponse `json:"settings"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := settingService.ListPublic(r.Context())
		if err != nil {
			l.Error("Failed to list public settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Settings: toSettingResponses(settings)})
	})
}

func handleListSettings(settingService settingService, l logger.Logger) http.Handler {
	type response struct {
		Settings []settingResponse `json:"settings"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := settingService.List(r.Context())
		if err != nil {
			l.Error("Failed to list settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Settings: toSettingResponses(settings)})
	})
}

func handleGetSetting(settingService settingService, l logger.Logger) http.Handler {
	type response struct {
		Setting settingResponse `json:"setting"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setting, err := settingService.Get(r.Context(), r.PathValue("name"))

		switch {
		case err == nil:
			render.JSON(w, response{
				Setting: settingResponse{Name: setting.Name, Value: setting.Value, UpdatedAt: setting.UpdatedAt},
			})
		case errors.Is(err, apperrors.ErrSettingNotFound):
			render.ServiceError(w, "Setting not found", http.StatusNotFound)
		default:
			l.Error("Failed to get setting", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSetSetting(settingService settingService, l logger.Logger) http.Handler {
	type request struct {
		Value string `json:"value" validate:"required,max=1000"`
	}
	type response struct {
		Message string          `json:"message"`
		Setting settingResponse `json:"setting"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		setting, err := settingService.Set(r.Context(), name, data.Value)
		if err != nil {
			l.Error("Failed to save setting", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			Message: "Setting saved successfully",
			Setting: settingResponse{Name: setting.Name, Value: setting.Value, UpdatedAt: setting.UpdatedAt},
		})
	})
}

func handleDeleteSetting(settingService settingService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := settingService.Delete(r.Context(), r.PathValue("name"))

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Setting deleted successfully"})
		case errors.Is(err, apperrors.ErrSettingNotFound):
			render.ServiceError(w, "Setting not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete setting", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

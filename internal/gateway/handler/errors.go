package handler

import (
	"errors"
	"net/http"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/gateway/repository/artifact"
	"accsetup/internal/gateway/service/workspace"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// describe maps an action error to an HTTP status and a message safe to show
// the user.
func describe(err error, lang string) (int, apiError) {
	var (
		cfgErr  *advisor.ConfigurationError
		provErr *advisor.ProviderError
		parsErr *advisor.ParseError
		preErr  *advisor.PreconditionError
		valErr  *advisor.ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, apiError{"invalid_argument", advisor.UserMessage(err, lang)}
	case errors.Is(err, catalog.ErrUnknownOption), errors.Is(err, artifact.ErrInvalidKey):
		return http.StatusBadRequest, apiError{"invalid_argument", err.Error()}
	case errors.As(err, &preErr):
		return http.StatusConflict, apiError{"no_session", advisor.UserMessage(err, lang)}
	case errors.Is(err, workspace.ErrBusy):
		return http.StatusConflict, apiError{"busy", err.Error()}
	case errors.Is(err, workspace.ErrNoSetup):
		return http.StatusConflict, apiError{"no_setup", err.Error()}
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, artifact.ErrNotFound):
		return http.StatusNotFound, apiError{"not_found", err.Error()}
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, apiError{"unavailable", advisor.UserMessage(err, lang)}
	case errors.As(err, &provErr):
		return http.StatusBadGateway, apiError{"provider", advisor.UserMessage(err, lang)}
	case errors.As(err, &parsErr):
		return http.StatusBadGateway, apiError{"parse", advisor.UserMessage(err, lang)}
	}
	return http.StatusInternalServerError, apiError{"internal", advisor.UserMessage(err, lang)}
}

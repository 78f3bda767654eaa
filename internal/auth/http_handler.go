package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{service: service, log: log}
}

// TokenRequest is the body of POST /generate_token.
// SecretKey is kept raw so that a number or object is a wrong secret, not a bad body.
type TokenRequest struct {
	SecretKey json.RawMessage `json:"secret_key" swaggertype:"string"`
}

// Secret returns the secret_key when it is a JSON string, nil otherwise.
func (r TokenRequest) Secret() *string {
	if len(r.SecretKey) == 0 || r.SecretKey[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(r.SecretKey, &s); err != nil {
		return nil
	}
	return &s
}

// TokenResponse is returned on a successful exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// GenerateToken handles POST /generate_token
// @Summary Exchange the shared secret for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Shared secret"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /generate_token [post]
func (h *HTTPHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.IssueToken(req.Secret())
	if err != nil {
		if errors.Is(err, ErrInvalidSecret) {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid secret key")
			return
		}
		h.log.Error("issue token failed",
			zap.Error(err),
			zap.String("request_id", httpx.RequestIDFrom(r)),
		)
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSONSuccess(w, TokenResponse{AccessToken: token})
}

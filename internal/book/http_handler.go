package book

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"libraryapi/internal/httpx"
)

const (
	msgInvalidISBN   = "Invalid ISBN format"
	msgNotFound      = "Book details not found"
	msgDuplicateISBN = "Book with the same ISBN already exists"
	msgSaved         = "Book details saved successfully"
	msgBadBody       = "Invalid request body"
	msgInternal      = "Internal server error"
)

func init() {
	if err := httpx.RegisterStringRule("isbn13", ValidateISBN); err != nil {
		panic(err)
	}
}

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

// GetByISBN handles GET /isbn/{isbn}
// @Summary Get book by ISBN
// @Tags books
// @Produce json
// @Param isbn path string true "13 digit ISBN"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /isbn/{isbn} [get]
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	b, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidISBN):
			httpx.JSONError(w, http.StatusBadRequest, msgInvalidISBN)
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, msgNotFound)
		default:
			h.internalError(w, r, "lookup book", err)
		}
		return
	}

	httpx.JSONSuccess(w, map[string]any{
		"book_details": []Book{b},
	})
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list books", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{
		"books": books,
	})
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AddBookRequest true "Book to add"
// @Success 200 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AddBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		// A non-string isbn is an invalid ISBN, not a malformed body.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "isbn" {
			httpx.JSONError(w, http.StatusBadRequest, msgInvalidISBN)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	if errs := httpx.ValidateStruct(req); len(errs) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidISBN)
		return
	}

	nb := req.ToNewBook()
	result, err := h.service.Add(r.Context(), nb)
	if err != nil {
		if errors.Is(err, ErrInvalidISBN) {
			httpx.JSONError(w, http.StatusBadRequest, msgInvalidISBN)
			return
		}
		h.internalError(w, r, "add book", err)
		return
	}

	h.log.Info("add book handled",
		zap.String("isbn", nb.ISBN),
		zap.Bool("created", result == Created),
		zap.String("token_id", tokenID(r)),
		zap.String("request_id", httpx.RequestIDFrom(r)),
	)

	if result == AlreadyExists {
		httpx.JSONMessage(w, msgDuplicateISBN)
		return
	}
	httpx.JSONMessage(w, msgSaved)
}

// tokenID returns the jti of the token that authorised r, if any.
func tokenID(r *http.Request) string {
	if claims := httpx.ClaimsFrom(r); claims != nil {
		return claims.ID
	}
	return ""
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error(op+" failed",
		zap.Error(err),
		zap.String("token_id", tokenID(r)),
		zap.String("request_id", httpx.RequestIDFrom(r)),
	)
	httpx.JSONError(w, http.StatusInternalServerError, msgInternal)
}

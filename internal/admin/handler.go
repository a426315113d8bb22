package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=admin_test

const maxBodyBytes = 64 << 10

type accountsRepo interface {
	List(ctx context.Context) ([]Account, error)
	Get(ctx context.Context, id int) (*Account, error)
	Create(ctx context.Context, username, passwordHash string) (*Account, error)
	Update(ctx context.Context, id int, username, passwordHash *string) (*Account, error)
	Delete(ctx context.Context, id int, actingUsername string) error
}

type CreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

type Handler struct {
	repo         accountsRepo
	bcryptCost   int
	exposeErrors bool
}

func NewHandler(repo accountsRepo, bcryptCost int, exposeErrors bool) *Handler {
	return &Handler{
		repo:         repo,
		bcryptCost:   bcryptCost,
		exposeErrors: exposeErrors,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/admin/admins", h.handleList).Methods("GET").Name("list-admins")
	router.HandleFunc("/api/admin/admins", h.handleCreate).Methods("POST", "OPTIONS").Name("create-admin")
	router.HandleFunc("/api/admin/admins/{id}", h.handleGet).Methods("GET").Name("get-admin")
	router.HandleFunc("/api/admin/admins/{id}", h.handleUpdate).Methods("PUT", "OPTIONS").Name("update-admin")
	router.HandleFunc("/api/admin/admins/{id}", h.handleDelete).Methods("DELETE").Name("delete-admin")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.list")
	defer span.End()

	accounts, err := h.repo.List(ctx)
	if err != nil {
		log.Errorf("list admins: %s", err)
		pkg.WriteInternalError(w, "failed to list admins", err, h.exposeErrors)
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	pkg.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.get")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	account, err := h.repo.Get(ctx, id)
	if err != nil {
		h.writeRepoError(w, "get admin", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.create")
	defer span.End()

	var req CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := ValidateUsername(req.Username); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ValidatePassword(req.Password); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := pkg.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		log.Errorf("hash admin password: %s", err)
		pkg.WriteInternalError(w, "failed to create admin", err, h.exposeErrors)
		return
	}

	account, err := h.repo.Create(ctx, req.Username, hash)
	if err != nil {
		h.writeRepoError(w, "create admin", err)
		return
	}

	log.Infof("admin account created: %s", account.Username)
	pkg.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.update")
	defer span.End()

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	var req UpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == nil && req.Password == nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "username or password is required")
		return
	}

	var username, hash *string
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if err := ValidateUsername(trimmed); err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		username = &trimmed
	}
	if req.Password != nil {
		if err := ValidatePassword(*req.Password); err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		hashed, err := pkg.HashPassword(*req.Password, h.bcryptCost)
		if err != nil {
			log.Errorf("hash admin password: %s", err)
			pkg.WriteInternalError(w, "failed to update admin", err, h.exposeErrors)
			return
		}
		hash = &hashed
	}

	account, err := h.repo.Update(ctx, id, username, hash)
	if err != nil {
		h.writeRepoError(w, "update admin", err)
		return
	}

	log.Infof("admin account %d updated", id)
	pkg.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.delete")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	if err := h.repo.Delete(ctx, id, identity.Username); err != nil {
		h.writeRepoError(w, "delete admin", err)
		return
	}

	log.Infof("admin account %d deleted by %s", id, identity.Username)
	pkg.WriteJSON(w, http.StatusOK, DeleteResponse{
		Message: "deleted",
		ID:      id,
	})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrUsernameTaken):
		pkg.WriteJSONError(w, http.StatusConflict, ErrUsernameTaken.Error())
	case errors.Is(err, ErrLastAdmin):
		pkg.WriteJSONError(w, http.StatusConflict, ErrLastAdmin.Error())
	case errors.Is(err, ErrSelfDelete):
		pkg.WriteJSONError(w, http.StatusForbidden, ErrSelfDelete.Error())
	case errors.Is(err, ErrUnknownActor):
		pkg.WriteJSONError(w, http.StatusUnauthorized, ErrUnknownActor.Error())
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteInternalError(w, op+" failed", err, h.exposeErrors)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

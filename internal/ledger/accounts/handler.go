package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/openbooks-app/openbooks/internal/platform/httpx"
	"github.com/openbooks-app/openbooks/internal/shared"
)

// BalanceReader resolves account balances for the detail view. The posting
// engine satisfies it.
type BalanceReader interface {
	AccountBalance(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error)
	SubtreeBalance(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	balances  BalanceReader
	validator *validator.Validate
	flight    singleflight.Group
}

func NewHandler(logger *slog.Logger, service *Service, balances BalanceReader) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		balances:  balances,
		validator: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Tree)
	r.Post("/", h.Create)
	r.Post("/initialize", h.Initialize)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/deactivate", h.Deactivate)
}

type accountRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentID *int64 `json:"parentId"`
	IsActive *bool  `json:"isActive"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parentId,omitempty"`
	IsActive bool   `json:"isActive"`
	IsSystem bool   `json:"isSystem"`
}

type treeNodeResponse struct {
	accountResponse
	Children []treeNodeResponse `json:"children"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		ID:       a.ID,
		Code:     a.Code,
		Name:     a.Name,
		Type:     string(a.Type),
		ParentID: a.ParentID,
		IsActive: a.IsActive,
		IsSystem: a.IsSystem,
	}
}

func toTreeResponse(nodes []*TreeNode) []treeNodeResponse {
	out := make([]treeNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, treeNodeResponse{
			accountResponse: toAccountResponse(node.Account),
			Children:        toTreeResponse(node.Children),
		})
	}
	return out
}

// Tree returns the organization's active chart of accounts as a forest.
// Concurrent reads for the same organization collapse into one query.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	result, err, _ := h.flight.Do(orgID.String(), func() (any, error) {
		return h.service.Tree(r.Context(), orgID)
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": toTreeResponse(result.([]*TreeNode))})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), orgID, CreateInput{
		Code:     req.Code,
		Name:     req.Name,
		Type:     AccountType(req.Type),
		ParentID: req.ParentID,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	created, err := h.service.InitializeDefaults(r.Context(), orgID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	children, err := h.service.Children(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	balance, err := h.balances.AccountBalance(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	subtree, err := h.balances.SubtreeBalance(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	childResponses := make([]accountResponse, 0, len(children))
	for _, child := range children {
		childResponses = append(childResponses, toAccountResponse(child))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"account":        toAccountResponse(account),
		"children":       childResponses,
		"balance":        balance,
		"subtreeBalance": subtree,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	account, err := h.service.Update(r.Context(), orgID, id, UpdateInput{
		Code:     req.Code,
		Name:     req.Name,
		Type:     AccountType(req.Type),
		ParentID: req.ParentID,
		IsActive: active,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	if err := h.service.DeleteOrDeactivate(r.Context(), orgID, id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "account deleted"})
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.Deactivate(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

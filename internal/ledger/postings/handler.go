package postings

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/platform/httpx"
	"github.com/openbooks-app/openbooks/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

var (
	errAccountIDQuery = errors.New("accountId must be an integer")
	errDateQuery      = errors.New("dates must be YYYY-MM-DD")
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entries", h.List)
	r.Post("/entries", h.PostJournal)
	r.Get("/entries/{group}", h.GetGroup)
	r.Delete("/entries/{group}", h.DeleteGroup)
	r.Get("/trial-balance", h.TrialBalance)
}

type journalLineRequest struct {
	AccountID int64   `json:"accountId" validate:"required"`
	Debit     float64 `json:"debit" validate:"gte=0"`
	Credit    float64 `json:"credit" validate:"gte=0"`
}

type journalRequest struct {
	Date        string               `json:"date" validate:"required"`
	Description string               `json:"description" validate:"required"`
	Lines       []journalLineRequest `json:"entries" validate:"required,min=2,dive"`
}

type entryResponse struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"accountId"`
	AccountCode string     `json:"accountCode,omitempty"`
	AccountName string     `json:"accountName,omitempty"`
	AccountType string     `json:"accountType,omitempty"`
	Date        string     `json:"date"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	Description string     `json:"description"`
	Reference   Reference  `json:"reference"`
	GroupID     *uuid.UUID `json:"groupId,omitempty"`
	SourceID    *int64     `json:"sourceId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toPostingResponse(p Posting) entryResponse {
	return entryResponse{
		ID:          p.ID,
		AccountID:   p.AccountID,
		Date:        p.Date.Format("2006-01-02"),
		Debit:       p.Debit,
		Credit:      p.Credit,
		Description: p.Description,
		Reference:   p.Reference,
		GroupID:     p.GroupID,
		SourceID:    p.SourceID,
		CreatedAt:   p.CreatedAt,
	}
}

func toEntryResponse(e Entry) entryResponse {
	resp := toPostingResponse(e.Posting)
	resp.AccountCode = e.AccountCode
	resp.AccountName = e.AccountName
	resp.AccountType = string(e.AccountType)
	return resp
}

// List returns postings for the organization, newest first, with optional
// account, date range and description filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	filter, page, perPage, err := parseListQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entries, pagination, err := h.service.List(r.Context(), orgID, filter, page, perPage)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    out,
		"pagination": pagination,
	})
}

func (h *Handler) PostJournal(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	var req journalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	lines := make([]JournalLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, JournalLineInput{AccountID: line.AccountID, Debit: line.Debit, Credit: line.Credit})
	}
	created, groupID, err := h.service.PostJournal(r.Context(), orgID, JournalInput{
		Date:        date,
		Description: req.Description,
		Lines:       lines,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]entryResponse, 0, len(created))
	for _, p := range created {
		out = append(out, toPostingResponse(p))
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"entries":   out,
		"reference": groupID,
	})
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	groupID, err := uuid.Parse(chi.URLParam(r, "group"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid reference group id")
		return
	}
	group, err := h.service.GetGroup(r.Context(), orgID, groupID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out := make([]entryResponse, 0, len(group))
	for _, p := range group {
		out = append(out, toPostingResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	groupID, err := uuid.Parse(chi.URLParam(r, "group"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid reference group id")
		return
	}
	if err := h.service.DeleteJournal(r.Context(), orgID, groupID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "journal entry deleted"})
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing organization")
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), orgID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func parseListQuery(r *http.Request) (Filter, int, int, error) {
	query := r.URL.Query()
	var filter Filter
	if raw := query.Get("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, 0, 0, errAccountIDQuery
		}
		filter.AccountID = &id
	}
	if raw := query.Get("startDate"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, 0, 0, errDateQuery
		}
		filter.From = &from
	}
	if raw := query.Get("endDate"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, 0, 0, errDateQuery
		}
		filter.To = &to
	}
	filter.Search = query.Get("search")
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("limit"))
	return filter, page, perPage, nil
}

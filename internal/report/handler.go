package report

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-bot/internal/transport"
)

type ServiceAPI interface {
	ProjectTotals(ctx context.Context, r Range) ([]ProjectTotal, error)
	ProjectDetail(ctx context.Context, projectID string, r Range) (*ProjectTotal, error)
	EmployeePeriod(ctx context.Context, employeeID int64, r Range) (*EmployeeReport, error)
	Balances(ctx context.Context) (*BalanceSummary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Now     func() time.Time
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Now:         time.Now,
	}
}

func (h *Handler) rangeOf(w http.ResponseWriter, r *http.Request) (Range, bool) {
	rng, appErr := RangeFromQuery(r.URL.Query(), h.Now())
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return rng, false
	}
	return rng, true
}

func (h *Handler) ProjectTotals(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	totals, err := h.Service.ProjectTotals(r.Context(), rng)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if totals == nil {
		totals = []ProjectTotal{}
	}
	h.WriteJSON(w, http.StatusOK, ProjectTotalsResponse{Range: rng, Projects: totals})
}

func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.ProjectDetail(r.Context(), chi.URLParam(r, "id"), rng)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) MyReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	rep, err := h.Service.EmployeePeriod(r.Context(), id, rng)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Balances(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) BalancesPDF(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Balances(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteBalancesPDF(&buf, summary); err != nil {
		h.Logger.Error("failed to render balance pdf", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="balances.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package http

import (
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
)

// userView is a user row of the users view.
type userView struct {
	domain.UserIdentity
	Status string `json:"status"`
}

// Dashboard handles GET /admin.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := catalog.LoadDashboard(r.Context(), h.products, h.users)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, d)
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows := make([]userView, 0, len(items))
	for _, u := range items {
		rows = append(rows, userView{UserIdentity: u, Status: u.ConfirmationStatus()})
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"users": rows})
}

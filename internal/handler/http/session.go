package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/guard"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
)

// sessionView is the session as exposed to the browser.
type sessionView struct {
	State         string               `json:"state"`
	Authenticated bool                 `json:"authenticated"`
	Role          domain.Role          `json:"role,omitempty"`
	User          *domain.UserIdentity `json:"user,omitempty"`
}

// Session handles GET /session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	rm := h.sessions.ReadModel()
	httputil.WriteData(w, http.StatusOK, sessionView{
		State:         rm.State.String(),
		Authenticated: rm.IsAuthenticated,
		Role:          rm.Role,
		User:          h.sessions.CurrentUser(),
	})
}

// LoginForm handles GET /login. Signed-in visitors never reach it.
func (h *Handler) LoginForm(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"fields": []string{"email", "password"},
		"action": guard.LoginPath,
	})
}

// Login handles POST /login with a JSON or url-encoded body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if isFormPost(r) {
		creds.Email = r.PostFormValue("email")
		creds.Password = r.PostFormValue("password")
	} else if err := httputil.DecodeJSON(r, &creds); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.sessions.Login(r.Context(), creds); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.SeeOther(w, r, guard.AdminPath)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	httputil.SeeOther(w, r, guard.LoginPath)
}

func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

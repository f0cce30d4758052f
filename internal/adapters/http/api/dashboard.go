package api

import (
	"net/http"
)

// dashboardHandler serves the embedded admin pages.
type dashboardHandler struct {
	auth *AdminAuth
}

func newDashboardHandler(auth *AdminAuth) *dashboardHandler {
	return &dashboardHandler{auth: auth}
}

// HandleDashboard handles GET /admin requests. Visitors without a session
// are sent to the login page.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.auth.authorized(r) {
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}

// HandleLogin handles GET /admin/login requests.
func (h *dashboardHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "login.html")
}

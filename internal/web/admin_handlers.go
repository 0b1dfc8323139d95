package web

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"finditweb/internal/models"
	"finditweb/internal/upstream"
)

func (h *Handlers) AdminPanel(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	cookie := h.store.UpstreamCookie(sess)

	users, err := h.api.AdminListUsers(r.Context(), cookie)
	if err != nil {
		h.renderAdminError(w, r, "users", err)
		return
	}
	items, err := h.api.AdminListItems(r.Context(), cookie)
	if err != nil {
		h.renderAdminError(w, r, "items", err)
		return
	}

	p := h.newPage(r, "Admin panel")
	p.Users = users
	p.Items = items
	h.render(w, r, http.StatusOK, "admin.html", p)
}

func (h *Handlers) AdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	isAdmin := r.PostFormValue("is_admin") == "true"
	if err := h.api.AdminSetUserAdmin(r.Context(), h.store.UpstreamCookie(sess), id, isAdmin); err != nil {
		log.Printf("toggle admin user=%d failed err=%v", id, err)
		sess.Notices().Post(upstream.ErrorMessage(err, "Failed to update the user."), models.NoticeError, h.cfg.NotificationTTL)
	} else {
		sess.Notices().Post("User updated", models.NoticeSuccess, h.cfg.NotificationTTL)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handlers) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := h.api.AdminDeleteUser(r.Context(), h.store.UpstreamCookie(sess), id); err != nil {
		log.Printf("delete user=%d failed err=%v", id, err)
		sess.Notices().Post(upstream.ErrorMessage(err, "Failed to delete the user."), models.NoticeError, h.cfg.NotificationTTL)
	} else {
		sess.Notices().Post("User deleted", models.NoticeSuccess, h.cfg.NotificationTTL)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handlers) renderAdminError(w http.ResponseWriter, r *http.Request, what string, err error) {
	log.Printf("admin load %s failed err=%v", what, err)
	p := h.newPage(r, "Error")
	p.Message = "Failed to load the admin panel. Please try again later."
	h.render(w, r, http.StatusBadGateway, "error.html", p)
}

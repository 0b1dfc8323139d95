package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finditweb/internal/forms"
	"finditweb/internal/middleware"
)

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	if sess != nil && sess.CurrentUser() != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if sess != nil {
		h.store.ClearError(sess)
	}
	h.render(w, r, http.StatusOK, "login.html", h.newPage(r, "Log in"))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	p := h.newPage(r, "Log in")
	p.Values["username"] = username

	// Malformed credentials never reach the network.
	if errs := forms.ValidateLogin(username, password); !errs.Valid() {
		p.FormErrors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	if err := h.store.Login(r.Context(), sess, username, password); err != nil {
		p.AuthError = sess.LastError()
		p.Notices = sess.Notices().Active(time.Now().UTC())
		h.render(w, r, http.StatusUnauthorized, "login.html", p)
		return
	}
	h.limiter.Reset("login:" + middleware.ClientIP(r, h.cfg.TrustProxy))

	target := sess.TakeReturnTo()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	if sess != nil && sess.CurrentUser() != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if sess != nil {
		h.store.ClearError(sess)
	}
	h.render(w, r, http.StatusOK, "register.html", h.newPage(r, "Register"))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")

	p := h.newPage(r, "Register")
	p.Values["username"] = username
	p.Values["email"] = email

	if errs := forms.ValidateRegister(username, email, password, confirm); !errs.Valid() {
		p.FormErrors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "register.html", p)
		return
	}

	if err := h.store.Register(r.Context(), sess, username, email, password); err != nil {
		p.AuthError = sess.LastError()
		p.Notices = sess.Notices().Active(time.Now().UTC())
		h.render(w, r, http.StatusUnprocessableEntity, "register.html", p)
		return
	}

	target := sess.TakeReturnTo()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFrom(r); ok {
		h.store.Logout(r.Context(), sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFrom(r); ok {
		sess.Notices().Dismiss(chi.URLParam(r, "id"))
	}
	target := r.Referer()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

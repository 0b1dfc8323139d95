package web

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"finditweb/internal/forms"
	"finditweb/internal/listing"
	"finditweb/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"datefmt": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// page is the data every template receives; handlers fill the view
// specific fields they need.
type page struct {
	Title     string
	User      *models.User
	Notices   []models.Notification
	CSRFToken string

	// form views
	Values     map[string]string
	FormErrors forms.Errors
	FormError  string
	AuthError  string

	// listing views
	Result     listing.Result
	Spec       listing.Spec
	Categories []models.Category

	// detail / admin views
	Item  models.Item
	Items []models.Item
	Users []models.User

	// error views
	Message string
}

func (h *Handlers) newPage(r *http.Request, title string) page {
	p := page{Title: title, Values: map[string]string{}}
	if sess, ok := sessionFrom(r); ok {
		p.User = sess.CurrentUser()
		p.Notices = sess.Notices().Active(time.Now().UTC())
		p.CSRFToken = sess.CSRFToken()
	}
	return p
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s failed path=%s err=%v", name, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

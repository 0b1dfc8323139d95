package web

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"finditweb/internal/forms"
	"finditweb/internal/listing"
	"finditweb/internal/models"
	"finditweb/internal/upstream"
)

const maxImageBytes = 10 << 20

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)

	var spec listing.Spec
	listing.SyncSearch(&spec, r.URL.Query())

	// The home page caps the recent grid unless a search is active.
	maxItems := h.cfg.HomeMaxItems
	if spec.Search != "" {
		maxItems = 0
	}

	res, err := h.fetcher.Fetch(r.Context(), sess, spec, listing.Options{MaxItems: maxItems})
	if errors.Is(err, listing.ErrStale) {
		h.renderSuperseded(w)
		return
	}

	p := h.newPage(r, "Home")
	p.Spec = spec
	p.Result = res
	h.render(w, r, http.StatusOK, "home.html", p)
}

func (h *Handlers) BrowseItems(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)

	q := r.URL.Query()
	spec := listing.Spec{
		ItemType:   q.Get("type"),
		CategoryID: q.Get("category"),
	}
	listing.SyncSearch(&spec, q)

	res, err := h.fetcher.Fetch(r.Context(), sess, spec, listing.Options{})
	if errors.Is(err, listing.ErrStale) {
		h.renderSuperseded(w)
		return
	}

	p := h.newPage(r, "Browse items")
	p.Spec = spec
	p.Result = res
	p.Categories = h.loadCategories(r)
	h.render(w, r, http.StatusOK, "items.html", p)
}

func (h *Handlers) ItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	item, err := h.api.GetItem(r.Context(), id)
	if err != nil {
		h.renderItemError(w, r, err)
		return
	}
	p := h.newPage(r, item.Title)
	p.Item = item
	h.render(w, r, http.StatusOK, "item_detail.html", p)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)

	res, err := h.fetcher.Fetch(r.Context(), sess, listing.Spec{}, listing.Options{
		OwnerScope:   true,
		RequiresAuth: true,
	})
	if errors.Is(err, listing.ErrStale) {
		h.renderSuperseded(w)
		return
	}

	p := h.newPage(r, "My items")
	p.Result = res
	h.render(w, r, http.StatusOK, "dashboard.html", p)
}

func (h *Handlers) NewItemPage(w http.ResponseWriter, r *http.Request) {
	p := h.newPage(r, "Post an item")
	p.Categories = h.loadCategories(r)
	h.render(w, r, http.StatusOK, "item_form.html", p)
}

func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	input, draft, err := h.parseItemForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p := h.newPage(r, "Post an item")
	p.Categories = h.loadCategories(r)
	fillItemValues(&p, input, nil)

	if errs := forms.ValidateItem(input); !errs.Valid() {
		p.FormErrors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "item_form.html", p)
		return
	}

	item, err := h.api.CreateItem(r.Context(), h.store.UpstreamCookie(sess), draft)
	if err != nil {
		log.Printf("create item failed err=%v", err)
		p.FormError = upstream.ErrorMessage(err, "Failed to create the item. Please try again.")
		h.render(w, r, http.StatusBadGateway, "item_form.html", p)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/items/%d", item.ID), http.StatusSeeOther)
}

func (h *Handlers) EditItemPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	item, err := h.api.GetItem(r.Context(), id)
	if err != nil {
		h.renderItemError(w, r, err)
		return
	}
	p := h.newPage(r, "Edit item")
	p.Item = item
	p.Categories = h.loadCategories(r)
	fillItemValues(&p, forms.ItemInput{
		Title:        item.Title,
		Description:  item.Description,
		ItemType:     string(item.ItemType),
		CategoryID:   strconv.Itoa(item.Category.ID),
		DateOccurred: item.DateOccurred.Format("2006-01-02"),
		Location:     item.Location,
	}, &item.IsResolved)
	h.render(w, r, http.StatusOK, "item_form.html", p)
}

func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	input, draft, err := h.parseItemForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	resolved := r.PostFormValue("is_resolved") == "true"
	draft.IsResolved = &resolved

	p := h.newPage(r, "Edit item")
	p.Item = models.Item{ID: id}
	p.Categories = h.loadCategories(r)
	fillItemValues(&p, input, &resolved)

	if errs := forms.ValidateItem(input); !errs.Valid() {
		p.FormErrors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "item_form.html", p)
		return
	}

	item, err := h.api.UpdateItem(r.Context(), h.store.UpstreamCookie(sess), id, draft)
	if err != nil {
		log.Printf("update item %d failed err=%v", id, err)
		p.FormError = upstream.ErrorMessage(err, "Failed to save your changes. Please try again.")
		h.render(w, r, http.StatusBadGateway, "item_form.html", p)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/items/%d", item.ID), http.StatusSeeOther)
}

func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := h.api.DeleteItem(r.Context(), h.store.UpstreamCookie(sess), id); err != nil {
		log.Printf("delete item %d failed err=%v", id, err)
		sess.Notices().Post(upstream.ErrorMessage(err, "Failed to delete the item."), models.NoticeError, h.cfg.NotificationTTL)
		http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
		return
	}
	sess.Notices().Post("Item deleted", models.NoticeSuccess, h.cfg.NotificationTTL)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound.html", h.newPage(r, "Not found"))
}

// renderItemError maps an upstream read failure to the page-level error
// panel: 404s get the not-found page, everything else the generic one.
func (h *Handlers) renderItemError(w http.ResponseWriter, r *http.Request, err error) {
	var se *upstream.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		h.NotFound(w, r)
		return
	}
	log.Printf("load item failed path=%s err=%v", r.URL.Path, err)
	p := h.newPage(r, "Error")
	p.Message = "Failed to load the item. Please try again later."
	h.render(w, r, http.StatusBadGateway, "error.html", p)
}

// renderSuperseded answers a fetch that lost to a newer one for the same
// view; the client re-requests and gets the fresh result.
func (h *Handlers) renderSuperseded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Refresh", "1")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!doctype html><title>FindIt</title><p>Loading&hellip;</p>"))
}

// Category load failures are logged and leave the select empty; the
// listing itself still renders.
func (h *Handlers) loadCategories(r *http.Request) []models.Category {
	cats, err := h.api.ListCategories(r.Context())
	if err != nil {
		log.Printf("fetch categories failed err=%v", err)
		return nil
	}
	return cats
}

func (h *Handlers) parseItemForm(r *http.Request) (forms.ItemInput, models.ItemDraft, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return forms.ItemInput{}, models.ItemDraft{}, err
	}
	input := forms.ItemInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		ItemType:     r.FormValue("item_type"),
		CategoryID:   r.FormValue("category_id"),
		DateOccurred: r.FormValue("date_occurred"),
		Location:     r.FormValue("location"),
	}
	draft := models.ItemDraft{
		Title:        input.Title,
		Description:  input.Description,
		ItemType:     input.ItemType,
		CategoryID:   input.CategoryID,
		DateOccurred: input.DateOccurred,
		Location:     input.Location,
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err == nil && len(data) > 0 {
			draft.ImageFilename = header.Filename
			draft.ImageContentType = header.Header.Get("Content-Type")
			draft.ImageData = data
		}
	}
	return input, draft, nil
}

func fillItemValues(p *page, input forms.ItemInput, resolved *bool) {
	p.Values["title"] = input.Title
	p.Values["description"] = input.Description
	p.Values["item_type"] = input.ItemType
	p.Values["category_id"] = input.CategoryID
	p.Values["date_occurred"] = input.DateOccurred
	p.Values["location"] = input.Location
	if resolved != nil && *resolved {
		p.Values["is_resolved"] = "true"
	}
}

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"finditweb/internal/models"
)

const testUserJSON = `{"id":1,"username":"maya","email":"maya@example.com","is_admin":false,"created_at":"2024-01-15T09:30:00"}`

func testItemJSON(id int) string {
	return fmt.Sprintf(`{"id":%d,"uuid":"u-%d","title":"Item %d","description":"desc","item_type":"lost",
		"date_posted":"2025-06-01T10:00:00","date_occurred":"2025-05-30","location":"Library",
		"image_url":null,"is_resolved":false,"category":{"id":2,"name":"Books"},"user_id":1}`, id, id, id)
}

func TestCheckAuthAnonymous(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/check-auth" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"authenticated":false}`)
	}))
	defer ts.Close()

	user, _, err := NewWithBase(ts.URL).CheckAuth(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user for anonymous reply, got %+v", user)
	}
}

func TestCheckAuthCapturesRefreshedCookie(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "refreshed"})
		fmt.Fprintf(w, `{"authenticated":true,"user":%s}`, testUserJSON)
	}))
	defer ts.Close()

	user, cookie, err := NewWithBase(ts.URL).CheckAuth(context.Background(), "session=old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.Username != "maya" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if cookie != "session=refreshed" {
		t.Fatalf("unexpected cookie: %q", cookie)
	}
}

func TestLoginSendsCredentialsAndReturnsCookie(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		fmt.Fprintf(w, `{"user":%s}`, testUserJSON)
	}))
	defer ts.Close()

	user, cookie, err := NewWithBase(ts.URL).Login(context.Background(), "maya", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if cookie != "session=abc123" {
		t.Fatalf("unexpected cookie: %q", cookie)
	}
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid username or password"}`)
	}))
	defer ts.Close()

	_, _, err := NewWithBase(ts.URL).Login(context.Background(), "maya", "wrong")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized || se.Message != "Invalid username or password" {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if got := ErrorMessage(err, "Login failed"); got != "Invalid username or password" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestErrorMessageFallsBack(t *testing.T) {
	if got := ErrorMessage(errors.New("connection refused"), "Login failed"); got != "Login failed" {
		t.Fatalf("unexpected message: %q", got)
	}
	// A status error without a parseable body also falls back.
	if got := ErrorMessage(&StatusError{StatusCode: 500}, "Login failed"); got != "Login failed" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestListItemsEncodesQuery(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprintf(w, `{"items":[%s,%s]}`, testItemJSON(1), testItemJSON(2))
	}))
	defer ts.Close()

	q := url.Values{}
	q.Set("search", "blue bag")
	q.Set("type", "lost")
	items, err := NewWithBase(ts.URL).ListItems(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if gotQuery.Get("search") != "blue bag" || gotQuery.Get("type") != "lost" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestListMineSendsCookie(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/items/mine" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer ts.Close()

	if _, err := NewWithBase(ts.URL).ListMine(context.Background(), "session=abc123", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCookie != "session=abc123" {
		t.Fatalf("unexpected cookie header: %q", gotCookie)
	}
}

func TestListItemsRejectsMalformedItem(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":1,"title":"x","item_type":"misplaced","date_posted":"2025-06-01","date_occurred":"2025-06-01"}]}`)
	}))
	defer ts.Close()

	_, err := NewWithBase(ts.URL).ListItems(context.Background(), nil)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for unknown item type, got %v", err)
	}
}

func TestUpdateItemSendsMultipartFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/items/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "Blue bag" || r.FormValue("is_resolved") != "true" {
			t.Errorf("unexpected fields: title=%q is_resolved=%q", r.FormValue("title"), r.FormValue("is_resolved"))
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image part: %v", err)
		} else {
			file.Close()
			if header.Filename != "bag.jpg" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		fmt.Fprintf(w, `{"item":%s}`, testItemJSON(7))
	}))
	defer ts.Close()

	resolved := true
	draft := models.ItemDraft{
		Title:            "Blue bag",
		Description:      "Blue canvas bag with books",
		ItemType:         "lost",
		CategoryID:       "2",
		DateOccurred:     "2025-05-30",
		Location:         "Library",
		IsResolved:       &resolved,
		ImageFilename:    "bag.jpg",
		ImageContentType: "image/jpeg",
		ImageData:        []byte("not-really-a-jpeg"),
	}
	item, err := NewWithBase(ts.URL).UpdateItem(context.Background(), "session=abc", 7, draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != 7 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded to count as timeout")
	}
	if IsTimeout(errors.New("connection refused")) {
		t.Fatalf("plain error is not a timeout")
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewWithBase(ts.URL).GetItem(ctx, 1)
	if err == nil || !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestParseAPITimeLayouts(t *testing.T) {
	for _, v := range []string{
		"2025-06-01T10:00:00Z",
		"2025-06-01T10:00:00.123456",
		"2025-06-01T10:00:00",
		"2025-06-01",
	} {
		if _, err := parseAPITime(v); err != nil {
			t.Fatalf("expected %q to parse: %v", v, err)
		}
	}
	for _, v := range []string{"", "June 1st", "01/06/2025"} {
		if _, err := parseAPITime(v); err == nil {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
}

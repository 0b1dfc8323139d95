package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"finditweb/internal/models"
)

// StatusError is a non-2xx reply from the FindIt API. Message carries the
// server-provided {"error": ...} text when the body had that shape.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("findit api returned status %d", e.StatusCode)
}

// DecodeError is a 2xx reply whose body did not match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a request deadline failure, as opposed
// to a refused connection or a server-side error.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ErrorMessage extracts the user-facing message for an upstream failure:
// the server text for a StatusError, otherwise the given fallback.
func ErrorMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
		return se.Message
	}
	return fallback
}

type userDTO struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func (d userDTO) toModel() (models.User, error) {
	if d.ID <= 0 {
		return models.User{}, fmt.Errorf("user id missing")
	}
	if strings.TrimSpace(d.Username) == "" {
		return models.User{}, fmt.Errorf("user %d has empty username", d.ID)
	}
	created, err := parseAPITime(d.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("user %d created_at: %w", d.ID, err)
	}
	return models.User{
		ID:        d.ID,
		Username:  d.Username,
		Email:     d.Email,
		IsAdmin:   d.IsAdmin,
		CreatedAt: created,
	}, nil
}

type categoryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (d categoryDTO) toModel() (models.Category, error) {
	if d.ID <= 0 || strings.TrimSpace(d.Name) == "" {
		return models.Category{}, fmt.Errorf("category %d/%q is malformed", d.ID, d.Name)
	}
	return models.Category{ID: d.ID, Name: d.Name}, nil
}

type itemDTO struct {
	ID           int          `json:"id"`
	UUID         string       `json:"uuid"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ItemType     string       `json:"item_type"`
	DatePosted   string       `json:"date_posted"`
	DateOccurred string       `json:"date_occurred"`
	Location     string       `json:"location"`
	ImageURL     *string      `json:"image_url"`
	IsResolved   bool         `json:"is_resolved"`
	Category     *categoryDTO `json:"category"`
	UserID       int          `json:"user_id"`
}

func (d itemDTO) toModel() (models.Item, error) {
	if d.ID <= 0 {
		return models.Item{}, fmt.Errorf("item id missing")
	}
	if d.ItemType != string(models.ItemLost) && d.ItemType != string(models.ItemFound) {
		return models.Item{}, fmt.Errorf("item %d has unknown type %q", d.ID, d.ItemType)
	}
	posted, err := parseAPITime(d.DatePosted)
	if err != nil {
		return models.Item{}, fmt.Errorf("item %d date_posted: %w", d.ID, err)
	}
	occurred, err := parseAPITime(d.DateOccurred)
	if err != nil {
		return models.Item{}, fmt.Errorf("item %d date_occurred: %w", d.ID, err)
	}
	out := models.Item{
		ID:           d.ID,
		UUID:         d.UUID,
		Title:        d.Title,
		Description:  d.Description,
		ItemType:     models.ItemType(d.ItemType),
		DatePosted:   posted,
		DateOccurred: occurred,
		Location:     d.Location,
		IsResolved:   d.IsResolved,
		UserID:       d.UserID,
	}
	if d.ImageURL != nil {
		out.ImageURL = *d.ImageURL
	}
	if d.Category != nil {
		cat, err := d.Category.toModel()
		if err != nil {
			return models.Item{}, fmt.Errorf("item %d: %w", d.ID, err)
		}
		out.Category = cat
	}
	return out, nil
}

// The API emits ISO-8601 timestamps, with and without a zone suffix.
func parseAPITime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

package forms

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"finditweb/internal/models"
)

// Errors maps a form field to its validation message. An empty map means
// the submission may go to the network; anything else blocks it locally.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

var emailRx = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func ValidateLogin(username, password string) Errors {
	errs := Errors{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "Username is required"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

func ValidateRegister(username, email, password, confirm string) Errors {
	errs := Errors{}
	switch {
	case strings.TrimSpace(username) == "":
		errs["username"] = "Username is required"
	case utf8.RuneCountInString(strings.TrimSpace(username)) < 3:
		errs["username"] = "Username must be at least 3 characters"
	}
	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "Email is required"
	case !emailRx.MatchString(email):
		errs["email"] = "Email is invalid"
	}
	switch {
	case password == "":
		errs["password"] = "Password is required"
	case utf8.RuneCountInString(password) < 6:
		errs["password"] = "Password must be at least 6 characters"
	}
	if password != confirm {
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

// ItemInput carries the raw create/edit form fields before validation.
type ItemInput struct {
	Title        string
	Description  string
	ItemType     string
	CategoryID   string
	DateOccurred string
	Location     string
}

func ValidateItem(in ItemInput) Errors {
	errs := Errors{}
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < 3 {
		errs["title"] = "Title must be at least 3 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < 10 {
		errs["description"] = "Description must be at least 10 characters"
	}
	if in.ItemType != string(models.ItemLost) && in.ItemType != string(models.ItemFound) {
		errs["item_type"] = "Select whether the item was lost or found"
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		errs["category_id"] = "Category is required"
	}
	if strings.TrimSpace(in.DateOccurred) == "" {
		errs["date_occurred"] = "Date is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		errs["location"] = "Location is required"
	}
	return errs
}

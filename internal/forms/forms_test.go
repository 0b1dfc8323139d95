package forms

import "testing"

func TestValidateLoginRequiresBothFields(t *testing.T) {
	errs := ValidateLogin("  ", "")
	if errs.Valid() {
		t.Fatalf("expected blank credentials to fail validation")
	}
	if errs["username"] == "" || errs["password"] == "" {
		t.Fatalf("expected messages for both fields, got %v", errs)
	}

	if errs := ValidateLogin("maya", "whatever"); !errs.Valid() {
		t.Fatalf("expected non-empty credentials to pass, got %v", errs)
	}
}

func TestValidateRegisterAllRulesFireTogether(t *testing.T) {
	errs := ValidateRegister("ab", "not-an-email", "12345", "123456")
	if len(errs) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(errs), errs)
	}
	want := map[string]string{
		"username":        "Username must be at least 3 characters",
		"email":           "Email is invalid",
		"password":        "Password must be at least 6 characters",
		"confirmPassword": "Passwords do not match",
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Fatalf("field %s: got %q, want %q", field, errs[field], msg)
		}
	}
}

func TestValidateRegisterRequiredBeforeLength(t *testing.T) {
	errs := ValidateRegister("", "", "", "")
	if errs["username"] != "Username is required" {
		t.Fatalf("unexpected username message: %q", errs["username"])
	}
	if errs["email"] != "Email is required" {
		t.Fatalf("unexpected email message: %q", errs["email"])
	}
	if errs["password"] != "Password is required" {
		t.Fatalf("unexpected password message: %q", errs["password"])
	}
	// Both blank, so they match; no confirm error is reported.
	if _, ok := errs["confirmPassword"]; ok {
		t.Fatalf("did not expect confirm error for two blank passwords")
	}
}

func TestValidateRegisterAcceptsGoodInput(t *testing.T) {
	if errs := ValidateRegister("maya", "maya@example.com", "hunter22", "hunter22"); !errs.Valid() {
		t.Fatalf("expected valid registration, got %v", errs)
	}
}

func TestValidateRegisterEmailShape(t *testing.T) {
	for _, bad := range []string{"plain", "a@b", "@b.com", "a b@c.de"} {
		if errs := ValidateRegister("maya", bad, "hunter22", "hunter22"); errs["email"] == "" {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if errs := ValidateRegister("maya", "a@b.co", "hunter22", "hunter22"); errs["email"] != "" {
		t.Fatalf("expected a@b.co to pass, got %q", errs["email"])
	}
}

func TestValidateItemBoundaries(t *testing.T) {
	good := ItemInput{
		Title:        "Key",
		Description:  "Left on the 3rd floor",
		ItemType:     "lost",
		CategoryID:   "2",
		DateOccurred: "2025-06-01",
		Location:     "Library",
	}
	if errs := ValidateItem(good); !errs.Valid() {
		t.Fatalf("expected valid item, got %v", errs)
	}

	short := good
	short.Title = "ab"
	short.Description = "too short"
	errs := ValidateItem(short)
	if errs["title"] != "Title must be at least 3 characters" {
		t.Fatalf("unexpected title message: %q", errs["title"])
	}
	if errs["description"] != "Description must be at least 10 characters" {
		t.Fatalf("unexpected description message: %q", errs["description"])
	}
}

func TestValidateItemTypeAndRequiredFields(t *testing.T) {
	errs := ValidateItem(ItemInput{Title: "Blue bag", Description: "Blue canvas bag with books", ItemType: "misplaced"})
	if errs["item_type"] == "" {
		t.Fatalf("expected unknown item type to be rejected")
	}
	for _, field := range []string{"category_id", "date_occurred", "location"} {
		if errs[field] == "" {
			t.Fatalf("expected %s to be required, got %v", field, errs)
		}
	}
}

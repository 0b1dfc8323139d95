package models

import "time"

type ItemType string

const (
	ItemLost  ItemType = "lost"
	ItemFound ItemType = "found"
)

// User is the authenticated-user record returned by the FindIt API.
// The web tier never sees password material.
type User struct {
	ID        int
	Username  string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

type Category struct {
	ID   int
	Name string
}

type Item struct {
	ID           int
	UUID         string
	Title        string
	Description  string
	ItemType     ItemType
	DatePosted   time.Time
	DateOccurred time.Time
	Location     string
	ImageURL     string
	IsResolved   bool
	Category     Category
	UserID       int
}

// ItemDraft carries the fields of a create/edit submission, already
// validated, plus an optional image upload.
type ItemDraft struct {
	Title        string
	Description  string
	ItemType     string
	CategoryID   string
	DateOccurred string
	Location     string
	IsResolved   *bool

	ImageFilename    string
	ImageContentType string
	ImageData        []byte
}

type NotificationKind string

const (
	NoticeSuccess NotificationKind = "success"
	NoticeError   NotificationKind = "error"
	NoticeInfo    NotificationKind = "info"
)

// Notification is an ephemeral message shown to the user until it is
// dismissed or its deadline passes.
type Notification struct {
	ID        string
	Message   string
	Kind      NotificationKind
	ExpiresAt time.Time
}

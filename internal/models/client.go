package models

// Canonical client statuses. Status is stored as free text; values outside
// this set are kept but never counted in a status bucket.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"
	StatusLost       = "Lost"
)

// Statuses lists the canonical statuses in display order.
var Statuses = []string{StatusNew, StatusInProgress, StatusClosed, StatusLost}

// ReminderDateLayout is the text layout of Client.ReminderDate.
const ReminderDateLayout = "2006-01-02"

// ClientFields holds every mutable field of a client. Updates replace all of
// them at once.
type ClientFields struct {
	Name         string
	Email        string
	Phone        string
	Company      string
	Status       string
	Note         string
	ReminderDate string
}

type Client struct {
	ID int64
	ClientFields
}

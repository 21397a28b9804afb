package notifications

import "time"

// UserNotification is a message addressed to a customer about one of
// their orders: cancellations, refusals, delivery confirmations, and
// staff-facing cancellation requests.
type UserNotification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	OrderID   string    `json:"order_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// VendorNotification is a message addressed to a vendor about one of
// their products, currently only low-stock warnings.
type VendorNotification struct {
	ID                string    `json:"id"`
	ProductName       string    `json:"product_name"`
	AvailableQuantity int       `json:"available_quantity"`
	VendorEmail       string    `json:"vendor_email"`
	VendorID          string    `json:"vendor_id"`
	Removed           bool      `json:"removed"`
	Message           string    `json:"message"`
	CreatedAt         time.Time `json:"created_at"`
}

// CancelRequestMarker tags advisory cancellation requests so staff can
// list them separately from ordinary customer notifications.
const CancelRequestMarker = "Cancel Request"

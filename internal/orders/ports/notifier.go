package ports

import "context"

// Notifier emits addressed messages as a side effect of lifecycle
// transitions. Emission is fire and forget: a failure must never roll
// back the order or inventory mutation that preceded it.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, email, orderID, message string) error
	NotifyVendor(ctx context.Context, vendorEmail, vendorID, productName string, availableQuantity int, message string) error
}

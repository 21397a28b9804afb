package authz

import "github.com/dejobratic/marketplace/internal/orders/domain"

// Role is the caller's role as asserted by the upstream gateway. Never
// trust client-supplied vendor identity: the email below must come from
// the authenticated caller context.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleVendor   Role = "Vendor"
	RoleCSR      Role = "Customer Service Representative"
	RoleAdmin    Role = "Admin"
)

// Caller carries authenticated identity through the request.
type Caller struct {
	UserID string
	Email  string
	Role   Role
}

// IsStaff reports whether the caller may manage any order regardless of
// owner: cancel, delete, status and delivered changes, unfiltered reads.
func (c Caller) IsStaff() bool {
	return c.Role == RoleCSR || c.Role == RoleAdmin
}

// CanUpdateOrder permits structural edits only to the owner of a
// still-pending order.
func CanUpdateOrder(caller Caller, order domain.Order) bool {
	return caller.UserID == order.UserID && order.CanUpdate()
}

// CanManageOrder permits the staff-only lifecycle operations.
func CanManageOrder(caller Caller) bool {
	return caller.IsStaff()
}

// CanMutateItem permits a line-item status change only to the vendor
// the line belongs to.
func CanMutateItem(caller Caller, item domain.OrderItem) bool {
	return caller.Role == RoleVendor && caller.Email == item.VendorEmail
}

// VisibleItems projects an order's items down to what the caller may
// see: vendors get only their own lines, owners and staff get all.
func VisibleItems(caller Caller, order domain.Order) []domain.OrderItem {
	if caller.Role == RoleVendor {
		return order.ItemsForVendor(caller.Email)
	}
	if caller.IsStaff() || caller.UserID == order.UserID {
		return order.Items
	}
	return nil
}

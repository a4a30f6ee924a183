package ordering

// OrderStatus represents the lifecycle stage of an order
type OrderStatus string

const (
	StatusPendingApproval OrderStatus = "PENDING_APPROVAL"
	StatusAccepted        OrderStatus = "ACCEPTED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusPreparing       OrderStatus = "PREPARING"
	StatusReady           OrderStatus = "READY"
	StatusAssigned        OrderStatus = "ASSIGNED"
	StatusPickedUp        OrderStatus = "PICKED_UP"
	StatusDelivered       OrderStatus = "DELIVERED"
	StatusCompleted       OrderStatus = "COMPLETED"
	StatusCancelled       OrderStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPendingApproval, StatusAccepted, StatusRejected, StatusPreparing, StatusReady,
		StatusAssigned, StatusPickedUp, StatusDelivered, StatusCompleted, StatusCancelled,
	}
}

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case StatusPendingApproval:
		return target == StatusAccepted || target == StatusRejected || target == StatusCancelled
	case StatusAccepted:
		return target == StatusPreparing || target == StatusCancelled
	case StatusPreparing:
		return target == StatusReady || target == StatusCancelled
	case StatusReady:
		return target == StatusAssigned || target == StatusCancelled
	case StatusAssigned:
		return target == StatusPickedUp || target == StatusReady || target == StatusCancelled
	case StatusPickedUp:
		return target == StatusDelivered
	case StatusDelivered:
		return target == StatusCompleted
	case StatusRejected, StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// HasDriver reports whether an order in this status carries a driver
func (s OrderStatus) HasDriver() bool {
	switch s {
	case StatusAssigned, StatusPickedUp, StatusDelivered, StatusCompleted:
		return true
	}
	return false
}

// ActiveDeliveryStatuses are the statuses counted against a driver's capacity
func ActiveDeliveryStatuses() []OrderStatus {
	return []OrderStatus{StatusAssigned, StatusPickedUp}
}

// OpenStatuses are the non-terminal statuses
func OpenStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPendingApproval, StatusAccepted, StatusPreparing, StatusReady,
		StatusAssigned, StatusPickedUp, StatusDelivered,
	}
}

// PaymentMethod is how the client pays
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "CARD"
	PaymentCash PaymentMethod = "CASH"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCard || m == PaymentCash
}

// PaymentStatus tracks the money side of the order
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"        // cash not yet collected
	PaymentPaid          PaymentStatus = "PAID"           // card captured upfront
	PaymentCollected     PaymentStatus = "COLLECTED"      // cash held by the driver
	PaymentSettled       PaymentStatus = "SETTLED"        // cash remitted by the driver
	PaymentRefundPending PaymentStatus = "REFUND_PENDING" // card payment to be refunded
	PaymentVoided        PaymentStatus = "VOIDED"         // cash order cancelled before collection
)

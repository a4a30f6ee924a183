package ordering

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	handoffCodeDigits = 4
	handoffCodeCost   = bcrypt.DefaultCost

	// MaxHandoffAttempts wrong codes lock cash collection for HandoffLockout
	MaxHandoffAttempts = 5
	HandoffLockout     = 15 * time.Minute
)

// GenerateHandoffCode returns a random zero-padded 4 digit code
func GenerateHandoffCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate handoff code: %w", err)
	}
	return fmt.Sprintf("%0*d", handoffCodeDigits, n.Int64()), nil
}

// SetHandoffCode stores the bcrypt hash of the code the client shows the
// driver at the door. Only the hash is kept.
func (o *Order) SetHandoffCode(code string) error {
	if o.PaymentMethod != PaymentCash {
		return shared.NewDomainError("NOT_CASH_ORDER", "Handoff codes only apply to cash orders")
	}
	if len(code) != handoffCodeDigits {
		return shared.NewDomainError("INVALID_HANDOFF_CODE", "Handoff code must have 4 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), handoffCodeCost)
	if err != nil {
		return fmt.Errorf("hash handoff code: %w", err)
	}
	o.CashCodeHash = string(hash)
	return nil
}

// VerifyHandoffCode checks the code presented at delivery
func (o *Order) VerifyHandoffCode(code string) bool {
	if o.CashCodeHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(o.CashCodeHash), []byte(code)) == nil
}

// CollectCash delivers a cash order: the driver presents the client's code
// and receives at least the total. Returns the change due to the client.
func (o *Order) CollectCash(code string, tendered decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if o.PaymentMethod != PaymentCash {
		return decimal.Zero, shared.NewDomainError("NOT_CASH_ORDER", "Order is not a cash order")
	}
	if o.Status != StatusPickedUp {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", "Cash can only be collected for picked up orders")
	}
	if o.HandoffLockedUntil != nil {
		if now.Before(*o.HandoffLockedUntil) {
			return decimal.Zero, shared.NewDomainError("HANDOFF_LOCKED",
				fmt.Sprintf("Too many wrong codes, retry after %s", o.HandoffLockedUntil.UTC().Format(time.RFC3339)))
		}
		o.HandoffLockedUntil = nil
		o.HandoffAttempts = 0
	}
	if !o.VerifyHandoffCode(code) {
		o.recordFailedHandoff(now)
		return decimal.Zero, shared.NewDomainError("INVALID_HANDOFF_CODE",
			fmt.Sprintf("Handoff code does not match, %d attempts left", MaxHandoffAttempts-o.HandoffAttempts))
	}
	if tendered.LessThan(o.Total) {
		return decimal.Zero, shared.NewDomainError("INSUFFICIENT_CASH",
			fmt.Sprintf("Tendered %s is less than the total %s", tendered.StringFixed(2), o.Total.StringFixed(2)))
	}
	if err := o.transition(StatusDelivered, now); err != nil {
		return decimal.Zero, err
	}
	change := tendered.Sub(o.Total).Round(2)
	o.CashTendered = tendered.Round(2)
	o.PaymentStatus = PaymentCollected
	o.DeliveredAt = &now

	o.AddDomainEvent(NewCashCollectedEvent(o, change))
	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return change, nil
}

// recordFailedHandoff counts a wrong code. The counter is state of its own:
// callers persist the order even though collection failed.
func (o *Order) recordFailedHandoff(now time.Time) {
	o.HandoffAttempts++
	if o.HandoffAttempts >= MaxHandoffAttempts {
		until := now.Add(HandoffLockout)
		o.HandoffLockedUntil = &until
	}
	o.UpdatedAt = now
	o.IncrementVersion()
}

// SettleCash records that the driver remitted the collected cash
func (o *Order) SettleCash(now time.Time) error {
	if o.PaymentStatus != PaymentCollected {
		return shared.NewDomainError("NOT_COLLECTED", "Only collected cash can be settled")
	}
	o.PaymentStatus = PaymentSettled
	o.SettledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewCashSettledEvent(o))
	return nil
}

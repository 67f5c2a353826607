package domain

import (
	"errors"
	"strings"
	"time"
)

// Status is the payment-side order status. PENDING is the only
// non-terminal value; every other status ends the payment lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusSettlement Status = "SETTLEMENT"
	StatusCapture    Status = "CAPTURE"
	StatusExpire     Status = "EXPIRE"
	StatusCancel     Status = "CANCEL"
	StatusDeny       Status = "DENY"
	StatusFailure    Status = "FAILURE"
)

func (s Status) Terminal() bool { return s != StatusPending }

// StatusFromGateway maps the payment gateway's transaction_status
// vocabulary onto the local enum. Unrecognized values (refund,
// chargeback, partial_refund, ...) collapse to FAILURE.
func StatusFromGateway(raw string) Status {
	switch strings.ToLower(raw) {
	case "settlement":
		return StatusSettlement
	case "capture":
		return StatusCapture
	case "pending":
		return StatusPending
	case "expire":
		return StatusExpire
	case "cancel":
		return StatusCancel
	case "deny":
		return StatusDeny
	default:
		return StatusFailure
	}
}

// LaundryStatus tracks physical processing progress, independent of
// payment status.
type LaundryStatus string

const (
	LaundryOnHold             LaundryStatus = "ON_HOLD"
	LaundryInProgress         LaundryStatus = "IN_PROGRESS"
	LaundryQualityCheck       LaundryStatus = "QUALITY_CHECK"
	LaundryReadyForCollection LaundryStatus = "READY_FOR_COLLECTION"
	LaundryCompleted          LaundryStatus = "COMPLETED"
)

var laundryOrder = map[LaundryStatus]int{
	LaundryOnHold:             0,
	LaundryInProgress:         1,
	LaundryQualityCheck:       2,
	LaundryReadyForCollection: 3,
	LaundryCompleted:          4,
}

// CanAdvanceLaundry reports whether the laundry workflow may move from
// one stage to another. Only forward moves are allowed.
func CanAdvanceLaundry(from, to LaundryStatus) bool {
	fi, ok1 := laundryOrder[from]
	ti, ok2 := laundryOrder[to]
	return ok1 && ok2 && ti > fi
}

type PaymentMethod string

const (
	PaymentAuto   PaymentMethod = "AUTO"
	PaymentManual PaymentMethod = "MANUAL"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CustomerInfo is snapshotted onto the order at checkout; later edits
// to the account never rewrite history.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Order struct {
	ID            string
	UserID        string
	StoreID       string
	Status        Status
	LaundryStatus LaundryStatus
	PaymentMethod PaymentMethod
	PaymentToken  string
	RedirectURL   string
	TotalPrice    int64 // rupiah
	Customer      CustomerInfo
	ShoeImages    []string
	Items         []PaketOrder
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaketOrder is an order line. PriceOrder, when non-nil, is the
// admin-agreed TOTAL for the line, not a per-unit price.
type PaketOrder struct {
	OrderID    string
	PaketID    string
	Quantity   int
	PriceOrder *int64
}

package common

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrAmendRejected = errors.New("amend rejected")
)

// Reasons for ErrInvalidOrder.
var (
	ErrNonPositiveQuantity = fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	ErrNonPositivePrice    = fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	ErrInvalidSide         = fmt.Errorf("%w: side must be buy or sell", ErrInvalidOrder)
	ErrSymbolMismatch      = fmt.Errorf("%w: symbol does not match book", ErrInvalidOrder)
	ErrDuplicateOrder      = fmt.Errorf("%w: order id already resting", ErrInvalidOrder)
	ErrUnknownOrderType    = fmt.Errorf("%w: unknown order type", ErrInvalidOrder)
)

// Reasons for ErrAmendRejected.
var (
	ErrOrderNotFound      = fmt.Errorf("%w: order not found", ErrAmendRejected)
	ErrQuantityNotReduced = fmt.Errorf("%w: new quantity must be positive and below the current quantity", ErrAmendRejected)
)

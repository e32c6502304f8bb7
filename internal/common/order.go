package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Header holds the fields every order variant carries.
type Header struct {
	ID        uint64    // Caller assigned, unique while resting
	Symbol    string    // Instrument identifier
	Side      Side      // Order side
	Quantity  int64     // Requested quantity
	Timestamp time.Time // Submission time, stamped by the engine when zero
}

// Order is the closed set of order variants accepted by the engine:
// LimitOrder, MarketOrder and IOCOrder. The unexported marker keeps other
// packages from adding variants the router does not know about.
type Order interface {
	Type() OrderType
	Head() Header
	// LimitPrice reports the limit price, ok is false for variants without
	// one.
	LimitPrice() (price decimal.Decimal, ok bool)
	// Rests reports whether an unmatched remainder is kept in the book.
	Rests() bool

	isOrder()
}

type LimitOrder struct {
	Header
	Price decimal.Decimal
}

type MarketOrder struct {
	Header
}

type IOCOrder struct {
	Header
	Price decimal.Decimal
}

var (
	_ Order = LimitOrder{}
	_ Order = MarketOrder{}
	_ Order = IOCOrder{}
)

func (o LimitOrder) Type() OrderType                     { return LimitOrderType }
func (o LimitOrder) Head() Header                        { return o.Header }
func (o LimitOrder) LimitPrice() (decimal.Decimal, bool) { return o.Price, true }
func (o LimitOrder) Rests() bool                         { return true }
func (LimitOrder) isOrder()                              {}

func (o MarketOrder) Type() OrderType                     { return MarketOrderType }
func (o MarketOrder) Head() Header                        { return o.Header }
func (o MarketOrder) LimitPrice() (decimal.Decimal, bool) { return decimal.Zero, false }
func (o MarketOrder) Rests() bool                         { return false }
func (MarketOrder) isOrder()                              {}

func (o IOCOrder) Type() OrderType                     { return IOCOrderType }
func (o IOCOrder) Head() Header                        { return o.Header }
func (o IOCOrder) LimitPrice() (decimal.Decimal, bool) { return o.Price, true }
func (o IOCOrder) Rests() bool                         { return false }
func (IOCOrder) isOrder()                              {}

// NewLimitOrder builds a validated limit order.
func NewLimitOrder(id uint64, symbol string, side Side, quantity int64, price decimal.Decimal, ts time.Time) (LimitOrder, error) {
	o := LimitOrder{
		Header: Header{ID: id, Symbol: symbol, Side: side, Quantity: quantity, Timestamp: ts},
		Price:  price,
	}
	if err := Validate(o); err != nil {
		return LimitOrder{}, err
	}
	return o, nil
}

// NewMarketOrder builds a validated market order.
func NewMarketOrder(id uint64, symbol string, side Side, quantity int64, ts time.Time) (MarketOrder, error) {
	o := MarketOrder{
		Header: Header{ID: id, Symbol: symbol, Side: side, Quantity: quantity, Timestamp: ts},
	}
	if err := Validate(o); err != nil {
		return MarketOrder{}, err
	}
	return o, nil
}

// NewIOCOrder builds a validated immediate-or-cancel order.
func NewIOCOrder(id uint64, symbol string, side Side, quantity int64, price decimal.Decimal, ts time.Time) (IOCOrder, error) {
	o := IOCOrder{
		Header: Header{ID: id, Symbol: symbol, Side: side, Quantity: quantity, Timestamp: ts},
		Price:  price,
	}
	if err := Validate(o); err != nil {
		return IOCOrder{}, err
	}
	return o, nil
}

// Validate runs the construction checks on an order. The engine calls it on
// every submission since variants can also be built as struct literals.
func Validate(o Order) error {
	if isNil(o) {
		return fmt.Errorf("%w: nil order", ErrInvalidOrder)
	}
	h := o.Head()
	if h.Quantity <= 0 {
		return fmt.Errorf("order %d: %w", h.ID, ErrNonPositiveQuantity)
	}
	if !h.Side.Valid() {
		return fmt.Errorf("order %d: %w", h.ID, ErrInvalidSide)
	}
	if price, ok := o.LimitPrice(); ok && !price.IsPositive() {
		return fmt.Errorf("order %d: %w", h.ID, ErrNonPositivePrice)
	}
	return nil
}

// isNil catches nil interfaces as well as nil pointer variants, whose
// promoted Head method would panic.
func isNil(o Order) bool {
	switch v := o.(type) {
	case nil:
		return true
	case *LimitOrder:
		return v == nil
	case *MarketOrder:
		return v == nil
	case *IOCOrder:
		return v == nil
	}
	return false
}

func (o LimitOrder) String() string {
	return fmt.Sprintf("%s %s %d %s@%s (id %d)", o.Type(), o.Side, o.Quantity, o.Symbol, o.Price, o.ID)
}

func (o MarketOrder) String() string {
	return fmt.Sprintf("%s %s %d %s (id %d)", o.Type(), o.Side, o.Quantity, o.Symbol, o.ID)
}

func (o IOCOrder) String() string {
	return fmt.Sprintf("%s %s %d %s@%s (id %d)", o.Type(), o.Side, o.Quantity, o.Symbol, o.Price, o.ID)
}

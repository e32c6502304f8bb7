package common

import "fmt"

type Side int

const (
	Buy Side = iota
	Sell
)

// Opposite returns the side a taker of this side trades against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

type OrderType int

const (
	// Limit orders are an order to buy or sell a security at a specified
	// price or better. Limit orders may rest on the order book until
	// filled.
	LimitOrderType OrderType = iota
	// Market orders are instructions to buy or sell immediately at whatever
	// price the book offers. They never rest.
	MarketOrderType
	// IOC (immediate-or-cancel) orders respect a limit price like a limit
	// order, but any quantity left after the matching pass is discarded.
	IOCOrderType
)

func (t OrderType) String() string {
	switch t {
	case LimitOrderType:
		return "limit"
	case MarketOrderType:
		return "market"
	case IOCOrderType:
		return "ioc"
	}
	return fmt.Sprintf("order_type(%d)", int(t))
}

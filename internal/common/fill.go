package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fill records one execution between a resting (maker) order and the
// incoming (taker) order. Fills are values; the engine keeps no copy.
type Fill struct {
	TradeID     uuid.UUID
	Symbol      string
	BuyOrderID  uint64
	SellOrderID uint64
	Price       decimal.Decimal // Maker's resting price
	Quantity    int64
	Taker       Side // Side of the order that triggered the match
	Timestamp   time.Time
}

// NewFill pairs the taker and maker ids into buy/sell ids according to the
// taker's side.
func NewFill(symbol string, taker Side, takerID, makerID uint64, price decimal.Decimal, quantity int64, ts time.Time) Fill {
	f := Fill{
		TradeID:   uuid.New(),
		Symbol:    symbol,
		Price:     price,
		Quantity:  quantity,
		Taker:     taker,
		Timestamp: ts,
	}
	if taker == Buy {
		f.BuyOrderID, f.SellOrderID = takerID, makerID
	} else {
		f.BuyOrderID, f.SellOrderID = makerID, takerID
	}
	return f
}

// MakerID returns the id of the resting side of the fill.
func (f Fill) MakerID() uint64 {
	if f.Taker == Buy {
		return f.SellOrderID
	}
	return f.BuyOrderID
}

// TakerID returns the id of the incoming side of the fill.
func (f Fill) TakerID() uint64 {
	if f.Taker == Buy {
		return f.BuyOrderID
	}
	return f.SellOrderID
}

func (f Fill) String() string {
	return fmt.Sprintf(
		`TradeID:   %s
Symbol:    %s
Buy:       %d
Sell:      %d
Taker:     %v
Quantity:  %d
Price:     %s
Timestamp: %v`,
		f.TradeID,
		f.Symbol,
		f.BuyOrderID,
		f.SellOrderID,
		f.Taker,
		f.Quantity,
		f.Price,
		f.Timestamp.Format(time.RFC3339Nano),
	)
}

// Quote is the price and aggregate quantity at the top of one side.
type Quote struct {
	Price    decimal.Decimal
	Quantity int64
	Orders   int
}

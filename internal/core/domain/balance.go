package domain

import "github.com/shopspring/decimal"

// Balance is the process-wide cash drawer, one total per currency.
type Balance struct {
	USDBalance decimal.Decimal `json:"usdBalance"`
	IQDBalance decimal.Decimal `json:"iqdBalance"`
}

// Get returns the balance in c.
func (b Balance) Get(c Currency) decimal.Decimal {
	if c == USD {
		return b.USDBalance
	}
	return b.IQDBalance
}

// Add returns a copy of b with delta applied to c.
func (b Balance) Add(c Currency, delta decimal.Decimal) Balance {
	if c == USD {
		b.USDBalance = b.USDBalance.Add(delta)
	} else {
		b.IQDBalance = b.IQDBalance.Add(delta)
	}
	return b
}

// BalanceDelta accumulates cash movements of one unit of work.
type BalanceDelta struct {
	USD decimal.Decimal `json:"usd"`
	IQD decimal.Decimal `json:"iqd"`
}

// Add accumulates amount into c.
func (d *BalanceDelta) Add(c Currency, amount decimal.Decimal) {
	if c == USD {
		d.USD = d.USD.Add(amount)
	} else {
		d.IQD = d.IQD.Add(amount)
	}
}

// Get returns the delta in c.
func (d BalanceDelta) Get(c Currency) decimal.Decimal {
	if c == USD {
		return d.USD
	}
	return d.IQD
}

// Neg returns the opposite movement.
func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{USD: d.USD.Neg(), IQD: d.IQD.Neg()}
}

// StockLevel is the inventory count of one product. MaxStock of zero means uncapped.
type StockLevel struct {
	ItemRef  string `json:"itemRef"`
	OnHand   int    `json:"onHand"`
	MaxStock int    `json:"maxStock"`
}

// Room returns how many units can still be restocked.
func (s StockLevel) Room() int {
	if s.MaxStock <= 0 {
		return int(^uint(0) >> 1)
	}
	if s.OnHand >= s.MaxStock {
		return 0
	}
	return s.MaxStock - s.OnHand
}

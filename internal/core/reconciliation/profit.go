package reconciliation

import (
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ItemProfit is (net selling price - buying price) * quantity, in the sale currency.
// Lines with a zero price contribute that zero and produce a warning.
func ItemProfit(item domain.LineItem, saleCurrency domain.Currency, rate domain.ExchangeRate) (decimal.Decimal, []domain.ProfitWarning, error) {
	warnings := priceWarnings(item)

	sell, err := Convert(item.NetSellingPrice(), item.ProductCurrency, saleCurrency, rate)
	if err != nil {
		return decimal.Zero, warnings, fmt.Errorf("convert selling price of %s: %w", item.ItemRef, err)
	}
	buy, err := Convert(item.BuyingPrice, item.ProductCurrency, saleCurrency, rate)
	if err != nil {
		return decimal.Zero, warnings, fmt.Errorf("convert buying price of %s: %w", item.ItemRef, err)
	}
	return sell.Sub(buy).Mul(decimal.NewFromInt(int64(item.Quantity))), warnings, nil
}

func priceWarnings(item domain.LineItem) []domain.ProfitWarning {
	if item.Quantity <= 0 {
		return nil
	}
	var out []domain.ProfitWarning
	if item.SellingPrice.IsZero() {
		out = append(out, domain.ProfitWarning{Code: domain.WarnZeroSellingPrice, ItemID: item.ID, ItemRef: item.ItemRef, Quantity: item.Quantity})
	}
	if item.BuyingPrice.IsZero() {
		out = append(out, domain.ProfitWarning{Code: domain.WarnZeroBuyingPrice, ItemID: item.ID, ItemRef: item.ItemRef, Quantity: item.Quantity})
	}
	return out
}

// SaleProfit computes the profit of a whole sale using its frozen rate.
//
// Without a payment split the result is the sum of line profits. With a split, profit is
// re-derived from what was actually received: received (both currencies valued in the
// sale currency) minus the total buying cost, then divided between USD and IQD in the
// ratio of the split.
func SaleProfit(sale domain.Sale) (domain.ProfitResult, error) {
	result := domain.ProfitResult{SaleID: sale.ID, Currency: sale.Currency}
	rate := sale.Rate

	if sale.Split == nil {
		total := decimal.Zero
		for _, item := range sale.Items {
			p, warnings, err := ItemProfit(item, sale.Currency, rate)
			result.Warnings = append(result.Warnings, warnings...)
			if err != nil {
				return result, err
			}
			total = total.Add(p)
		}
		result.Total = total
		if sale.Currency == domain.USD {
			result.USD = total
		} else {
			result.IQD = total
		}
		return result, nil
	}

	for _, item := range sale.Items {
		result.Warnings = append(result.Warnings, priceWarnings(item)...)
	}
	cost, err := buyingCost(sale)
	if err != nil {
		return result, err
	}
	usdShare, iqdShare, err := splitShares(sale)
	if err != nil {
		return result, err
	}
	received := usdShare.Add(iqdShare)
	profit := received.Sub(cost)
	result.Total = profit

	if received.IsZero() {
		if sale.Currency == domain.USD {
			result.USD = profit
		} else {
			result.IQD = profit
		}
		return result, nil
	}

	usdPart := profit.Mul(usdShare).Div(received)
	iqdPart := profit.Sub(usdPart)
	if result.USD, err = Convert(usdPart, sale.Currency, domain.USD, rate); err != nil {
		return result, err
	}
	if result.IQD, err = Convert(iqdPart, sale.Currency, domain.IQD, rate); err != nil {
		return result, err
	}
	return result, nil
}

// SaleRevenue returns what the sale brought in per currency: the split when present,
// otherwise the total in the sale currency.
func SaleRevenue(sale domain.Sale) domain.BalanceDelta {
	var out domain.BalanceDelta
	if sale.Split != nil {
		out.USD = sale.Split.USDAmount
		out.IQD = sale.Split.IQDAmount
		return out
	}
	out.Add(sale.Currency, sale.Total)
	return out
}

// SaleCost returns the buying cost of a sale's items per currency, attributed the same
// way SaleProfit attributes profit: to the sale currency, or across a payment split in
// the ratio it was received.
func SaleCost(sale domain.Sale) (domain.BalanceDelta, error) {
	var out domain.BalanceDelta
	cost, err := buyingCost(sale)
	if err != nil {
		return out, err
	}
	if sale.Split == nil {
		out.Add(sale.Currency, cost)
		return out, nil
	}
	usdShare, iqdShare, err := splitShares(sale)
	if err != nil {
		return out, err
	}
	received := usdShare.Add(iqdShare)
	if received.IsZero() {
		out.Add(sale.Currency, cost)
		return out, nil
	}
	usdPart := cost.Mul(usdShare).Div(received)
	if out.USD, err = Convert(usdPart, sale.Currency, domain.USD, sale.Rate); err != nil {
		return out, err
	}
	if out.IQD, err = Convert(cost.Sub(usdPart), sale.Currency, domain.IQD, sale.Rate); err != nil {
		return out, err
	}
	return out, nil
}

// buyingCost is the total buying cost of the sale's lines in the sale currency.
func buyingCost(sale domain.Sale) (decimal.Decimal, error) {
	cost := decimal.Zero
	for _, item := range sale.Items {
		buy, err := Convert(item.BuyingPrice, item.ProductCurrency, sale.Currency, sale.Rate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("convert buying price of %s: %w", item.ItemRef, err)
		}
		cost = cost.Add(buy.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return cost, nil
}

// splitShares values both components of the payment split in the sale currency.
func splitShares(sale domain.Sale) (decimal.Decimal, decimal.Decimal, error) {
	usdShare, err := Convert(sale.Split.USDAmount, domain.USD, sale.Currency, sale.Rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	iqdShare, err := Convert(sale.Split.IQDAmount, domain.IQD, sale.Currency, sale.Rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return usdShare, iqdShare, nil
}

// Package fees computes the charge owed on a transaction. Calculation is a
// pure function of the transaction's type, amount and channel.
package fees

import (
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

// schedule is a per-type fee rule: max(amount × rate, fixed), capped. Rates
// are in basis points so the percentage math stays in integers end to end.
type schedule struct {
	rateBps int64
	fixed   money.Amount // smallest unit
	cap     money.Amount // smallest unit
}

// Per-type schedules, amounts in kobo.
var schedules = map[transaction.Type]schedule{
	transaction.TypeTransfer:    {rateBps: 50, fixed: 50_00, cap: 2_500_00},   // 0.50%
	transaction.TypeWithdrawal:  {rateBps: 100, fixed: 100_00, cap: 5_000_00}, // 1.00%
	transaction.TypeBillPayment: {rateBps: 25, fixed: 25_00, cap: 1_000_00},   // 0.25%
}

// Per-channel flat surcharges, in kobo. Channels absent from the map are free.
var channelSurcharges = map[transaction.Channel]money.Amount{
	transaction.ChannelATM:  35_00,
	transaction.ChannelPOS:  25_00,
	transaction.ChannelUSSD: 10_00,
}

// Calculate returns the fee for the transaction. Deposits, refunds, interest,
// adjustments, cashbacks and reversals are fee-free; the channel surcharge is
// added on top and the total is floored at zero.
func Calculate(tx *transaction.Transaction) money.Money {
	currency := tx.Amount.Currency()

	var fee money.Amount
	if rule, ok := schedules[tx.Type]; ok {
		fee = rateOf(tx.Amount.Amount(), rule.rateBps)
		if fee < rule.fixed {
			fee = rule.fixed
		}
		if fee > rule.cap {
			fee = rule.cap
		}
	}

	fee += channelSurcharges[tx.Channel]
	if fee < 0 {
		fee = 0
	}

	m, _ := money.NewFromSmallestUnit(fee, currency)
	return m
}

const bpsScale = 10_000

// rateOf applies a basis-point rate, rounding half a kobo up. Integer
// arithmetic throughout so no kobo is ever lost to float representation.
func rateOf(amount money.Amount, bps int64) money.Amount {
	return money.Amount((int64(amount)*bps + bpsScale/2) / bpsScale)
}

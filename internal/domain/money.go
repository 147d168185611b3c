package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func BRL(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: currency.BRL}
}

// Format renders the amount with the currency symbol using the number
// conventions of tag.
func (m Money) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	amount := m.Amount.Round(2).InexactFloat64()
	return p.Sprint(currency.Symbol(m.Currency.Amount(amount)))
}

func (m Money) String() string {
	return m.Format(language.BrazilianPortuguese)
}

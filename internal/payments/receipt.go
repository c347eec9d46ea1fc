package payments

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Receipt is the client-facing view of a payment with a formatted amount.
type Receipt struct {
	PaymentID int64     `json:"payment_id"`
	ClientID  int64     `json:"client_id"`
	Amount    string    `json:"amount"`
	Method    Method    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

var receiptPrinter = message.NewPrinter(language.English)

// FormatAmount renders minor units as a localized currency string, e.g.
// "USD 120.00". Unknown codes fall back to USD rather than failing the
// receipt.
func FormatAmount(amountCents int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	return receiptPrinter.Sprintf("%v", unit.Amount(float64(amountCents)/100))
}

// ReceiptFor builds the receipt view of a payment.
func ReceiptFor(p Payment) Receipt {
	return Receipt{
		PaymentID: p.ID,
		ClientID:  p.ClientID,
		Amount:    FormatAmount(p.AmountCents, p.Currency),
		Method:    p.Method,
		Reference: p.Reference,
		PaidAt:    p.CreatedAt,
	}
}

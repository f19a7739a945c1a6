package utils

import (
	"cafe/src/models"
	"fmt"
	"net/url"
	"os"
)

// FormatPaise renders an integer paise amount as a rupee string for
// display and for the UPI "am" parameter. Money stays integral end to
// end; formatting is string arithmetic, never a float.
func FormatPaise(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// BuildUPILink assembles the upi://pay deep link the checkout screen
// renders as a QR code. The payment itself happens out-of-band in the
// customer's UPI app; PaymentRef ties a later reconciliation back to the
// order.
func BuildUPILink(order *models.Order) string {
	q := url.Values{}
	q.Set("pa", os.Getenv("UPI_VPA"))
	q.Set("pn", os.Getenv("UPI_PAYEE_NAME"))
	q.Set("am", FormatPaise(order.Total))
	q.Set("cu", "INR")
	q.Set("tr", order.PaymentRef)
	q.Set("tn", fmt.Sprintf("Order %s", order.OrderNumber))
	return "upi://pay?" + q.Encode()
}

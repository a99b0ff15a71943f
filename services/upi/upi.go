package upi

import (
	"fmt"
	"net/url"
	"os"
)

// PaymentLink builds a upi://pay deep link the frontend hands to the
// customer's UPI app. Amount is formatted with two decimals, currency is
// fixed to INR.
func PaymentLink(payeeVPA, payeeName, txnRef string, amount float64, note string) string {
	values := url.Values{}
	values.Set("pa", payeeVPA)
	values.Set("pn", payeeName)
	values.Set("am", fmt.Sprintf("%.2f", amount))
	values.Set("cu", "INR")
	values.Set("tr", txnRef)
	if note != "" {
		values.Set("tn", note)
	}

	return "upi://pay?" + values.Encode()
}

// PaymentLinkFromEnv builds a deep link using the payee configured in
// UPI_PAYEE_VPA / UPI_PAYEE_NAME.
func PaymentLinkFromEnv(txnRef string, amount float64, note string) (string, error) {
	vpa := os.Getenv("UPI_PAYEE_VPA")
	if vpa == "" {
		return "", fmt.Errorf("UPI_PAYEE_VPA environment variable is not set")
	}

	name := os.Getenv("UPI_PAYEE_NAME")
	if name == "" {
		name = "Gas Agency"
	}

	return PaymentLink(vpa, name, txnRef, amount, note), nil
}

package commerce

import "strings"

// MatchesContact reports whether an order belongs to the person identified
// by emailOrPhone. Email comparison is case-insensitive; phone comparison
// keeps only digits and compares the last ten, so "+91-98765-43210" matches
// "9876543210". Both the customer phone and the shipping-address phone are
// checked.
func MatchesContact(order *Order, emailOrPhone string) bool {
	supplied := strings.TrimSpace(emailOrPhone)
	if supplied == "" {
		return false
	}

	if strings.Contains(supplied, "@") {
		for _, candidate := range []string{order.Email, order.Customer.Email} {
			if candidate != "" && strings.EqualFold(candidate, supplied) {
				return true
			}
		}
		return false
	}

	suppliedDigits := lastDigits(supplied, 10)
	if suppliedDigits == "" {
		return false
	}
	candidates := []string{order.Phone, order.Customer.Phone}
	if order.ShippingTo != nil {
		candidates = append(candidates, order.ShippingTo.Phone)
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if lastDigits(candidate, 10) == suppliedDigits {
			return true
		}
	}
	return false
}

func lastDigits(s string, n int) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < n {
		return string(digits)
	}
	return string(digits[len(digits)-n:])
}

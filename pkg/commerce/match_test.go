package commerce

import "testing"

func TestMatchesContact(t *testing.T) {
	order := &Order{
		Email: "a@x.com",
		Phone: "+91-98765-43210",
		Customer: Customer{
			Email: "a@x.com",
			Phone: "+91-98765-43210",
		},
		ShippingTo: &Address{Phone: "022-5555-1234"},
	}

	tests := []struct {
		name    string
		contact string
		want    bool
	}{
		{name: "exact email", contact: "a@x.com", want: true},
		{name: "email is case insensitive", contact: "A@X.com", want: true},
		{name: "wrong email", contact: "b@x.com", want: false},
		{name: "phone without country code", contact: "9876543210", want: true},
		{name: "phone with country code and dashes", contact: "+91 98765 43210", want: true},
		{name: "shipping address phone", contact: "02255551234", want: true},
		{name: "wrong phone", contact: "1234543210", want: false},
		{name: "empty contact", contact: "", want: false},
		{name: "whitespace only", contact: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesContact(order, tt.contact); got != tt.want {
				t.Errorf("MatchesContact(%q) = %v, want %v", tt.contact, got, tt.want)
			}
		})
	}
}

func TestMatchesContactNoShippingAddress(t *testing.T) {
	order := &Order{Email: "a@x.com", Phone: "9876543210"}
	if !MatchesContact(order, "9876543210") {
		t.Error("expected phone match without shipping address")
	}
	if MatchesContact(order, "0000000000") {
		t.Error("expected no match for unknown phone")
	}
}

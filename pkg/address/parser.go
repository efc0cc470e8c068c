// Package address reconstructs structured fields from a one-line shipping
// address. It exists only as the final fallback when a forward shipment has
// to be built and neither an explicit new address nor the storefront's
// structured address is available; submissions should store structured
// fields so this parser is rarely hit.
package address

import (
	"regexp"
	"strings"
)

var pincodeRe = regexp.MustCompile(`\b\d{6}\b`)

// Parsed is a best-effort decomposition of a free-text address.
type Parsed struct {
	Line    string
	City    string
	State   string
	Pincode string
}

// Parse splits a comma-separated address string. The trailing tokens are
// assumed to be, in order from the end: pincode (6 digits, possibly embedded
// in the last token), state, city; everything before that is the street
// line. With fewer than three tokens the whole string becomes the street
// line and only the pincode is extracted.
func Parse(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Parsed{}
	}

	out := Parsed{Pincode: pincodeRe.FindString(trimmed)}

	tokens := splitTokens(trimmed)
	if len(tokens) < 3 {
		out.Line = trimmed
		return out
	}

	last := len(tokens) - 1
	// The pincode usually rides in the last token, alone or appended to
	// the state ("Maharashtra 400001"). Strip it and treat the remainder
	// as the state.
	state := strings.TrimSpace(pincodeRe.ReplaceAllString(tokens[last], ""))
	if state == "" && last >= 1 {
		state = tokens[last-1]
		last--
	}
	out.State = state

	if last >= 1 {
		out.City = tokens[last-1]
	}
	if last >= 2 {
		out.Line = strings.Join(tokens[:last-1], ", ")
	}
	if out.Line == "" {
		out.Line = trimmed
	}
	return out
}

func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

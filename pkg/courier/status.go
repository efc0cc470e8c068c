package courier

import (
	"strings"

	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
)

// statusRule maps carrier keywords to a canonical status. Rules are checked
// in order; the first keyword hit wins, so "RTO Delivered" classifies as
// delivered, not as an RTO rejection.
type statusRule struct {
	keywords []string
	status   entity.RequestStatus
}

var statusRules = []statusRule{
	{[]string{"delivered", "closed", "return received"}, entity.StatusDelivered},
	{[]string{"picked up", "picked-up", "pickup generated", "pickup complete"}, entity.StatusPickedUp},
	{[]string{"in transit", "in-transit", "shipped", "out for delivery"}, entity.StatusInTransit},
	{[]string{"scheduled", "generated", "awb assigned", "manifest"}, entity.StatusScheduled},
	{[]string{"rto", "rejected", "cancel"}, entity.StatusRejected},
}

// ClassifyStatus maps a carrier's free-text status to the canonical enum by
// case-insensitive substring match. Unrecognized text yields ok=false, which
// callers treat as "no transition" rather than an error.
func ClassifyStatus(raw string) (status entity.RequestStatus, ok bool) {
	lowered := strings.ToLower(raw)
	for _, rule := range statusRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.status, true
			}
		}
	}
	return "", false
}

package dto

import "time"

type AdminLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AdminActionRequest struct {
	Notes string `json:"notes"`
}

type AdminActionResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	// Warnings fold non-fatal side-effect failures (replacement order,
	// forward shipment) into the response; they are also appended to the
	// record's admin notes.
	Warnings []string `json:"warnings,omitempty"`
}

type AdminListQuery struct {
	Status string `query:"status"`
	Type   string `query:"type"`
	Date   string `query:"date"`
	Search string `query:"search"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type AdminListResponse struct {
	Requests []*RequestDetailResponse `json:"requests"`
	Counts   map[string]int64         `json:"counts"`
	Total    int64                    `json:"total"`
}

type AdminSyncResponse struct {
	Updated int `json:"updated"`
}

type AdminBulkDeleteRequest struct {
	RequestIDs []string `json:"request_ids" validate:"required,min=1"`
}

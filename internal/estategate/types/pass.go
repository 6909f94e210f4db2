package types

type RegisterPassRequest struct {
	VisitorName      string `json:"visitor_name"`
	ResidentID       string `json:"resident_id"`
	EstateID         string `json:"estate_id,omitempty"`
	Purpose          string `json:"purpose,omitempty"`
	Phone            string `json:"phone,omitempty"`
	ScheduledVisitAt string `json:"scheduled_visit_at,omitempty"` // optional RFC3339, informational
}

type RegisterPassResponse struct {
	OK         bool   `json:"ok"`
	ID         string `json:"id"`
	AccessCode string `json:"access_code"`
	ExpiresAt  string `json:"expires_at"`
}

// PassSummary is the resident-facing view of one of their own passes.
type PassSummary struct {
	ID               string `json:"id"`
	VisitorName      string `json:"visitor_name"`
	AccessCode       string `json:"access_code"`
	Purpose          string `json:"purpose"`
	State            string `json:"state"`
	CreatedAt        string `json:"created_at"`
	ExpiresAt        string `json:"expires_at"`
	ScheduledVisitAt string `json:"scheduled_visit_at,omitempty"`
}

type PassListResponse struct {
	OK     bool          `json:"ok"`
	Count  int           `json:"count"`
	Passes []PassSummary `json:"passes"`
}

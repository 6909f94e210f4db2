package types

type AccessLogView struct {
	ID         string `json:"id"`
	PassID     string `json:"pass_id,omitempty"`
	ResidentID string `json:"resident_id,omitempty"`
	VerifierID string `json:"verifier_id"`
	AccessCode string `json:"access_code"`
	Method     string `json:"method"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	LoggedAt   string `json:"logged_at"`
}

type AccessLogListResponse struct {
	OK    bool            `json:"ok"`
	Count int             `json:"count"`
	Logs  []AccessLogView `json:"logs"`
}

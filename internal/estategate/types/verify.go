package types

type VerifyRequest struct {
	Code       string `json:"code"`
	VerifierID string `json:"verifier_id"`
	Method     string `json:"method"` // "code-entry" | "qr-scan"
}

// VisitorView is the redacted visitor shown to security staff on a grant.
// Optional fields carry "Not provided" rather than empty strings so nothing
// renders as a blank at the gate.
type VisitorView struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Purpose    string `json:"purpose"`
	AccessCode string `json:"access_code"`
	ExpiresAt  string `json:"expires_at"`
}

// ResidentView is the redacted owner of the pass.  Name/apartment fall back
// to "Unknown" when the resident reference cannot be resolved.
type ResidentView struct {
	Name      string `json:"name"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone"`
}

type VerifyResponse struct {
	OK         bool          `json:"ok"`
	Outcome    string        `json:"outcome"` // "granted" | "denied"
	Reason     string        `json:"reason,omitempty"`
	ServerTime string        `json:"server_time"`
	Visitor    *VisitorView  `json:"visitor,omitempty"`
	Resident   *ResidentView `json:"resident,omitempty"`
}

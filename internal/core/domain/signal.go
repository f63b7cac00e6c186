package domain

// Signal kinds broadcast on the event bus. A signal carries no payload worth
// trusting: subscribers re-fetch authoritative state instead of reading the
// message, so a lost or duplicated delivery only costs an extra refresh.
const (
	SignalAuthChanged       = "auth-changed"
	SignalCartUpdated       = "cart-updated"
	SignalCredentialChanged = "credential-changed"
)

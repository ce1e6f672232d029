package telephony

import "context"

// Provider is the messaging/telephony collaborator. SendMessage
// delivers an outbound SMS; ProvisionNumber purchases a relay-capable
// number constrained to the given 3-digit area code and returns it in
// E.164 form.
type Provider interface {
	SendMessage(ctx context.Context, to, body string) error
	ProvisionNumber(ctx context.Context, areaCode string) (string, error)
}

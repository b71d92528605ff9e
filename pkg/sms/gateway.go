package sms

// Gateway defines the interface for sending SMS messages
type Gateway interface {
	// Send delivers a message to a single phone number in E.164-ish format.
	// Returns the provider message identifier and an error if the send failed.
	Send(to, message string) (string, error)

	// Name returns the name of the gateway implementation
	Name() string
}

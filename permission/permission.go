// Package permission answers whether microphone and accessibility access are
// currently granted and can trigger the OS consent prompts.
package permission

// MicStatus is the microphone authorization state reported by the OS.
type MicStatus int

const (
	MicNotDetermined MicStatus = iota
	MicAuthorized
	MicDenied
	MicRestricted
)

// String returns a short name for the status, for logging and status text.
func (s MicStatus) String() string {
	switch s {
	case MicAuthorized:
		return "authorized"
	case MicDenied:
		return "denied"
	case MicRestricted:
		return "restricted"
	default:
		return "not determined"
	}
}

// Microphone returns the current microphone authorization state.
func Microphone() MicStatus {
	return microphoneStatus()
}

// RequestMicrophone triggers the OS microphone consent prompt and blocks
// until the user responds (or returns immediately if already determined).
func RequestMicrophone() MicStatus {
	return requestMicrophone()
}

// Accessibility reports whether input injection is permitted. When prompt is
// true the OS consent dialog is shown if permission is missing.
func Accessibility(prompt bool) bool {
	return accessibilityEnabled(prompt)
}

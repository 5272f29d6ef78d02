//go:build !darwin

package permission

// Non-darwin platforms gate microphone and input access elsewhere (or not at
// all), so report the permissive state and let the capture layer surface any
// real device errors.

func microphoneStatus() MicStatus { return MicAuthorized }

func requestMicrophone() MicStatus { return MicAuthorized }

func accessibilityEnabled(_ bool) bool { return true }

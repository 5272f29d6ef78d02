//go:build darwin

package permission

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=10.15
#cgo LDFLAGS: -framework AVFoundation -framework ApplicationServices -framework Foundation

#include <stdbool.h>

extern int micAuthorizationStatus(void);
extern int micRequestAccess(void);
extern bool axIsTrusted(bool prompt);
*/
import "C"

// AVAuthorizationStatus values as returned by micAuthorizationStatus.
const (
	avNotDetermined = 0
	avRestricted    = 1
	avDenied        = 2
	avAuthorized    = 3
)

func fromAVStatus(v int) MicStatus {
	switch v {
	case avAuthorized:
		return MicAuthorized
	case avDenied:
		return MicDenied
	case avRestricted:
		return MicRestricted
	default:
		return MicNotDetermined
	}
}

func microphoneStatus() MicStatus {
	return fromAVStatus(int(C.micAuthorizationStatus()))
}

func requestMicrophone() MicStatus {
	return fromAVStatus(int(C.micRequestAccess()))
}

func accessibilityEnabled(prompt bool) bool {
	return bool(C.axIsTrusted(C.bool(prompt)))
}

// pkg/nessus/errors.go
package nessus

import (
	"errors"
	"fmt"
)

// Error taxonomy for the launch client. All errors can be classified with
// errors.As via the predicates below.

// NetworkError reports a transport-level failure of an HTTP call
// (connection refused, timeout, DNS).
type NetworkError struct {
	Op  string // operation being performed, e.g. "fetch api token"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports that a server response could not be interpreted:
// the API token pattern was absent from nessus6.js, or a session response
// was not the expected JSON.
type ParseError struct {
	What   string // what was being parsed, e.g. "nessus6.js"
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.What, e.Reason)
}

// LaunchError reports a non-2xx status on a scan launch attempt.
type LaunchError struct {
	ScanID uint32
	Status int
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("scan %d launch failed with status %d", e.ScanID, e.Status)
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsLaunch reports whether err is (or wraps) a LaunchError.
func IsLaunch(err error) bool {
	var le *LaunchError
	return errors.As(err, &le)
}

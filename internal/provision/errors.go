package provision

import "errors"

// Kind classifies a provisioning failure so callers can distinguish
// a bad download from a bad archive or a misbehaving installer without
// parsing error strings.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that did not
	// originate in this package.
	KindUnknown Kind = iota

	// KindNetwork covers unreachable URLs and non-2xx responses.
	KindNetwork

	// KindArchive covers corrupt or unsupported installer archives.
	KindArchive

	// KindProcess covers missing installer scripts and installer
	// processes that exit with a failure status.
	KindProcess

	// KindVerification means the installer ran but the executable is
	// still absent from the bin directory afterwards.
	KindVerification

	// KindFilesystem covers permission and removal failures on the
	// host filesystem.
	KindFilesystem
)

// String returns a short label for the kind, used in debug logs.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindArchive:
		return "archive"
	case KindProcess:
		return "process"
	case KindVerification:
		return "verification"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by the leaf operations in this
// package. The message is the wrapped error's message unchanged, so the
// user-visible report reads naturally; the Kind rides along for callers
// that want to branch on the failure class.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain.
// Errors produced outside this package report KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

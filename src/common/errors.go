package common

import "fmt"

// CoreErrType ...
type CoreErrType uint32

const (
	// InvalidSignature is returned when a signature fails cryptographic
	// verification.
	InvalidSignature CoreErrType = iota
	// UntrustedChain is returned when no verifiable path exists from a
	// trusted key to the tail of a proof chain.
	UntrustedChain
	// NoRoute is returned when no known member makes strict progress towards
	// a destination. It is transient; callers retry once section knowledge
	// has changed.
	NoRoute
	// SplitDeferred is returned when a section split cannot yet produce two
	// halves of at least MinElders each.
	SplitDeferred
	// IncompatibleState is returned when resuming from a paused state whose
	// version does not match the running binary.
	IncompatibleState
	// WrongSection is returned when a name does not fall under the prefix of
	// the section handling it.
	WrongSection
	// KeyNotFound ...
	KeyNotFound
)

// CoreErr ...
type CoreErr struct {
	errType CoreErrType
	context string
}

// NewCoreErr ...
func NewCoreErr(errType CoreErrType, context string) CoreErr {
	return CoreErr{
		errType: errType,
		context: context,
	}
}

// Error ...
func (e CoreErr) Error() string {
	m := ""
	switch e.errType {
	case InvalidSignature:
		m = "Invalid Signature"
	case UntrustedChain:
		m = "Untrusted Chain"
	case NoRoute:
		m = "No Route"
	case SplitDeferred:
		m = "Split Deferred"
	case IncompatibleState:
		m = "Incompatible State"
	case WrongSection:
		m = "Wrong Section"
	case KeyNotFound:
		m = "Not Found"
	}

	return fmt.Sprintf("%s, %s", m, e.context)
}

// IsCore checks that an error is of type CoreErr and that its code matches the
// provided CoreErr code.
func IsCore(err error, t CoreErrType) bool {
	coreErr, ok := err.(CoreErr)
	return ok && coreErr.errType == t
}

package bmtree

import "fmt"

// Error is the boundary error type for the bmtree package. It distinguishes
// admission failures (InvalidKeyIdentifier) from I/O failures (StorageFault)
// and, for the latter, whether the underlying fault was a lock contention
// (another process already holds the backing file open for writing).
type Error interface {
	error
	Locked() bool // true if this error stems from a file already locked by another writer
	Inner() error // the wrapped error, if any
}

type errorImpl struct {
	msg    string
	locked bool
	inner  error
}

func (err *errorImpl) Locked() bool { return err.locked }
func (err *errorImpl) Inner() error { return err.inner }

func (err *errorImpl) Error() string {
	if err.inner != nil {
		return fmt.Sprintf("%s: %s", err.msg, err.inner.Error())
	}
	return err.msg
}

// errorf formats a new Error with no wrapped cause.
func errorf(format string, a ...interface{}) *errorImpl {
	return &errorImpl{msg: fmt.Sprintf(format, a...)}
}

// wrapErrorf formats a new Error that wraps another.
func wrapErrorf(err error, format string, a ...interface{}) *errorImpl {
	return &errorImpl{msg: fmt.Sprintf(format, a...), inner: err}
}

// lockedErrorf formats a new Error marked Locked(), for use when a
// Storage implementation detects it is not the sole writer.
func lockedErrorf(format string, a ...interface{}) *errorImpl {
	err := errorf(format, a...)
	err.locked = true
	return err
}

// invalidKeyIdentifierError reports that id failed the admission predicate
// of sign or wipe. Per spec.md §7, the Tree is left unchanged.
func invalidKeyIdentifierError(op string, id KeyIdentifier) Error {
	return errorf("%s called with invalid key identifier %s", op, id)
}

// storageFaultError wraps any failure surfaced by the backing Storage
// (short read, short write, seek past end). Callers must treat the Tree
// as poisoned after receiving one and reload from disk; see spec.md §7.
func storageFaultError(context string, err error) Error {
	if e, ok := err.(Error); ok {
		wrapped := wrapErrorf(e, "storage fault: %s", context)
		wrapped.locked = e.Locked()
		return wrapped
	}
	return wrapErrorf(err, "storage fault: %s", context)
}

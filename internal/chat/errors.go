package chat

import "errors"

// Controller-level sentinel errors. Transport failures during polling are
// never surfaced as errors; they show up only in Status.
var (
	// ErrNoTask is returned by Send when no task is selected.
	ErrNoTask = errors.New("chat: no task selected")
	// ErrEmpty is returned by Send when the text is blank after trimming.
	ErrEmpty = errors.New("chat: empty message")
	// ErrSendFailed wraps the transport failure of a Send. The optimistic
	// message is kept in the store with its Failed flag set.
	ErrSendFailed = errors.New("chat: send failed")
	// ErrDisposed is returned by every call made after Dispose.
	ErrDisposed = errors.New("chat: controller disposed")
)

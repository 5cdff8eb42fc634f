package apperr

import (
	"errors"
	"fmt"

	"github.com/hot-channels-bot/internal/utils"
)

// Kind classifies why a run failed
type Kind int

const (
	// KindUnknown is reported for errors that did not come from a pipeline stage
	KindUnknown Kind = iota
	// KindConfiguration means the workspace or the config file must be fixed before the next run
	KindConfiguration
	// KindChannelFetch means the public channel list could not be fetched or decoded
	KindChannelFetch
	// KindHistoryFetch means a channel's message history could not be fetched or decoded
	KindHistoryFetch
	// KindJoin means the bot failed to join a channel
	KindJoin
	// KindPost means the ranking could not be posted
	KindPost
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindChannelFetch:
		return "channel_fetch"
	case KindHistoryFetch:
		return "history_fetch"
	case KindJoin:
		return "join"
	case KindPost:
		return "post"
	default:
		return "unknown"
	}
}

// Error is a pipeline failure tagged with its kind
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the upstream failure might clear up by itself.
// Configuration errors never do.
func (e *Error) Transient() bool {
	if e.Kind == KindConfiguration {
		return false
	}
	return utils.IsTransientError(e.Err)
}

// New wraps err with a kind and the name of the failing operation
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configf builds a configuration error from a format string
func Configf(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first Error found in err's chain
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

package wrap

import (
	"context"
	"errors"
)

// ctxError carries the LogCtx of the place where an error was first noticed.
type ctxError struct {
	err    error
	logCtx LogCtx
}

func (e *ctxError) Error() string { return e.err.Error() }

func (e *ctxError) Unwrap() error { return e.err }

// Error wraps an error with the current LogCtx from the context.
// The outermost wrapper wins when the error is logged.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c, _ := FromContext(ctx)
	return &ctxError{
		err:    err,
		logCtx: c,
	}
}

// ErrorCtx returns ctx with the LogCtx carried by err merged over it. Fields
// the error does not set, such as the request id of the caller, are kept.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *ctxError
	if errors.As(err, &e) && e != nil {
		return WithLogCtx(ctx, e.logCtx)
	}
	return ctx
}

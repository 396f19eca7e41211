package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLogCtx_MergesMissingFields(t *testing.T) {
	ctx := WithIMEI(context.Background(), "123")
	ctx = WithLogCtx(ctx, LogCtx{Action: "connect"})

	lc, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "123", lc.IMEI)
	assert.Equal(t, "connect", lc.Action)
}

func TestError_NilStaysNil(t *testing.T) {
	assert.NoError(t, Error(context.Background(), nil))
}

func TestErrorCtx_RestoresContext(t *testing.T) {
	base := errors.New("dial failed")
	err := Error(WithAction(context.Background(), "push_dial"), base)

	assert.ErrorIs(t, err, base)

	ctx := ErrorCtx(context.Background(), err)
	lc, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "push_dial", lc.Action)
}

func TestErrorCtx_KeepsCallerFields(t *testing.T) {
	err := Error(WithIMEI(WithAction(context.Background(), "geocode"), "356938035643809"), errors.New("timeout"))

	caller := WithAction(WithRequestID(context.Background(), "req-7"), "http_request")
	lc, ok := FromContext(ErrorCtx(caller, err))
	assert.True(t, ok)
	assert.Equal(t, "geocode", lc.Action)
	assert.Equal(t, "356938035643809", lc.IMEI)
	assert.Equal(t, "req-7", lc.RequestID)
}

func TestErrorCtx_PlainError(t *testing.T) {
	ctx := WithAction(context.Background(), "render")
	assert.Equal(t, ctx, ErrorCtx(ctx, errors.New("plain")))
}

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapReturnsNilForNilCause(t *testing.T) {
	require.NoError(t, Wrap("context", nil))
}

func TestWrapFormatsContextAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap("reading header", cause)
	require.EqualError(t, err, "reading header: boom")
}

func TestNewHasNoCause(t *testing.T) {
	err := New("bad magic")
	require.EqualError(t, err, "bad magic")
}

func TestUnwrapCompatibleWithErrorsIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	wrapped := Wrap("parsing", sentinel)
	require.True(t, errors.Is(wrapped, sentinel))
}

func TestReportNilReporterIsNoop(t *testing.T) {
	require.NotPanics(t, func() { Report(nil, "message") })
}

func TestReportInvokesReporter(t *testing.T) {
	var got string
	Report(func(msg string) { got = msg }, "hello")
	require.Equal(t, "hello", got)
}

func TestReportfFormats(t *testing.T) {
	var got string
	Reportf(func(msg string) { got = msg }, "count=%d", 3)
	require.Equal(t, "count=3", got)
}

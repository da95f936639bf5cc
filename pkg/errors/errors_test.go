package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mediakit/pkg/errors"
)

type recordingHandler struct {
	errs   []*errors.Error
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.Error)      { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }

func installHandler(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func TestErrorFormatting(t *testing.T) {
	underlying := stderrors.New("connection refused")

	err := &errors.Error{
		Op:   "media.assetLoader.open",
		Kind: errors.KindLoad,
		Err:  underlying,
	}
	assert.Equal(t, "media.assetLoader.open [load]: connection refused", err.Error())
	assert.ErrorIs(t, err, underlying)

	withChannel := &errors.Error{
		Op:      "channel.HandleMethodCall",
		Kind:    errors.KindParsing,
		Channel: "mediakit/video_player",
		Err:     underlying,
	}
	assert.Contains(t, withChannel.Error(), "channel=mediakit/video_player")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "platform", errors.KindPlatform.String())
	assert.Equal(t, "parsing", errors.KindParsing.String())
	assert.Equal(t, "load", errors.KindLoad.String())
	assert.Equal(t, "playback", errors.KindPlayback.String())
	assert.Equal(t, "panic", errors.KindPanic.String())
	assert.Equal(t, "unknown", errors.KindUnknown.String())
}

func TestReport(t *testing.T) {
	h := installHandler(t)

	errors.Report(&errors.Error{Op: "op", Kind: errors.KindPlayback, Err: stderrors.New("x")})
	require.Len(t, h.errs, 1)
	assert.False(t, h.errs[0].Timestamp.IsZero(), "Report must stamp the error")

	errors.Report(nil)
	assert.Len(t, h.errs, 1)
}

func TestRecover(t *testing.T) {
	h := installHandler(t)

	func() {
		defer errors.Recover("test.op")
		panic("boom")
	}()

	require.Len(t, h.panics, 1)
	p := h.panics[0]
	assert.Equal(t, "test.op", p.Op)
	assert.Equal(t, "boom", p.Value)
	assert.NotEmpty(t, p.StackTrace)
	assert.Contains(t, p.Error(), "panic in test.op")
}

func TestRecoverWithoutPanic(t *testing.T) {
	h := installHandler(t)

	func() {
		defer errors.Recover("test.op")
	}()

	assert.Empty(t, h.panics)
}

func TestParseError(t *testing.T) {
	err := &errors.ParseError{
		Channel:  "mediakit/video_player/events",
		DataType: "map",
		Got:      42,
	}
	assert.Contains(t, err.Error(), "mediakit/video_player/events")
	assert.Contains(t, err.Error(), "int")
}

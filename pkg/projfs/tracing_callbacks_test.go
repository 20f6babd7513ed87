package projfs_test

import (
	"context"
	"testing"

	"github.com/buildbarn/bb-projfs/internal/mock"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

func TestTracingCallbacks(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	spanRecorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	baseCallbacks := mock.NewMockCallbacks(ctrl)
	callbacks := projfs.NewTracingCallbacks(baseCallbacks, tracerProvider)

	t.Run("OnEnumerateDirectory", func(t *testing.T) {
		// The span must be propagated to the provider, so that
		// calls against storage become children of it.
		baseCallbacks.EXPECT().OnEnumerateDirectory(gomock.Any(), uint64(0), "src", 123, "ls").DoAndReturn(
			func(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) projfs.Result {
				require.True(t, trace.SpanContextFromContext(ctx).IsValid())
				return projfs.ResultSuccess
			})

		require.Equal(t, projfs.ResultSuccess, callbacks.OnEnumerateDirectory(ctx, 0, "src", 123, "ls"))

		spans := spanRecorder.Ended()
		require.Len(t, spans, 1)
		require.Equal(t, "Callbacks.OnEnumerateDirectory", spans[0].Name())
		require.Contains(t, spans[0].Attributes(), attribute.String("relative_path", "src"))
		require.Contains(t, spans[0].Attributes(), attribute.String("result", "Success"))
		require.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("OnGetFileStream", func(t *testing.T) {
		providerID := make([]byte, projfs.PlaceholderIDLength)
		contentID := make([]byte, projfs.PlaceholderIDLength)
		baseCallbacks.EXPECT().OnGetFileStream(gomock.Any(), uint64(0), "src/main.c", providerID, contentID, 123, "cat", 7).
			Return(projfs.ResultErrIO)

		require.Equal(t, projfs.ResultErrIO, callbacks.OnGetFileStream(ctx, 0, "src/main.c", providerID, contentID, 123, "cat", 7))

		spans := spanRecorder.Ended()
		require.Len(t, spans, 2)
		require.Equal(t, "Callbacks.OnGetFileStream", spans[1].Name())
		require.Contains(t, spans[1].Attributes(), attribute.String("result", "EIOError"))
		require.Equal(t, codes.Error, spans[1].Status().Code)
	})

	t.Run("Notifications", func(t *testing.T) {
		// Notifications are forwarded without creating spans.
		baseCallbacks.EXPECT().OnFileModified("src/main.c")
		callbacks.OnFileModified("src/main.c")
		require.Len(t, spanRecorder.Ended(), 2)
	})
}

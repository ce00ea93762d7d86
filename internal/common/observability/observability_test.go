package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestZeroValueIsUsable(t *testing.T) {
	var o Observability
	ctx, span := o.StartSpan(context.Background(), "render", attribute.String("channel", "email"))
	defer span.End()

	assert.NotNil(t, ctx)
	o.RecordDelivery(ctx, "email", "sent", time.Millisecond)
	o.RecordRender(ctx, "invite", "email")
	o.Shutdown()
}

func TestNewWithoutTracing(t *testing.T) {
	o := New("notifier-test", "")
	defer o.Shutdown()

	assert.Nil(t, o.tracerProvider)
	assert.NotNil(t, o.tracer)
	ctx, span := o.StartSpan(context.Background(), "job")
	o.RecordDelivery(ctx, "sms", "failed", 2*time.Millisecond)
	o.RecordRender(ctx, "gift_reminder", "sms")
	span.End()
}

package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
	uid    uid.NumberID
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation, id uid.NumberID) *Messaging {
	return &Messaging{client: client, ins: ins, uid: id}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPIssued")
	defer span.End()

	return m.publish(ctx, span, event.OTPIssuedDestination, msg.Phone, event.OTPIssuedMessage{
		EventID:     m.uid.Generate(),
		Phone:       msg.Phone,
		Destination: msg.Destination,
		IssuedAt:    msg.IssuedAt.Unix(),
		ExpiresAt:   msg.ExpiresAt.Unix(),
		Resend:      msg.Resend,
	})
}

func (m *Messaging) PublishOTPVerified(ctx context.Context, msg usecase.OTPVerifiedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPVerified")
	defer span.End()

	return m.publish(ctx, span, event.OTPVerifiedDestination, msg.Phone, event.OTPVerifiedMessage{
		EventID:    m.uid.Generate(),
		Phone:      msg.Phone,
		VerifiedAt: msg.VerifiedAt.Unix(),
	})
}

// publish keys messages by phone so partitioned brokers keep per-phone order.
func (m *Messaging) publish(ctx context.Context, span trace.Span, dest, phone string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, dest, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(phone),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

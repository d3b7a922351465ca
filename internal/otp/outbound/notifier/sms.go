package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultCountryPrefix   = "+91"
	DefaultMessageTemplate = "Your verification code is %06d"
)

type SMS struct {
	sender   sms.Sender
	ins      instrument.Instrumentation
	prefix   string
	template string
}

// NewSMS builds the notifier. Empty prefix or template fall back to the
// defaults; a template without a verb gets the code appended.
func NewSMS(sender sms.Sender, ins instrument.Instrumentation, countryPrefix, template string) *SMS {
	if countryPrefix = strings.TrimSpace(countryPrefix); countryPrefix == "" {
		countryPrefix = DefaultCountryPrefix
	}
	if strings.TrimSpace(template) == "" {
		template = DefaultMessageTemplate
	}
	if !strings.Contains(template, "%") {
		template += " %06d"
	}

	return &SMS{sender: sender, ins: ins, prefix: countryPrefix, template: template}
}

func (n *SMS) Destination(phone string) string {
	return n.prefix + phone
}

func (n *SMS) Deliver(ctx context.Context, phone string, code int) (string, error) {
	ctx, span := n.ins.Tracer("otp.outbound.notifier").Start(ctx, "Deliver",
		trace.WithAttributes(attribute.String("sms.prefix", n.prefix)))
	defer span.End()

	dest := n.Destination(phone)
	if err := n.sender.Send(ctx, dest, fmt.Sprintf(n.template, code)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return dest, nil
}

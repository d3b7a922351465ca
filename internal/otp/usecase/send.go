package usecase

import "context"

type SendInput struct {
	Phone string `validate:"required"`
}

// Send issues a new code for the phone, replacing any active one.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	in.Phone = normalizePhone(in.Phone)

	if err := s.validatePhone(in); err != nil {
		return nil, err
	}

	return s.issue(ctx, in.Phone, false)
}

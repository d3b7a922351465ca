package usecase

import "context"

type ResendInput struct {
	Phone string `validate:"required"`
}

// Resend behaves like Send but is rejected while the previous send is inside
// the cooldown window. Phones without a record are never throttled.
func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	in.Phone = normalizePhone(in.Phone)

	if err := s.validatePhone(in); err != nil {
		return nil, err
	}

	return s.issue(ctx, in.Phone, true)
}

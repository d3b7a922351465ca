package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

type recordSender struct {
	dest, msg string
	err       error
}

func (r *recordSender) Send(_ context.Context, destination, message string) error {
	r.dest, r.msg = destination, message
	return r.err
}

func TestSMS_Deliver(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		template string
		code     int
		wantDest string
		wantMsg  string
	}{
		{name: "defaults", code: 482915, wantDest: "+919000000001", wantMsg: "Your verification code is 482915"},
		{name: "custom prefix", prefix: " +1 ", code: 100000, wantDest: "+19000000001", wantMsg: "Your verification code is 100000"},
		{name: "custom template", template: "Code: %d", code: 123456, wantDest: "+919000000001", wantMsg: "Code: 123456"},
		{name: "template without verb", template: "Your code is", code: 654321, wantDest: "+919000000001", wantMsg: "Your code is 654321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			sender := &recordSender{}
			n := NewSMS(sender, instrument.NewNoop(), tt.prefix, tt.template)

			// Act
			dest, err := n.Deliver(context.Background(), "9000000001", tt.code)

			// Assert
			if err != nil {
				t.Fatalf("Deliver() error = %v", err)
			}
			if dest != tt.wantDest || sender.dest != tt.wantDest {
				t.Errorf("destination = %q / %q, want %q", dest, sender.dest, tt.wantDest)
			}
			if sender.msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", sender.msg, tt.wantMsg)
			}
		})
	}
}

func TestSMS_DeliverError(t *testing.T) {
	errSend := errors.New("provider rejected")
	n := NewSMS(&recordSender{err: errSend}, instrument.NewNoop(), "", "")

	dest, err := n.Deliver(context.Background(), "9000000001", 123456)

	if !errors.Is(err, errSend) {
		t.Errorf("Deliver() error = %v, want %v", err, errSend)
	}
	if dest != "" {
		t.Errorf("destination = %q, want empty", dest)
	}
}

package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc uc
}

// Send issues a new OTP and delivers it by SMS.
// @Summary Send OTP
// @Description Generates a six digit code for the phone, replacing any active one, and sends it by SMS.
// @Tags OTP
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body SendRequest true "Send payload"
// @Success 200 {object} router.successResponse{data=SendResponse} "OTP sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Duplicate request"
// @Failure 422 {object} router.errorResponse "Phone number required"
// @Failure 502 {object} router.errorResponse "Failed to send OTP"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Send(r.Context(), usecase.SendInput{Phone: req.Phone})
	if err != nil {
		return nil, err
	}

	return SendResponse{Destination: resp.Destination, ExpiresAt: resp.ExpiresAt}, nil
}

// Resend issues a new OTP once the cooldown has elapsed.
// @Summary Resend OTP
// @Description Same as send but rejected within one minute of the previous send.
// @Tags OTP
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body ResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=ResendResponse} "OTP resent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Phone number required"
// @Failure 429 {object} router.errorResponse "Resend cooldown active"
// @Failure 502 {object} router.errorResponse "Failed to send OTP"
// @Router /api/v1/otp/resend [post]
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req ResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Resend(r.Context(), usecase.ResendInput{Phone: req.Phone})
	if err != nil {
		return nil, err
	}

	return ResendResponse{Destination: resp.Destination, ExpiresAt: resp.ExpiresAt}, nil
}

// Verify consumes the active OTP when the code matches.
// @Summary Verify OTP
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "OTP verified"
// @Failure 400 {object} router.errorResponse "OTP not requested, expired or invalid"
// @Failure 422 {object} router.errorResponse "Phone and OTP are required"
// @Failure 429 {object} router.errorResponse "Too many invalid attempts"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Verify(r.Context(), usecase.VerifyInput{Phone: req.Phone, Code: req.OTP}); err != nil {
		return nil, err
	}

	return VerifyResponse{Verified: true}, nil
}

// Health reports liveness and the number of stored credentials.
// @Summary Health check
// @Tags OTP
// @Produce json
// @Success 200 {object} router.successResponse{data=HealthResponse} "ok"
// @Router /health [get]
func (h *HTTPEndpoint) Health(_ *router.Request) (any, error) {
	return HealthResponse{Status: "ok", LiveCredentials: h.uc.LiveCredentials()}, nil
}

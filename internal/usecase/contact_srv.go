package usecase

import (
	"context"
	"fmt"
	"strings"

	"instructor-portal/internal/dto/request"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/utils"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type ContactService interface {
	Submit(ctx context.Context, req *request.ContactRequest) error
}

type contactService struct {
	mailer  Mailer
	metrics metrics.Recorder
	config  *utils.Config
	policy  *bluemonday.Policy
	log     *zap.Logger
}

func NewContactService(mailer Mailer, recorder metrics.Recorder, config *utils.Config, log *zap.Logger) ContactService {
	return &contactService{
		mailer:  mailer,
		metrics: recorder,
		config:  config,
		policy:  bluemonday.StrictPolicy(),
		log:     log.With(zap.String("service", "contact")),
	}
}

func (s *contactService) Submit(ctx context.Context, req *request.ContactRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return newValidationError(utils.FormatValidationErrors(errs), errs)
	}

	name := s.clean(req.Name)
	if name == "" {
		return newValidationError("name is required", map[string]string{"name": "name is required"})
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p><strong>Name:</strong> %s</p>", name)
	fmt.Fprintf(&body, "<p><strong>Email:</strong> %s</p>", s.clean(req.Email))
	if req.Phone != "" {
		fmt.Fprintf(&body, "<p><strong>Phone:</strong> %s</p>", s.clean(req.Phone))
	}
	fmt.Fprintf(&body, "<p>%s</p>", strings.ReplaceAll(s.clean(req.Message), "\n", "<br>"))

	err := s.mailer.Send(ctx, mailer.Message{
		From:    s.config.Email.From,
		To:      []string{s.config.Email.Operator},
		ReplyTo: req.Email,
		Subject: "Contact form: " + strings.TrimSpace(req.Name),
		HTML:    body.String(),
	})
	s.metrics.RecordNotification("contact", err)
	if err != nil {
		s.log.Error("Failed to send contact message", zap.Error(err))
		return newUpstreamError("email", "could not send your message", err)
	}

	s.log.Info("Contact message sent", zap.Int("length", len(req.Message)))
	return nil
}

// clean strips markup and escapes what is left
func (s *contactService) clean(value string) string {
	return strings.TrimSpace(s.policy.Sanitize(value))
}

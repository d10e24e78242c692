package service

import (
	"context"
	"strings"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/mailer"
)

type IContactService interface {
	Send(ctx context.Context, req *dto.ContactRequest) error
}

type contactService struct {
	emailService mailer.IEmailService
	supportInbox string
}

func NewContactService(emailService mailer.IEmailService, supportInbox string) IContactService {
	return &contactService{emailService: emailService, supportInbox: supportInbox}
}

func (s *contactService) Send(ctx context.Context, req *dto.ContactRequest) error {
	return s.emailService.SendContactMessage(s.supportInbox, mailer.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Company: strings.TrimSpace(req.Company),
		Message: strings.TrimSpace(req.Message),
	})
}

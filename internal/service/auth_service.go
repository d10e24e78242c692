package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/mailer"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/authbus"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = 15 * time.Minute

type IAuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest, meta dto.ClientMeta) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, meta dto.ClientMeta) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string, meta dto.ClientMeta) error
	GetSession(ctx context.Context, accessToken string) (*dto.SessionResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

// AuthChangeNotifier tells an app session that its signed-in user changed.
type AuthChangeNotifier interface {
	Publish(appSessionID string, change authbus.Change) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher events.Publisher
	notifier       AuthChangeNotifier
	jwtSecret      string
	freeCredits    int
	logger         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher events.Publisher,
	notifier AuthChangeNotifier,
	jwtSecret string,
	freeCredits int,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		jwtSecret:      jwtSecret,
		freeCredits:    freeCredits,
		logger:         log,
	}
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest, meta dto.ClientMeta) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)
	now := time.Now()

	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	shop := &entity.Shop{
		Id:                   uuid.New(),
		Name:                 strings.TrimSpace(req.ShopName),
		SubscriptionStatus:   entity.SubscriptionStatusFree,
		FreeCreditsRemaining: s.freeCredits,
		NotificationEmails:   []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.ShopRepository().Create(ctx, shop); err != nil {
		return nil, err
	}
	if err := uow.UserRepository().CreateProfile(ctx, &entity.Profile{UserId: user.Id, ShopId: shop.Id, CreatedAt: now}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	resp, err := s.startSession(ctx, uow, user, false, meta)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUserSignedUp, map[string]interface{}{
		"user_id":   user.Id,
		"shop_id":   shop.Id,
		"shop_name": shop.Name,
	})
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, meta dto.ClientMeta) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, ErrOAuthOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	resp, err := s.startSession(ctx, uow, user, req.RememberMe, meta)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUserLogin, map[string]interface{}{
		"user_id": user.Id,
		"device":  meta.UserAgent,
		"time":    time.Now().Format(time.RFC822),
	})
	return resp, nil
}

// startSession signs the access token, stores a refresh token when asked and
// tells the caller's app session about the sign-in.
func (s *authService) startSession(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, remember bool, meta dto.ClientMeta) (*dto.LoginResponse, error) {
	now := time.Now()
	signed, expiresAt, err := issueAccessToken(s.jwtSecret, user, now)
	if err != nil {
		return nil, err
	}

	var rawRefreshToken string
	if remember {
		rawRefreshToken = uuid.New().String()
		err = uow.UserRepository().CreateRefreshToken(ctx, &entity.UserRefreshToken{
			Id:        uuid.New(),
			UserId:    user.Id,
			TokenHash: hashToken(rawRefreshToken),
			ExpiresAt: now.Add(refreshTokenTTL),
			IpAddress: meta.IpAddress,
			UserAgent: meta.UserAgent,
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	s.notify(meta.AppSessionId, authbus.Change{
		SignedIn:    true,
		AccessToken: signed,
		UserID:      user.Id.String(),
		Email:       user.Email,
		ExpiresAt:   expiresAt,
	})

	return &dto.LoginResponse{
		AccessToken:  signed,
		RefreshToken: rawRefreshToken,
		ExpiresAt:    expiresAt,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}

func (s *authService) notify(appSessionID string, change authbus.Change) {
	if s.notifier == nil || appSessionID == "" {
		return
	}
	if err := s.notifier.Publish(appSessionID, change); err != nil {
		s.logger.Warn("AUTH", "Failed to notify app session", map[string]interface{}{"app_session_id": appSessionID, "error": err.Error()})
	}
}

// Logout never fails from the caller's point of view.
func (s *authService) Logout(ctx context.Context, refreshToken string, meta dto.ClientMeta) error {
	if refreshToken != "" {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.UserRepository().RevokeRefreshToken(ctx, hashToken(refreshToken)); err != nil {
			s.logger.Warn("AUTH", "Failed to revoke refresh token", map[string]interface{}{"error": err.Error()})
		}
	}
	s.notify(meta.AppSessionId, authbus.Change{SignedIn: false})
	return nil
}

func (s *authService) GetSession(ctx context.Context, accessToken string) (*dto.SessionResponse, error) {
	claims, err := serverutils.ParseAccessToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userId, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status == entity.UserStatusBlocked {
		return nil, ErrUnauthorized
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &dto.SessionResponse{
		AccessToken: accessToken,
		UserId:      user.Id,
		Email:       user.Email,
		UserMetadata: map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"full_name":  user.FullName(),
		},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		// Don't leak exists
		return nil
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}
	now := time.Now()
	err = uow.UserRepository().CreateResetCode(ctx, &entity.ResetCode{
		Id:        uuid.New(),
		Email:     user.Email,
		Code:      code,
		ExpiresAt: now.Add(resetCodeTTL),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	go func() {
		if emailErr := s.emailService.SendResetCode(user.Email, code); emailErr != nil {
			s.logger.Error("AUTH", "Failed to send reset code email", map[string]interface{}{"error": emailErr.Error()})
		}
	}()
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	code, err := uow.UserRepository().FindResetCode(ctx,
		specification.ByResetCode{Email: req.Email, Code: req.Code},
		specification.Unused{},
		specification.NotExpired{Now: time.Now()},
	)
	if err != nil || code == nil {
		return ErrInvalidResetCode
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdatePassword(ctx, user.Id, string(hash)); err != nil {
		return err
	}
	if err := uow.UserRepository().MarkResetCodeUsed(ctx, code.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypePasswordReset, map[string]interface{}{"user_id": user.Id})
	return nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type IOAuthService interface {
	GetLoginURL(provider string) (*dto.OAuthLoginResponse, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
}

type oauthService struct {
	uowFactory     unitofwork.RepositoryFactory
	googleConf     *oauth2.Config
	userInfoURL    string
	eventPublisher events.Publisher
	jwtSecret      string
	freeCredits    int
	logger         logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, eventPublisher events.Publisher, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory:     uowFactory,
		googleConf:     conf,
		userInfoURL:    googleUserInfoURL,
		eventPublisher: eventPublisher,
		jwtSecret:      cfg.Auth.JwtSecret,
		freeCredits:    cfg.Billing.FreeCredits,
		logger:         log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (*dto.OAuthLoginResponse, error) {
	if provider != "google" {
		return nil, ErrUnsupportedProvider
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	state := base64.URLEncoding.EncodeToString(b)

	return &dto.OAuthLoginResponse{URL: s.googleConf.AuthCodeURL(state), State: state}, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, ErrUnsupportedProvider
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	gUser, err := s.fetchGoogleUser(ctx, s.googleConf.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	if gUser.Email == "" {
		return nil, fmt.Errorf("google account has no email")
	}

	user, err := s.findOrCreateUser(ctx, gUser)
	if err != nil {
		return nil, err
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	signed, expiresAt, err := issueAccessToken(s.jwtSecret, user, time.Now())
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUserLogin, map[string]interface{}{
		"user_id":  user.Id,
		"provider": "google",
	})

	return &dto.LoginResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}

func (s *oauthService) fetchGoogleUser(ctx context.Context, client *http.Client) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed getting user info: status %d", resp.StatusCode)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &u, nil
}

// findOrCreateUser links the Google identity, creating the user with a shop
// on first sign-in.
func (s *oauthService) findOrCreateUser(ctx context.Context, gUser *googleUser) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := uow.UserRepository().FindUserProvider(ctx, specification.ByProvider{Name: "google", ProviderUserID: gUser.ID})
	if err != nil {
		return nil, err
	}
	if link != nil {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: link.UserId})
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: gUser.Email})
	if err != nil {
		return nil, err
	}

	if user == nil {
		now := time.Now()
		firstName, lastName := gUser.GivenName, gUser.FamilyName
		if firstName == "" {
			firstName = gUser.Name
		}
		user = &entity.User{
			Id:        uuid.New(),
			Email:     strings.ToLower(gUser.Email),
			FirstName: firstName,
			LastName:  lastName,
			Status:    entity.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		shop := &entity.Shop{
			Id:                   uuid.New(),
			Name:                 defaultShopName(firstName),
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

		publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUserSignedUp, map[string]interface{}{
			"user_id":  user.Id,
			"shop_id":  shop.Id,
			"provider": "google",
		})
	}

	err = uow.UserRepository().SaveUserProvider(ctx, &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: gUser.ID,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save provider info: %w", err)
	}
	return user, nil
}

func defaultShopName(firstName string) string {
	if firstName == "" {
		return "My Shop"
	}
	return firstName + "'s Shop"
}

package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/dto"
)

type ISiteService interface {
	Status() *dto.SiteStatusResponse
	// Unlock returns the cookie value that marks the browser as unlocked.
	Unlock(password string) (string, error)
	IsUnlocked(cookie string) bool
}

type siteService struct {
	cfg         config.SiteConfig
	unlockToken string
}

// NewSiteService derives the unlock cookie value from the preview password so
// changing the password invalidates old cookies.
func NewSiteService(cfg config.SiteConfig, jwtSecret string) ISiteService {
	sum := sha256.Sum256([]byte("preview:" + cfg.PreviewPassword + ":" + jwtSecret))
	return &siteService{cfg: cfg, unlockToken: hex.EncodeToString(sum[:])}
}

func (s *siteService) Status() *dto.SiteStatusResponse {
	return &dto.SiteStatusResponse{
		Maintenance:      s.cfg.MaintenanceMode,
		PreviewProtected: s.cfg.MaintenanceMode && s.cfg.PreviewPassword != "",
		Message:          s.cfg.StatusMessage,
	}
}

func (s *siteService) Unlock(password string) (string, error) {
	if s.cfg.PreviewPassword == "" {
		return s.unlockToken, nil
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.PreviewPassword)) != 1 {
		return "", ErrInvalidPreviewPassword
	}
	return s.unlockToken, nil
}

func (s *siteService) IsUnlocked(cookie string) bool {
	if !s.cfg.MaintenanceMode {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(s.unlockToken)) == 1
}

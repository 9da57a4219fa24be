package setting

import (
	"context"

	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
)

// Settings exposed without authentication, e.g. for the console login page
var publicNames = []string{
	"site_name",
	"support_contact",
	"min_deposit_amount",
	"min_withdrawal_amount",
}

type Service struct {
	settingRepo repository.SettingRepo
}

func NewService(settingRepo repository.SettingRepo) *Service {
	return &Service{settingRepo: settingRepo}
}

func (s *Service) List(ctx context.Context) ([]models.Setting, error) {
	return s.settingRepo.ListSettings(ctx, nil)
}

func (s *Service) ListPublic(ctx context.Context) ([]models.Setting, error) {
	return s.settingRepo.ListSettings(ctx, publicNames)
}

func (s *Service) Get(ctx context.Context, name string) (models.Setting, error) {
	return s.settingRepo.GetSetting(ctx, name)
}

func (s *Service) Set(ctx context.Context, name string, value string) (models.Setting, error) {
	return s.settingRepo.UpsertSetting(ctx, name, value)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	return s.settingRepo.DeleteSetting(ctx, name)
}

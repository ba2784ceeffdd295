package service

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/tenancy"
)

// CredentialSealer 支付账户凭据加解密
type CredentialSealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// CreatePaymentAccountInput 创建支付账户输入
type CreatePaymentAccountInput struct {
	AccountName string
	Provider    string
	APIKey      string
	SecretKey   string
	WebhookURL  string
	IsTestMode  bool
}

// PaymentAccountService 支付账户服务
type PaymentAccountService struct {
	accountRepo repository.PaymentAccountRepository
	sealer      CredentialSealer
}

// NewPaymentAccountService 创建支付账户服务
func NewPaymentAccountService(accountRepo repository.PaymentAccountRepository, sealer CredentialSealer) *PaymentAccountService {
	return &PaymentAccountService{accountRepo: accountRepo, sealer: sealer}
}

// Create 在当前租户下创建支付账户
func (s *PaymentAccountService) Create(scope tenancy.Scope, input CreatePaymentAccountInput) (*models.PaymentAccount, error) {
	name := strings.TrimSpace(input.AccountName)
	if name == "" || len([]rune(name)) > 100 {
		return nil, ErrAccountNameRequired
	}
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	if !validProvider(provider) {
		return nil, ErrProviderInvalid
	}
	apiKey := strings.TrimSpace(input.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	webhookURL := strings.TrimSpace(input.WebhookURL)
	if !validWebhookURL(webhookURL) {
		return nil, ErrWebhookURLInvalid
	}

	exists, err := s.accountRepo.ExistsByName(scope, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountNameTaken
	}

	secret := strings.TrimSpace(input.SecretKey)
	if secret != "" && s.sealer != nil {
		sealed, err := s.sealer.Seal(secret)
		if err != nil {
			return nil, err
		}
		secret = sealed
	}

	account := &models.PaymentAccount{
		AccountName: name,
		Provider:    provider,
		APIKey:      apiKey,
		SecretKey:   secret,
		WebhookURL:  webhookURL,
		IsActive:    true,
		IsTestMode:  input.IsTestMode,
	}
	if err := s.accountRepo.Create(scope, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAccountNameTaken
		}
		return nil, err
	}
	logger.Tenant(account.TenantID).Infow("payment_account_created",
		"account_id", account.ID,
		"provider", provider,
		"is_test_mode", account.IsTestMode,
	)
	return account, nil
}

// Get 获取当前租户的支付账户
func (s *PaymentAccountService) Get(scope tenancy.Scope, id uint) (*models.PaymentAccount, error) {
	account, err := s.accountRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// List 当前租户的支付账户列表
func (s *PaymentAccountService) List(scope tenancy.Scope, filter repository.PaymentAccountListFilter) ([]models.PaymentAccount, int64, error) {
	filter.Provider = strings.ToLower(strings.TrimSpace(filter.Provider))
	return s.accountRepo.List(scope, filter)
}

// Deactivate 停用支付账户，历史交易仍保留引用
func (s *PaymentAccountService) Deactivate(scope tenancy.Scope, id uint) (*models.PaymentAccount, error) {
	account, err := s.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}
	if err := s.accountRepo.Deactivate(scope, account); err != nil {
		if errors.Is(err, repository.ErrStaleRow) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	logger.Tenant(account.TenantID).Infow("payment_account_deactivated", "account_id", account.ID)
	return account, nil
}

// RevealSecret 解密账户密钥（仅供内部签名使用）
func (s *PaymentAccountService) RevealSecret(account *models.PaymentAccount) (string, error) {
	if account == nil || account.SecretKey == "" {
		return "", nil
	}
	if s.sealer == nil {
		return account.SecretKey, nil
	}
	return s.sealer.Open(account.SecretKey)
}

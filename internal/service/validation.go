package service

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/paygate-next/internal/constants"
)

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,48}[a-z0-9])?$`)
	currencyPattern  = regexp.MustCompile(`^[A-Z]{3}$`)
)

// reservedSubdomains 平台保留的子域名
var reservedSubdomains = map[string]struct{}{
	"www":   {},
	"api":   {},
	"admin": {},
}

func normalizeSubdomain(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validSubdomain(subdomain string) bool {
	if !subdomainPattern.MatchString(subdomain) {
		return false
	}
	_, reserved := reservedSubdomains[subdomain]
	return !reserved
}

func validEmail(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(raw)
	return err == nil && addr.Address == raw
}

func normalizeCurrency(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func validCurrency(currency string) bool {
	return currencyPattern.MatchString(currency)
}

func validWebhookURL(raw string) bool {
	if raw == "" {
		return true
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func validProvider(provider string) bool {
	switch provider {
	case constants.PaymentProviderStripe,
		constants.PaymentProviderPayPal,
		constants.PaymentProviderSquare,
		constants.PaymentProviderRazorpay:
		return true
	default:
		return false
	}
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

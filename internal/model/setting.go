package model

import (
	"fmt"
	"net/url"
	"strconv"
)

type SettingKey string

const (
	SettingKeyFreeDailyLimit         SettingKey = "free_daily_limit"           // base daily quota for FREE plan keys
	SettingKeyPaidDailyLimit         SettingKey = "paid_daily_limit"           // base daily quota for PAID plan keys
	SettingKeyResellerDailyLimit     SettingKey = "reseller_daily_limit"       // base daily quota for RESELLER plan keys
	SettingKeyResellerMaxKeys        SettingKey = "reseller_max_keys"          // how many keys a reseller may hold
	SettingKeyResellerMaxLimitPerKey SettingKey = "reseller_max_limit_per_key" // ceiling for a reseller-issued key limit
	SettingKeyReferralBonusPerInvite SettingKey = "referral_bonus_per_invite"  // daily quota bonus granted per referred signup
	SettingKeyAPICreator             SettingKey = "api_creator"                // creator field of the response envelope
	SettingKeyJWTSecret              SettingKey = "jwt_secret"                 // HS256 secret, generated on first boot when empty
	SettingKeyUpstreamTimeout        SettingKey = "upstream_timeout_seconds"   // per-request timeout for upstream sources
	SettingKeyStatsSaveInterval      SettingKey = "stats_save_interval"        // minutes between stats flushes
	SettingKeyAdminRateLimit         SettingKey = "admin_rate_limit"           // admin mutations allowed per actor per window
	SettingKeyAdminRateWindow        SettingKey = "admin_rate_window"          // admin rate window (seconds)
	SettingKeyCORSAllowOrigins       SettingKey = "cors_allow_origins"         // comma separated origins; empty = none, "*" = all
	SettingKeyProxyURL               SettingKey = "proxy_url"                  // outbound proxy for upstream sources, empty = direct
)

type Setting struct {
	Key   SettingKey `json:"key" gorm:"primaryKey"`
	Value string     `json:"value" gorm:"not null"`
}

func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingKeyFreeDailyLimit, Value: "100"},
		{Key: SettingKeyPaidDailyLimit, Value: "5000"},
		{Key: SettingKeyResellerDailyLimit, Value: "500"},
		{Key: SettingKeyResellerMaxKeys, Value: "25"},
		{Key: SettingKeyResellerMaxLimitPerKey, Value: "500"},
		{Key: SettingKeyReferralBonusPerInvite, Value: "25"},
		{Key: SettingKeyAPICreator, Value: "JzuvGTI"},
		{Key: SettingKeyJWTSecret, Value: ""},
		{Key: SettingKeyUpstreamTimeout, Value: "15"},
		{Key: SettingKeyStatsSaveInterval, Value: "10"},
		{Key: SettingKeyAdminRateLimit, Value: "30"},
		{Key: SettingKeyAdminRateWindow, Value: "60"},
		{Key: SettingKeyCORSAllowOrigins, Value: ""},
		{Key: SettingKeyProxyURL, Value: ""},
	}
}

func (s *Setting) Validate() error {
	switch s.Key {
	case SettingKeyFreeDailyLimit, SettingKeyPaidDailyLimit, SettingKeyResellerDailyLimit,
		SettingKeyResellerMaxKeys, SettingKeyResellerMaxLimitPerKey,
		SettingKeyAdminRateLimit, SettingKeyAdminRateWindow:
		n, err := strconv.Atoi(s.Value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", s.Key)
		}
	case SettingKeyReferralBonusPerInvite:
		n, err := strconv.Atoi(s.Value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", s.Key)
		}
	case SettingKeyUpstreamTimeout:
		n, err := strconv.Atoi(s.Value)
		if err != nil || n < 1 || n > 120 {
			return fmt.Errorf("%s must be between 1 and 120 seconds", s.Key)
		}
	case SettingKeyStatsSaveInterval:
		if _, err := strconv.Atoi(s.Value); err != nil {
			return fmt.Errorf("%s must be an integer", s.Key)
		}
	case SettingKeyProxyURL:
		if s.Value == "" {
			return nil
		}
		parsedURL, err := url.Parse(s.Value)
		if err != nil {
			return fmt.Errorf("proxy URL is invalid: %w", err)
		}
		switch parsedURL.Scheme {
		case "http", "https", "socks", "socks5":
		default:
			return fmt.Errorf("proxy URL scheme must be http, https, or socks")
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("proxy URL must have a host")
		}
	}
	return nil
}

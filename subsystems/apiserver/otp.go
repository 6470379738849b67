package apiserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var otpValidateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateOTPKey creates a new TOTP secret for the write endpoints
func GenerateOTPKey(issuer, account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
}

// GenerateOTPCode returns the code valid for secret at t
func GenerateOTPCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCode(secret, t)
}

func (m *Manager) checkOTP(r *http.Request) error {
	if m.cfg.OTPSecret == "" {
		return errWritesDisabled
	}
	code := strings.TrimSpace(r.Header.Get(OTPHeader))
	if code == "" {
		return errMissingOTP
	}
	ok, err := totp.ValidateCustom(code, m.cfg.OTPSecret, m.now().UTC(), otpValidateOpts)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidOTP, err)
	}
	if !ok {
		return errInvalidOTP
	}
	return nil
}

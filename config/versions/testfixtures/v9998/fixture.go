package v9998

import (
	"context"
	"errors"
)

// Version is test fixture
type Version struct {
	ConfigErr bool
	Off       bool
}

// Public Errors
var (
	ErrUpgrade   = errors.New("do you expect me to talk?")
	ErrDowngrade = errors.New("no, I expect you to die")
)

// UpgradeConfig errors if v.ConfigErr is true
func (v *Version) UpgradeConfig(_ context.Context, c []byte) ([]byte, error) {
	if v.ConfigErr {
		return c, ErrUpgrade
	}
	return c, nil
}

// DowngradeConfig errors if v.ConfigErr is true
func (v *Version) DowngradeConfig(_ context.Context, c []byte) ([]byte, error) {
	if v.ConfigErr {
		return c, ErrDowngrade
	}
	return c, nil
}

// Disabled reports whether the version is switched off
func (v *Version) Disabled() bool {
	return v.Off
}

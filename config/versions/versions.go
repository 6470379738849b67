/*
versions handles config upgrades and downgrades

  - Versions must be stateful, and not rely upon type definitions in the config pkg. Instead versions must localise types to avoid issues with subsequent changes

  - Versions must upgrade to the next version. Do not retrospectively change versions to match new type changes. Create a new version

  - Versions must be registered in import.go
*/
package versions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/buger/jsonparser"
	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/log"
)

// UseLatestVersion used as version param to Deploy to automatically use the latest version
const UseLatestVersion = math.MaxUint16

var (
	errVersionIncompatible   = errors.New("version does not implement ConfigVersion")
	errNoVersions            = errors.New("error retrieving latest config version: No config versions are registered")
	errApplyingVersion       = errors.New("error applying version")
	errTargetVersion         = errors.New("target downgrade version is higher than the latest available version")
	errConfigVersionUnavail  = errors.New("version is higher than the latest available version")
	errConfigVersionNegative = errors.New("version is negative")
	errConfigVersionMax      = errors.New("version is above max versions")
	errAlreadyRegistered     = errors.New("version is already registered")
	errUpgrade               = errors.New("error upgrading")
	errDowngrade             = errors.New("error downgrading")
)

// DisabledVersion allows authors to rollback changes easily during development
type DisabledVersion interface {
	Disabled() bool
}

// ConfigVersion is a version that affects the general configuration
type ConfigVersion interface {
	UpgradeConfig(context.Context, []byte) ([]byte, error)
	DowngradeConfig(context.Context, []byte) ([]byte, error)
}

// manager contains versions registered during import init
type manager struct {
	m        sync.RWMutex
	versions []ConfigVersion
}

// Manager is a public instance of the config version manager
var Manager = &manager{}

// Deploy upgrades or downgrades the config between versions
// Pass UseLatestVersion to upgrade to the newest registered version
func (m *manager) Deploy(ctx context.Context, j []byte, wanted uint16) ([]byte, error) {
	latest, err := m.latest()
	if err != nil {
		return j, err
	}

	target := latest
	if wanted != UseLatestVersion {
		target = wanted
		if target > latest {
			return j, fmt.Errorf("%w: %d", errTargetVersion, target)
		}
	}

	m.m.RLock()
	defer m.m.RUnlock()

	current64, err := jsonparser.GetInt(j, "version")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		// With no version first upgrade is to Version0; we can skip Version0 since it's a no-op
		current64 = 0
	case err != nil:
		return j, fmt.Errorf("%w `version`: %w", common.ErrGettingField, err)
	case current64 < 0:
		return j, fmt.Errorf("%w `version`: %w", common.ErrGettingField, errConfigVersionNegative)
	case current64 >= UseLatestVersion:
		return j, fmt.Errorf("%w `version`: %w", common.ErrGettingField, errConfigVersionMax)
	}
	current := uint16(current64)

	switch {
	case target == current:
		return j, nil
	case latest < current:
		warnVersionUnavailable(current, latest)
		return j, fmt.Errorf("%w: %d", errConfigVersionUnavail, current)
	}

	for current != target {
		patchVersion := current + 1
		action := "upgrade to"
		configMethod := ConfigVersion.UpgradeConfig
		errAction := errUpgrade

		if target < current {
			patchVersion = current
			action = "downgrade from"
			configMethod = ConfigVersion.DowngradeConfig
			errAction = errDowngrade
		}

		log.Infof(log.ConfigMgr, "Running %s config version %v\n", action, patchVersion)

		patch := m.versions[patchVersion]
		if patch == nil {
			return j, fmt.Errorf("%w %s %v: %w", errApplyingVersion, action, patchVersion, errVersionIncompatible)
		}

		if j, err = configMethod(patch, ctx, j); err != nil {
			return j, fmt.Errorf("%w %s %v: %w: %w", errApplyingVersion, action, patchVersion, errAction, err)
		}

		if target < current {
			current--
		} else {
			current++
		}

		if j, err = jsonparser.Set(j, []byte(strconv.Itoa(int(current))), "version"); err != nil {
			return j, fmt.Errorf("%w `version` during %s %v: %w", common.ErrSettingField, action, patchVersion, err)
		}
	}

	log.Infoln(log.ConfigMgr, "Version management finished")

	return j, nil
}

func warnVersionUnavailable(current, latest uint16) {
	log.Warnf(log.ConfigMgr, "Config version %d is higher than the latest version %d known to this build", current, latest)
}

// registerVersion takes instances of config versions and adds them to the registry
func (m *manager) registerVersion(ver int, v any) {
	m.m.Lock()
	defer m.m.Unlock()
	if ver >= len(m.versions) {
		m.versions = append(m.versions, make([]ConfigVersion, ver-len(m.versions)+1)...)
	}
	if m.versions[ver] != nil {
		panic(fmt.Errorf("%w: %d", errAlreadyRegistered, ver))
	}
	cv, ok := v.(ConfigVersion)
	if !ok {
		panic(fmt.Errorf("%w: %d", errVersionIncompatible, ver))
	}
	m.versions[ver] = cv
}

// latest returns the highest version number
func (m *manager) latest() (uint16, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	for i := len(m.versions) - 1; i >= 0; i-- {
		v := m.versions[i]
		if v == nil {
			continue
		}
		if d, ok := v.(DisabledVersion); ok && d.Disabled() {
			continue
		}
		return uint16(i), nil
	}
	return 0, errNoVersions
}

// Version returns a version registered by import.go, or nil if not found
func (m *manager) Version(version uint16) ConfigVersion {
	m.m.RLock()
	defer m.m.RUnlock()
	if int(version) >= len(m.versions) {
		return nil
	}
	return m.versions[version]
}

// Latest returns the highest registered version
func (m *manager) Latest() (uint16, error) {
	return m.latest()
}

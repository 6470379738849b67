package versions

import (
	"fmt"
	"math"
	"testing"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/config/versions/testfixtures/v9998"
	v0 "github.com/emoji-connoisseur/connoisseur/config/versions/v0"
	v1 "github.com/emoji-connoisseur/connoisseur/config/versions/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	t.Parallel()
	m := manager{}
	_, err := m.Deploy(t.Context(), []byte(``), UseLatestVersion)
	assert.ErrorIs(t, err, errNoVersions)

	m.registerVersion(0, &v0.Version{})
	m.registerVersion(1, &v1.Version{})

	_, err = m.Deploy(t.Context(), []byte(`{"version":"not an int"}`), UseLatestVersion)
	require.ErrorIs(t, err, common.ErrGettingField, "Must throw the correct error trying to get version from bad json")

	_, err = m.Deploy(t.Context(), []byte(`{"version":65535}`), UseLatestVersion)
	require.ErrorIs(t, err, errConfigVersionMax, "Must throw the correct error when version is too high")

	_, err = m.Deploy(t.Context(), []byte(`{"version":-1}`), UseLatestVersion)
	require.ErrorIs(t, err, errConfigVersionNegative, "Must throw the correct error when version is negative")

	in := []byte(`{"version":0,"logs":{"emotes":{"channel":1,"settings":{"add":true}}}}`)
	j, err := m.Deploy(t.Context(), in, UseLatestVersion)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"emoteLog":{"channel":"1","settings":{"add":true}}}`, string(j))

	j2, err := m.Deploy(t.Context(), j, UseLatestVersion)
	require.NoError(t, err, "Deploy the same version again must not error")
	require.Equal(t, string(j), string(j2), "Deploy the same version again must not change config")

	_, err = m.Deploy(t.Context(), j, 2)
	assert.ErrorIs(t, err, errTargetVersion, "Downgrade to a unregistered version should not be allowed")

	j2, err = m.Deploy(t.Context(), j, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":0,"logs":{"emotes":{"channel":1,"settings":{"add":true}}}}`, string(j2), "Explicit downgrade should work correctly")

	j2, err = m.Deploy(t.Context(), []byte(`{"name":"unversioned"}`), UseLatestVersion)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"unversioned","version":1}`, string(j2))

	m.registerVersion(2, &v9998.Version{ConfigErr: true})
	_, err = m.Deploy(t.Context(), j, UseLatestVersion)
	require.ErrorIs(t, err, errUpgrade)
	require.ErrorIs(t, err, v9998.ErrUpgrade)

	m.versions = m.versions[:1]
	_, err = m.Deploy(t.Context(), j, UseLatestVersion)
	assert.ErrorIs(t, err, errConfigVersionUnavail, "Config version ahead of latest version should error")
}

func TestRegisterVersion(t *testing.T) {
	t.Parallel()
	m := manager{}

	m.registerVersion(0, &v0.Version{})
	assert.NotEmpty(t, m.versions)

	m.registerVersion(2, &v9998.Version{})
	require.Len(t, m.versions, 3, "Must allocate a space for missing version 1")
	require.NotNil(t, m.versions[2], "Must put Version 2 in the correct slot")
	require.Nil(t, m.versions[1], "Must leave Version 1 alone")

	m.registerVersion(1, &v1.Version{})
	require.Len(t, m.versions, 3, "Must leave len alone when registering out-of-sequence")
	require.NotNil(t, m.versions[1], "Must put Version 1 in the correct slot")

	assert.PanicsWithError(t, fmt.Sprintf("%s: %d", errAlreadyRegistered, 2), func() {
		m.registerVersion(2, &v9998.Version{})
	}, "registeringVersion must panic registering an existing version")

	assert.PanicsWithError(t, fmt.Sprintf("%s: %d", errVersionIncompatible, 3), func() {
		m.registerVersion(3, "not a version")
	}, "registeringVersion must panic registering something that is not a version")
}

func TestDeployMissingVersion(t *testing.T) {
	t.Parallel()
	m := manager{}
	m.registerVersion(0, &v0.Version{})
	m.registerVersion(2, &v9998.Version{})
	_, err := m.Deploy(t.Context(), []byte(`{"version":0}`), UseLatestVersion)
	assert.ErrorIs(t, err, errVersionIncompatible)
}

func TestLatest(t *testing.T) {
	t.Parallel()
	m := manager{}
	_, err := m.latest()
	require.ErrorIs(t, err, errNoVersions)

	m.registerVersion(0, &v0.Version{})
	m.registerVersion(1, &v1.Version{})
	v, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v)

	m.registerVersion(2, &v9998.Version{Off: true})
	v, err = m.latest()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v, "Disabled versions must be skipped")
}

func TestVersion(t *testing.T) {
	t.Parallel()
	m := manager{}
	m.registerVersion(0, &v0.Version{})
	l, err := m.latest()
	require.NoError(t, err, "latest must not error")
	assert.NotNil(t, m.Version(l))
	assert.Nil(t, m.Version(l+1))
	assert.Nil(t, m.Version(math.MaxUint16))
}

func TestRegisteredVersions(t *testing.T) {
	t.Parallel()
	l, err := Manager.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), l)
}

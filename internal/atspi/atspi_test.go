package atspi

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/slidecrawler/a11y"
)

func TestRoleName(t *testing.T) {
	assert.Equal(t, a11y.RoleAlert, roleName(2))
	assert.Equal(t, a11y.RoleDialog, roleName(16))
	assert.Equal(t, a11y.RoleFileChooser, roleName(19))
	assert.Equal(t, a11y.RoleFrame, roleName(23))
	assert.Equal(t, a11y.RoleMenu, roleName(33))
	assert.Equal(t, a11y.RoleMenuItem, roleName(35))
	assert.Equal(t, a11y.RolePushButton, roleName(43))
	assert.Equal(t, a11y.RoleText, roleName(61))
	assert.Equal(t, a11y.RoleToolBar, roleName(63))
	assert.Equal(t, a11y.RoleApplication, roleName(75))
	assert.Equal(t, a11y.RoleUnknown, roleName(9999))
}

func TestMapError(t *testing.T) {
	dead := dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownObject"}
	assert.ErrorIs(t, mapError(dead), a11y.ErrDead)
	assert.ErrorIs(t, mapError(&dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}), a11y.ErrDead)
	assert.ErrorIs(t, mapError(dbus.ErrClosed), a11y.ErrDead)

	unsupported := dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownInterface"}
	assert.ErrorIs(t, mapError(unsupported), a11y.ErrUnsupported)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestIsClickAction(t *testing.T) {
	assert.True(t, isClickAction("click"))
	assert.True(t, isClickAction("Press"))
	assert.True(t, isClickAction("activate"))
	assert.False(t, isClickAction("expand or contract"))
}

func TestConnectListsApplications(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" && os.Getenv("AT_SPI_BUS_ADDRESS") == "" {
		t.Skip("no session bus")
	}
	d, err := Connect(context.Background())
	if err != nil {
		t.Skipf("accessibility bus unavailable: %v", err)
	}
	defer d.Close()

	apps, err := d.Applications(context.Background())
	require.NoError(t, err)
	for _, a := range apps {
		_, err := a.Name(context.Background())
		if errors.Is(err, a11y.ErrDead) {
			continue
		}
		require.NoError(t, err)
	}
}

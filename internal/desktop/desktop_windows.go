//go:build windows

package desktop

import (
	"fmt"
	"unsafe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02

	policyKey   = `Software\Microsoft\Windows\CurrentVersion\Policies\ActiveDesktop`
	policyValue = "NoChangingWallPaper"
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
)

type windowsSetter struct{}

// New returns the Windows wallpaper setter.
func New() Setter {
	return windowsSetter{}
}

// Apply lifts the change policy, which would otherwise reject the call, and
// sets the wallpaper.
func (windowsSetter) Apply(path string) error {
	if err := setPolicy(0); err != nil {
		return fmt.Errorf("unlock wallpaper: %w", err)
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	ret, _, callErr := procSystemParametersInfoW.Call(
		spiSetDeskWallpaper,
		0,
		uintptr(unsafe.Pointer(p)),
		spifUpdateIniFile|spifSendChange,
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW: %w", callErr)
	}
	return nil
}

func (windowsSetter) Lock() error {
	return setPolicy(1)
}

func setPolicy(value uint32) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, policyKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open %s: %w", policyKey, err)
	}
	defer key.Close()
	if err := key.SetDWordValue(policyValue, value); err != nil {
		return fmt.Errorf("set %s: %w", policyValue, err)
	}
	log.WithField("value", value).Debug("wallpaper change policy updated")
	return nil
}

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// layersKey holds per-executable compatibility layers for the current user.
const layersKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion\AppCompatFlags\Layers`

func newCompatibilityStore() CompatibilityStore { return registryCompat{} }

type registryCompat struct{}

// SetLayers writes flags as a REG_SZ value named by the executable path.
func (registryCompat) SetLayers(exePath, flags string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, layersKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open compatibility key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(exePath, flags); err != nil {
		return fmt.Errorf("failed to write compatibility flags: %w", err)
	}
	return nil
}

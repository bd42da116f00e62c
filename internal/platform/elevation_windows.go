//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

func newElevationRequester() ElevationRequester { return uacElevation{} }

// uacElevation relaunches through the "runas" shell verb.
type uacElevation struct{}

func (uacElevation) IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

func (uacElevation) CanElevate() bool { return true }

func (uacElevation) Relaunch(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine current executable: %w", err)
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = windows.EscapeArg(a)
	}

	verb, _ := windows.UTF16PtrFromString("runas")
	file, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	params, err := windows.UTF16PtrFromString(strings.Join(quoted, " "))
	if err != nil {
		return err
	}
	cwd, err := windows.UTF16PtrFromString(filepath.Dir(exe))
	if err != nil {
		return err
	}

	if err := windows.ShellExecute(0, verb, file, params, cwd, windows.SW_NORMAL); err != nil {
		return fmt.Errorf("failed to relaunch elevated: %w", err)
	}
	return nil
}

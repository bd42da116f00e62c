//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

func newShortcutStore() ShortcutStore { return wscriptShortcuts{} }

// wscriptShortcuts reads and writes .lnk files through the WScript.Shell
// COM object.
type wscriptShortcuts struct{}

func (wscriptShortcuts) Extension() string { return ".lnk" }

func (s wscriptShortcuts) Locations() []string {
	home, _ := os.UserHomeDir()
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return []string{
		s.DesktopDir(),
		filepath.Join(home, "AppData", "Roaming", "Microsoft", "Windows", "Start Menu", "Programs"),
		filepath.Join(programData, "Microsoft", "Windows", "Start Menu", "Programs"),
	}
}

func (wscriptShortcuts) DesktopDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("USERPROFILE")
	}
	return filepath.Join(home, "Desktop")
}

func (wscriptShortcuts) Read(path string) (Shortcut, error) {
	sc := Shortcut{Path: path}
	err := withShortcut(path, func(link *ole.IDispatch) error {
		var err error
		if sc.Target, err = getString(link, "TargetPath"); err != nil {
			return err
		}
		if sc.Arguments, err = getString(link, "Arguments"); err != nil {
			return err
		}
		if sc.WorkingDir, err = getString(link, "WorkingDirectory"); err != nil {
			return err
		}
		sc.Description, _ = getString(link, "Description")
		return nil
	})
	return sc, err
}

func (wscriptShortcuts) SetArguments(path, args string) error {
	return withShortcut(path, func(link *ole.IDispatch) error {
		if _, err := oleutil.PutProperty(link, "Arguments", args); err != nil {
			return fmt.Errorf("failed to set shortcut arguments: %w", err)
		}
		if _, err := oleutil.CallMethod(link, "Save"); err != nil {
			return fmt.Errorf("failed to save shortcut: %w", err)
		}
		return nil
	})
}

func (wscriptShortcuts) Create(sc Shortcut) error {
	return withShortcut(sc.Path, func(link *ole.IDispatch) error {
		props := []struct{ name, value string }{
			{"TargetPath", sc.Target},
			{"Arguments", sc.Arguments},
			{"WorkingDirectory", sc.WorkingDir},
			{"Description", sc.Description},
		}
		for _, p := range props {
			if _, err := oleutil.PutProperty(link, p.name, p.value); err != nil {
				return fmt.Errorf("failed to set shortcut %s: %w", p.name, err)
			}
		}
		if _, err := oleutil.CallMethod(link, "Save"); err != nil {
			return fmt.Errorf("failed to save shortcut: %w", err)
		}
		return nil
	})
}

// withShortcut opens (or prepares) the shortcut at path and passes its
// IDispatch to fn. COM is initialised on a locked OS thread for the call.
func withShortcut(path string, fn func(link *ole.IDispatch) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE: already initialised on this thread.
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return fmt.Errorf("failed to initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("failed to create WScript.Shell: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query shell interface: %w", err)
	}
	defer shell.Release()

	link, err := oleutil.CallMethod(shell, "CreateShortcut", path)
	if err != nil {
		return fmt.Errorf("failed to open shortcut %s: %w", path, err)
	}
	linkDisp := link.ToIDispatch()
	defer linkDisp.Release()

	return fn(linkDisp)
}

func getString(link *ole.IDispatch, name string) (string, error) {
	v, err := oleutil.GetProperty(link, name)
	if err != nil {
		return "", fmt.Errorf("failed to read shortcut %s: %w", name, err)
	}
	defer v.Clear()
	return v.ToString(), nil
}

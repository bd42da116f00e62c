package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/tc-hib/winres"
	"github.com/tc-hib/winres/version"
)

// ProcessList implements ProcessInspector with gopsutil.
type ProcessList struct{}

// IsRunning reports whether any process has the given image name
// (case-insensitive). Processes whose name cannot be read are skipped.
func (ProcessList) IsRunning(ctx context.Context, imageName string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list processes: %w", err)
	}

	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(name, imageName) {
			return true, nil
		}
	}
	return false, nil
}

// DiskUsage implements DiskInspector with gopsutil.
type DiskUsage struct{}

// FreeSpace returns the bytes available on the filesystem holding path.
func (DiskUsage) FreeSpace(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to query disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}

// errNoVersionInfo is returned for executables without a VERSIONINFO resource.
var errNoVersionInfo = errors.New("no version resource")

// PEVersionReader implements VersionReader by parsing the VERSIONINFO
// resource of a PE file. It works on every OS.
type PEVersionReader struct{}

// FileVersion returns the "major.minor" file version of the executable.
// Malformed resource tables are reported as errors.
func (PEVersionReader) FileVersion(path string) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = "", fmt.Errorf("failed to parse resources from %s: %v", path, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rs, err := winres.LoadFromEXE(f)
	if err != nil {
		return "", fmt.Errorf("failed to load resources from %s: %w", path, err)
	}

	var raw []byte
	rs.WalkType(winres.RT_VERSION, func(resID winres.Identifier, langID uint16, data []byte) bool {
		raw = data
		return false
	})
	if raw == nil {
		return "", errNoVersionInfo
	}

	info, err := version.FromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse version resource: %w", err)
	}

	return fmt.Sprintf("%d.%d", info.FileVersion[0], info.FileVersion[1]), nil
}

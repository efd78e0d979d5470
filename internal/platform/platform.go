// Package platform describes the machine the installer runs on: the
// platform tag used in MeldMC client manifest names and the launcher's
// default Minecraft directory. Use Detect() for the current environment.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Tag selects a platform-specific client manifest.
type Tag string

const (
	Windows    Tag = "win"
	Mac        Tag = "mac"
	MacAarch64 Tag = "mac-aarch64"
	Linux      Tag = "linux"
)

// Tags lists every supported tag.
var Tags = []Tag{Windows, Mac, MacAarch64, Linux}

// Valid reports whether t is one of Tags.
func (t Tag) Valid() bool {
	for _, k := range Tags {
		if t == k {
			return true
		}
	}
	return false
}

// Parse validates a tag given on the command line.
func Parse(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown platform %q (want one of win, mac, mac-aarch64, linux)", s)
	}
	return t, nil
}

// Detect returns the tag for the running binary.
func Detect() Tag {
	return detectFor(runtime.GOOS, runtime.GOARCH)
}

func detectFor(goos, goarch string) Tag {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		if goarch == "arm64" {
			return MacAarch64
		}
		return Mac
	default:
		return Linux
	}
}

// DefaultMinecraftDir returns where the vanilla launcher keeps its data for
// the current OS, or "" if it cannot be determined.
func DefaultMinecraftDir() string {
	home, _ := os.UserHomeDir()
	return minecraftDirFor(runtime.GOOS, os.Getenv("APPDATA"), home)
}

func minecraftDirFor(goos, appData, home string) string {
	switch goos {
	case "windows":
		if appData != "" {
			return filepath.Join(appData, ".minecraft")
		}
	case "darwin":
		if home != "" {
			return filepath.Join(home, "Library", "Application Support", "minecraft")
		}
	default:
		if home != "" {
			return filepath.Join(home, ".minecraft")
		}
	}
	return ""
}

// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package dmi reads hardware identifiers from the DMI table.
package dmi

import (
	"context"
	"log/slog"

	"github.com/avfs/avfs"

	"github.com/retr0h/osrun/internal/exec"
)

// SysfsPath is the directory exposing DMI values.
const SysfsPath = "/sys/class/dmi/id"

// Provider looks up DMI values.
type Provider interface {
	// Read returns the value of a dmidecode string keyword such as
	// "system-uuid". ok is false when the value cannot be determined.
	Read(
		ctx context.Context,
		key string,
	) (value string, ok bool)
}

// Reader implements Provider using sysfs and dmidecode.
type Reader struct {
	logger      *slog.Logger
	fs          avfs.VFS
	execManager exec.Manager
	arch        string
	lookPath    func(file string) (string, error)
}

// sysfsNames maps dmidecode keywords to files under SysfsPath.
var sysfsNames = map[string]string{
	"baseboard-asset-tag":     "board_asset_tag",
	"baseboard-manufacturer":  "board_vendor",
	"baseboard-product-name":  "board_name",
	"baseboard-serial-number": "board_serial",
	"baseboard-version":       "board_version",
	"bios-release-date":       "bios_date",
	"bios-vendor":             "bios_vendor",
	"bios-version":            "bios_version",
	"chassis-asset-tag":       "chassis_asset_tag",
	"chassis-manufacturer":    "chassis_vendor",
	"chassis-serial-number":   "chassis_serial",
	"chassis-version":         "chassis_version",
	"system-manufacturer":     "sys_vendor",
	"system-product-name":     "product_name",
	"system-serial-number":    "product_serial",
	"system-uuid":             "product_uuid",
	"system-version":          "product_version",
}

// dmidecodeArches are the machine architectures for which dmidecode is run.
var dmidecodeArches = map[string]bool{
	"i386":    true,
	"i486":    true,
	"i586":    true,
	"i686":    true,
	"x86_64":  true,
	"amd64":   true,
	"aarch64": true,
	"arm64":   true,
}



// Package sysinfo describes the machine a solve ran on.
package sysinfo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// Info is stamped into reports so results from different machines can be
// compared.
type Info struct {
	Hostname string `json:"hostname,omitempty"`
	Platform string `json:"platform,omitempty"`
	CPU      string `json:"cpu,omitempty"`
	Cores    int    `json:"cores,omitempty"`
	RAM      string `json:"ram,omitempty"`
}

// Collect gathers host details. Probes that fail are logged at debug and
// leave their field empty.
func Collect(ctx context.Context) Info {
	var info Info

	if h, err := host.InfoWithContext(ctx); err != nil {
		slog.Debug("host info unavailable", "error", err)
	} else {
		info.Hostname = h.Hostname
		info.Platform = h.Platform
		if h.PlatformVersion != "" {
			info.Platform += " " + h.PlatformVersion
		}
	}

	if cpus, err := cpu.InfoWithContext(ctx); err != nil || len(cpus) == 0 {
		slog.Debug("cpu info unavailable", "error", err)
	} else {
		info.CPU = cpus[0].ModelName
		for _, c := range cpus {
			info.Cores += int(c.Cores)
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		slog.Debug("memory info unavailable", "error", err)
	} else {
		info.RAM = FormatGB(vm.Total)
	}

	return info
}

// FormatGB renders a byte count in whole gigabytes.
func FormatGB(bytes uint64) string {
	return fmt.Sprintf("%d GB", bytes/1024/1024/1024)
}

func (i Info) String() string {
	return fmt.Sprintf("%s, %s, %s", i.Platform, i.CPU, i.RAM)
}

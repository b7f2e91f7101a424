// Package system probes the host for the render pipeline: worker
// sizing, ffmpeg availability and the output directory.
package system

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/datadash/lowerthird/internal/logging"
)

// Bytes of RAM one in-flight 1080p RGBA frame roughly costs, including
// the compose overlay and its reorder-buffer slot.
const perWorkerBudget = 64 << 20

// InitResourceLimits raises the open-file limit on macOS/Linux so the
// daemon does not hit the default soft cap under concurrent renders.
func InitResourceLimits() {
	log := logging.WithComponent("system")

	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Debug().Err(err).Msg("could not read file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Debug().Err(err).Msg("could not raise file limit")
	}
}

// RenderWorkers picks how many compose goroutines to run: logical CPU
// count, lowered when available memory cannot hold that many in-flight
// frames.
func RenderWorkers() int {
	workers, err := cpu.Counts(true)
	if err != nil || workers < 1 {
		workers = 1
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		if byMem := int(vm.Available / perWorkerBudget); byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// MemoryStats reports host memory for the health endpoint.
func MemoryStats() (totalMB, availableMB uint64, err error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Total >> 20, vm.Available >> 20, nil
}

// HasFFmpeg reports whether an ffmpeg binary is on PATH.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// BestH264Encoder returns the preferred hardware encoder when ffmpeg
// advertises one, falling back to libx264.
func BestH264Encoder() string {
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// DefaultQuality maps an encoder to its auto quality setting.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = quality*100 kbit/s
	case "h264_nvenc":
		return 28 // CQ, roughly CRF-equivalent
	default:
		return 23 // x264 CRF
	}
}

// EnsureOutputDir creates dir if needed.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

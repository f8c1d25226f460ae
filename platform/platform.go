// Package platform - Host identification and per-platform benchmark
// presets.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/jaypipes/pcidb"
)

// Info describes the host a run executed on. It is embedded in the run
// artifact so reports can label each side.
type Info struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	CPUCount int    `json:"cpu_count"`
	// Device is the board model on embedded hardware (the device-tree
	// model string), empty elsewhere.
	Device string `json:"device,omitempty"`
	// GPUName is the PCI-resolved name of the first display controller,
	// empty when none is found.
	GPUName string `json:"gpu_name,omitempty"`
}

// Detect gathers host information. sysfsRoot and procRoot default to
// "/sys" and "/proc".
func Detect(sysfsRoot, procRoot string) Info {
	if sysfsRoot == "" {
		sysfsRoot = "/sys"
	}
	if procRoot == "" {
		procRoot = "/proc"
	}

	info := Info{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUCount: runtime.NumCPU(),
	}

	if model, err := os.ReadFile(filepath.Join(procRoot, "device-tree", "model")); err == nil {
		info.Device = strings.TrimRight(strings.TrimSpace(string(model)), "\x00")
	}

	info.GPUName = gpuName(sysfsRoot)
	return info
}

// Map converts the info into the flat string map persisted under
// system_info.
func (i Info) Map() map[string]string {
	m := map[string]string{
		"os":        i.OS,
		"arch":      i.Arch,
		"cpu_count": strconv.Itoa(i.CPUCount),
	}
	if i.Device != "" {
		m["device"] = i.Device
	}
	if i.GPUName != "" {
		m["gpu_name"] = i.GPUName
	}
	return m
}

var (
	pciOnce sync.Once
	pciDB   *pcidb.PCIDB
)

// gpuName resolves the first DRM card's product name from the PCI ID
// database. Best effort; returns "" on any failure.
func gpuName(sysfsRoot string) string {
	devicePath := filepath.Join(sysfsRoot, "class", "drm", "card0", "device")

	vendorID := readPCIID(filepath.Join(devicePath, "vendor"))
	deviceID := readPCIID(filepath.Join(devicePath, "device"))
	if vendorID == "" || deviceID == "" {
		return ""
	}

	pciOnce.Do(func() {
		pciDB, _ = pcidb.New()
	})
	if pciDB == nil {
		return ""
	}

	product, ok := pciDB.Products[vendorID+deviceID]
	if !ok || product == nil {
		return ""
	}
	return product.Name
}

func readPCIID(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	id := strings.ToLower(strings.TrimSpace(string(data)))
	id = strings.TrimPrefix(id, "0x")
	if len(id) != 4 {
		return ""
	}
	return id
}

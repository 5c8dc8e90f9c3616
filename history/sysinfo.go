package history

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type systemInfoOS struct {
	Name         string `json:"Name"`
	Kernel       string `json:"Kernel"`
	Version      string `json:"Version"`
	LittleEndian bool   `json:"LittleEndian"`
}

type systemInfoCPU struct {
	ModelName        string `json:"ModelName"`
	Vendor           string `json:"Vendor"`
	Architecture     string `json:"Architecture"`
	NumSockets       int    `json:"NumSockets"`
	NumPhysicalCores int    `json:"NumPhysicalCores"`
	NumLogicalCores  int    `json:"NumLogicalCores"`
}

type systemInfoRAM struct {
	TotalBytes uint64 `json:"Total[B]"`
}

type systemInfoDoc struct {
	OS  systemInfoOS  `json:"OS"`
	CPU systemInfoCPU `json:"CPU"`
	RAM systemInfoRAM `json:"RAM"`
}

// hostIsLittleEndian reports the running process's native byte order,
// queried through encoding/binary rather than assumed.
func hostIsLittleEndian() bool {
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, 1)
	return b[0] == 1
}

// systemInfo renders a JSON snapshot of the machine a writer session ran
// on: OS, CPU, and RAM. Any field gopsutil cannot determine on the
// current platform is simply left zero-valued rather than failing the
// whole capture — history is best-effort provenance, not a required
// field.
func systemInfo() string {
	var doc systemInfoDoc
	doc.OS.LittleEndian = hostIsLittleEndian()
	if hi, err := host.Info(); err == nil {
		doc.OS.Name = hi.Platform
		doc.OS.Kernel = hi.KernelVersion
		doc.OS.Version = hi.PlatformVersion
	}

	doc.CPU.Architecture = runtime.GOARCH
	doc.CPU.NumLogicalCores = runtime.NumCPU()
	if ci, err := cpu.Info(); err == nil && len(ci) > 0 {
		doc.CPU.ModelName = ci[0].ModelName
		doc.CPU.Vendor = ci[0].VendorID
		doc.CPU.NumSockets = len(ci)
		var physical int
		for _, c := range ci {
			physical += int(c.Cores)
		}
		doc.CPU.NumPhysicalCores = physical
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		doc.RAM.TotalBytes = vm.Total
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(buf)
}

// peakRSSBytes returns the best estimate this platform can give of the
// calling process's resident set size at the moment it's called. Unlike
// getrusage's ru_maxrss, this is a point-in-time sample, not a true
// high-water mark, since gopsutil does not expose one portably — a
// caller wanting an accurate peak should sample periodically and keep
// the maximum itself.
func peakRSSBytes() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mi, err := p.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return mi.RSS
}

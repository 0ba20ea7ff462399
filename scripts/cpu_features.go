// Prints the CPU features the reduction and update kernels gate their
// unrolled loops on, as JSON. Run with: go run scripts/cpu_features.go
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-json"
	"golang.org/x/sys/cpu"
)

type output struct {
	GoVersion string          `json:"go_version"`
	GoOS      string          `json:"go_os"`
	GoArch    string          `json:"go_arch"`
	CPUs      int             `json:"cpus"`
	Features  map[string]bool `json:"features"`
}

func main() {
	features := map[string]bool{
		"SSE2":          cpu.X86.HasSSE2,
		"SSE41":         cpu.X86.HasSSE41,
		"AVX":           cpu.X86.HasAVX,
		"AVX2":          cpu.X86.HasAVX2,
		"FMA":           cpu.X86.HasFMA,
		"AVX512F":       cpu.X86.HasAVX512F,
		"AVX512DQ":      cpu.X86.HasAVX512DQ,
		"ARM64_ASIMD":   cpu.ARM64.HasASIMD,
		"ARM64_ASIMDDP": cpu.ARM64.HasASIMDDP,
		"ARM64_FP":      cpu.ARM64.HasFP,
		"ARM64_SVE":     cpu.ARM64.HasSVE,
	}

	out := output{
		GoVersion: runtime.Version(),
		GoOS:      runtime.GOOS,
		GoArch:    runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		Features:  features,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

package kernel

import "golang.org/x/sys/cpu"

// wideLoops gates the unrolled inner loops. The unrolled forms carry four
// independent accumulators, which only pays off when the target can issue
// multiple FMAs per cycle.
var wideLoops = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

package trace

import (
	"fmt"
	"strings"
)

// BenchCall is one parsed bench-log line.
type BenchCall struct {
	Function  string
	Precision string
	Flags     map[string]string
}

// Flag returns the named flag value or a default.
func (c BenchCall) Flag(name, def string) string {
	if v, ok := c.Flags[name]; ok {
		return v
	}
	return def
}

// ParseBenchLine parses a line the BenchLogger produced back into the call
// it records. Both the single-dash short flags (-f, -r, -n, -k) and the
// double-dash long flags are accepted; every flag takes a value.
func ParseBenchLine(line string) (BenchCall, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return BenchCall{}, fmt.Errorf("trace: empty bench line")
	}
	if fields[0] == BenchTool {
		fields = fields[1:]
	}

	call := BenchCall{Flags: make(map[string]string)}
	for i := 0; i < len(fields); i += 2 {
		name := strings.TrimLeft(fields[i], "-")
		if name == "" || name == fields[i] {
			return BenchCall{}, fmt.Errorf("trace: expected flag, got %q", fields[i])
		}
		if i+1 >= len(fields) {
			return BenchCall{}, fmt.Errorf("trace: flag %q has no value", fields[i])
		}
		value := fields[i+1]
		switch name {
		case "f":
			call.Function = value
		case "r":
			call.Precision = value
		default:
			call.Flags[name] = value
		}
	}
	if call.Function == "" {
		return BenchCall{}, fmt.Errorf("trace: bench line names no function")
	}
	return call, nil
}

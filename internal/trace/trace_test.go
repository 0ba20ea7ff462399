package trace

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestCallLoggerRendersArgsInOrder(t *testing.T) {
	var sb strings.Builder
	l := NewCallLogger(&sb)
	l.Call("batchblas_sgemmt_batched", "U", "N", "T", 4, 3, 1.5, 2)

	got := sb.String()
	want := "batchblas_sgemmt_batched,U,N,T,4,3,1.5,2\n"
	if got != want {
		t.Fatalf("trace line = %q, want %q", got, want)
	}
}

func TestBenchLoggerAndParseRoundTrip(t *testing.T) {
	var sb strings.Builder
	l := NewBenchLogger(&sb)
	l.Command(BenchTool, "-f", "gemmt_batched", "-r", "f32_r",
		"--uplo", "U", "--transposeA", "N", "--transposeB", "T",
		"-n", "4", "-k", "3", "--alpha", "1", "--lda", "4", "--ldb", "3",
		"--beta", "0", "--ldc", "4", "--batch_count", "2")

	line := strings.TrimSuffix(sb.String(), "\n")
	call, err := ParseBenchLine(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if call.Function != "gemmt_batched" || call.Precision != "f32_r" {
		t.Fatalf("parsed %+v", call)
	}
	if call.Flag("uplo", "") != "U" || call.Flag("batch_count", "") != "2" {
		t.Fatalf("flags = %v", call.Flags)
	}
	if call.Flag("stride_x", "7") != "7" {
		t.Fatal("default lookup broken")
	}
}

func TestParseBenchLineErrors(t *testing.T) {
	if _, err := ParseBenchLine(""); err == nil {
		t.Fatal("empty line should fail")
	}
	if _, err := ParseBenchLine("./rocblas-bench -f"); err == nil {
		t.Fatal("dangling flag should fail")
	}
	if _, err := ParseBenchLine("./rocblas-bench -n 4"); err == nil {
		t.Fatal("missing function should fail")
	}
}

func TestProfileLoggerAggregates(t *testing.T) {
	var sb strings.Builder
	p := NewProfileLogger(&sb, "test-handle")

	for i := 0; i < 3; i++ {
		p.Observe("batchblas_isamax_batched", "N", 100, "incx", 1, "batch_count", 2)
	}
	p.Observe("batchblas_isamax_batched", "N", 200, "incx", 1, "batch_count", 2)

	sig := "batchblas_isamax_batched,N:100,incx:1,batch_count:2"
	if got := p.Count(sig); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}

	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("flushed %d records, want 2", len(lines))
	}
	var rec struct {
		Handle string `json:"handle"`
		Call   string `json:"call"`
		Count  int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Handle != "test-handle" || rec.Call != sig || rec.Count != 3 {
		t.Fatalf("record = %+v", rec)
	}

	// Flush resets the aggregation.
	if got := p.Count(sig); got != 0 {
		t.Fatalf("count after flush = %d", got)
	}
}

func TestNilSinksAreSilent(t *testing.T) {
	NewCallLogger(nil).Call("x", 1)
	NewBenchLogger(nil).Command("a", "b")
	var p *ProfileLogger
	p.Observe("x")
	if err := p.Flush(); err != nil {
		t.Fatalf("nil flush: %v", err)
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/dailylesson-backend/internal/services"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 12, 30, 22, 0, 0, 0, time.UTC)

	got, err := dateRange("", 3, now)
	if err != nil {
		t.Fatalf("dateRange: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-12-30", "2024-12-31", "2025-01-01"}, got); diff != "" {
		t.Fatalf("dates (-want +got):\n%s", diff)
	}

	got, err = dateRange("2024-02-28", 2, now)
	if err != nil || got[1] != "2024-02-29" {
		t.Fatalf("leap day: %v %v", got, err)
	}

	if _, err := dateRange("02/28/2024", 1, now); err == nil {
		t.Fatalf("expected bad --from to fail")
	}
	if _, err := dateRange("", 0, now); err == nil {
		t.Fatalf("expected zero days to fail")
	}
}

func TestPrintReportSortsFailures(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	printReport(cmd, []string{"2024-07-10", "2024-07-11"}, services.PregenerateReport{
		Total: 3, Generated: 1, Failed: 2,
		Failures: map[string]string{"b": "boom", "a": "bust"},
	})
	out := buf.String()
	if !strings.Contains(out, "2024-07-10..2024-07-11") {
		t.Fatalf("missing range: %s", out)
	}
	if strings.Index(out, "a: bust") > strings.Index(out, "b: boom") {
		t.Fatalf("failures not sorted: %s", out)
	}
}

func TestRootCmdDefaults(t *testing.T) {
	cmd := newRootCmd()
	ages, err := cmd.Flags().GetIntSlice("ages")
	if err != nil {
		t.Fatalf("ages flag: %v", err)
	}
	if diff := cmp.Diff(services.DefaultPregenAges, ages); diff != "" {
		t.Fatalf("default ages (-want +got):\n%s", diff)
	}
}

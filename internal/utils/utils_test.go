package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevelFilterAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, WARNING)

	l.Info("hidden", nil)
	l.Warn("shown", map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARNING]") || !strings.Contains(out, "shown | a=1 b=2") {
		t.Fatalf("unexpected log line: %q", out)
	}
	if !strings.Contains(out, "utils_test.go:") {
		t.Fatalf("expected caller file in line: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{"debug": DEBUG, "WARN": WARNING, "error": ERROR, "": INFO, "bogus": INFO}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestAPIMetricsRecordsCounters(t *testing.T) {
	m := NewMetricsCollector()
	am := NewAPIMetrics(m, NewLogger(&bytes.Buffer{}, ERROR))

	am.RecordAPIRequest("/ocr", "POST", 200, 15*time.Millisecond)
	am.RecordAPIRequest("/ocr", "POST", 400, 5*time.Millisecond)
	am.RecordLLMRequest("google", "gemini", 42, time.Second)
	am.RecordOCRRequest("tesseract", 10, 0.87, time.Millisecond)

	if got := m.GetCounterValue("api_requests_total"); got != 2 {
		t.Fatalf("api_requests_total = %d", got)
	}
	if got := m.GetCounterValue("api_responses_2xx"); got != 1 {
		t.Fatalf("api_responses_2xx = %d", got)
	}
	if got := m.GetCounterValue("api_responses_4xx"); got != 1 {
		t.Fatalf("api_responses_4xx = %d", got)
	}
	if got := m.GetCounterValue("llm_tokens_total"); got != 42 {
		t.Fatalf("llm_tokens_total = %d", got)
	}

	snap := m.GetMetrics()
	h := snap["histograms"].(map[string]map[string]int64)["api_response_time_ms"]
	if h["count"] != 2 || h["min"] != 5 || h["max"] != 15 {
		t.Fatalf("unexpected histogram: %+v", h)
	}
	conf := snap["histograms"].(map[string]map[string]int64)["ocr_confidence_pct"]
	if conf["count"] != 1 || conf["max"] != 87 {
		t.Fatalf("unexpected confidence histogram: %+v", conf)
	}
}

func TestGauges(t *testing.T) {
	m := NewMetricsCollector()
	m.IncGauge("inflight")
	m.IncGauge("inflight")
	m.DecGauge("inflight")
	if got := m.GetGauge("inflight"); got != 1 {
		t.Fatalf("gauge = %d, want 1", got)
	}
}

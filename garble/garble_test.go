package garble

import (
	"strings"
	"testing"
)

func TestScanCleanText(t *testing.T) {
	r := Scan("A perfectly ordinary paragraph with no decoding trouble at all.")
	if r.Recommend {
		t.Fatalf("clean text flagged: %+v", r)
	}
	if r.GarbledPercentage != 0 {
		t.Fatalf("garbled percentage = %v", r.GarbledPercentage)
	}
}

func TestScanReplacementChars(t *testing.T) {
	r := Scan("K(��LC>@�+ ��Mℎ>@�)")
	if !r.Recommend {
		t.Fatalf("garbled math text not flagged: %+v", r)
	}
	if !strings.Contains(r.Reason, "replacement") {
		t.Fatalf("reason = %q", r.Reason)
	}
	if r.GarbledPercentage <= 0 {
		t.Fatalf("garbled percentage = %v", r.GarbledPercentage)
	}
}

func TestScanPrivateUseArea(t *testing.T) {
	r := Scan("normal text \ue001 with \ue002 embedded glyphs")
	if !r.Recommend {
		t.Fatalf("PUA chars not flagged: %+v", r)
	}
	if !strings.Contains(r.Reason, "private-use") {
		t.Fatalf("reason = %q", r.Reason)
	}
}

func TestScanBelowThresholds(t *testing.T) {
	// Two replacement chars and one PUA char stay under every limit.
	r := Scan("mostly fine \ufffd text \ufffd here \ue001 ok")
	if r.Recommend {
		t.Fatalf("sub-threshold text flagged: %+v", r)
	}
}

func TestScanPages(t *testing.T) {
	reports := ScanPages([]string{
		"clean page one",
		"bad ��� page",
	})
	if len(reports) != 2 {
		t.Fatalf("reports = %d", len(reports))
	}
	if reports[0].Recommend || !reports[1].Recommend {
		t.Fatalf("wrong verdicts: %+v", reports)
	}
	if s := Summary(reports); !strings.Contains(s, "page 2") {
		t.Fatalf("summary = %q", s)
	}
}

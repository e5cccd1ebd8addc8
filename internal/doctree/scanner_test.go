package doctree

import "testing"

func TestScan_Headings(t *testing.T) {
	input := "# Title\n\nBody text.\n\n## Section A\n\nMore body.\n\n### Sub\n"
	res := Scan(input, ScanOptions{})

	if len(res.Records) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(res.Records))
	}
	want := []HeadingRecord{
		{Level: 1, Title: "Title", Line: 0},
		{Level: 2, Title: "Section A", Line: 4},
		{Level: 3, Title: "Sub", Line: 8},
	}
	for i, w := range want {
		if res.Records[i] != w {
			t.Errorf("record %d: expected %+v, got %+v", i, w, res.Records[i])
		}
	}
}

func TestScan_MalformedMarkersAreBody(t *testing.T) {
	input := "#nospace\n####### seven hashes\n#\n#   \n  # indented\n"
	res := Scan(input, ScanOptions{})
	if len(res.Records) != 0 {
		t.Fatalf("expected no headings, got %+v", res.Records)
	}
}

func TestScan_ClosingHashes(t *testing.T) {
	res := Scan("## Overview ##\n", ScanOptions{})
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 heading, got %d", len(res.Records))
	}
	if res.Records[0].Title != "Overview" {
		t.Errorf("expected title %q, got %q", "Overview", res.Records[0].Title)
	}
}

func TestScan_FencesSuppressHeadings(t *testing.T) {
	input := "# Real\n```\n# commented out\n```\n~~~\n## also hidden\n~~~\n## Real Too\n"
	res := Scan(input, ScanOptions{})
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 headings, got %d: %+v", len(res.Records), res.Records)
	}
	if res.Records[0].Title != "Real" || res.Records[1].Title != "Real Too" {
		t.Errorf("unexpected titles: %+v", res.Records)
	}
}

func TestScan_FenceMarkersMustMatch(t *testing.T) {
	// A tilde fence inside a backtick fence does not close it.
	input := "```\n~~~\n# still fenced\n```\n# visible\n"
	res := Scan(input, ScanOptions{})
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 heading, got %+v", res.Records)
	}
	if res.Records[0].Title != "visible" {
		t.Errorf("expected %q, got %q", "visible", res.Records[0].Title)
	}
}

func TestScan_HeadingsInFencesOption(t *testing.T) {
	input := "```\n# inside fence\n```\n"
	res := Scan(input, ScanOptions{HeadingsInFences: true})
	if len(res.Records) != 1 {
		t.Fatalf("expected fence heading to be recognized, got %+v", res.Records)
	}
	if res.Records[0].Title != "inside fence" {
		t.Errorf("unexpected title %q", res.Records[0].Title)
	}
}

func TestScan_TabAfterMarker(t *testing.T) {
	res := Scan("#\tTabbed Title\n", ScanOptions{})
	if len(res.Records) != 1 || res.Records[0].Title != "Tabbed Title" {
		t.Fatalf("expected tabbed heading, got %+v", res.Records)
	}
}

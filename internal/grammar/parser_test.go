package grammar

import "testing"

func TestParseNestsComponents(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:abc\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	roots, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 1 || roots[0].Name != "VCALENDAR" {
		t.Fatalf("roots = %+v", roots)
	}
	cal := roots[0]
	if _, ok := cal.Prop("VERSION"); !ok {
		t.Error("expected VERSION property on VCALENDAR")
	}
	events := cal.ChildrenNamed("VEVENT")
	if len(events) != 1 {
		t.Fatalf("expected 1 VEVENT child, got %d", len(events))
	}
	uid, ok := events[0].Prop("UID")
	if !ok || uid.Value != "abc" {
		t.Errorf("UID = %+v, %v", uid, ok)
	}
}

func TestParseUnknownComponentsAndPropertiesSurvive(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:X-WEIRD\r\n" +
		"X-CUSTOM:value\r\n" +
		"END:X-WEIRD\r\n" +
		"END:VCALENDAR\r\n"
	roots, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	weird := roots[0].ChildrenNamed("X-WEIRD")
	if len(weird) != 1 {
		t.Fatalf("expected X-WEIRD child, got %+v", roots[0].Children)
	}
	if _, ok := weird[0].Prop("X-CUSTOM"); !ok {
		t.Error("expected X-CUSTOM property to survive")
	}
}

func TestParseEndWithEmptyStackErrors(t *testing.T) {
	_, err := Parse("END:VCALENDAR\r\n")
	if err == nil {
		t.Fatal("expected ParseError")
	}
}

func TestParseEndNameMismatchErrors(t *testing.T) {
	_, err := Parse("BEGIN:VCALENDAR\r\nEND:VEVENT\r\n")
	if err == nil {
		t.Fatal("expected ParseError for mismatched END")
	}
}

func TestParseEOFWithOpenComponentErrors(t *testing.T) {
	_, err := Parse("BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nEND:VEVENT\r\n")
	if err == nil {
		t.Fatal("expected ParseError for unterminated VCALENDAR")
	}
}

func TestParsePropertyOutsideComponentErrors(t *testing.T) {
	_, err := Parse("SUMMARY:no component\r\n")
	if err == nil {
		t.Fatal("expected ParseError for property outside any component")
	}
}

func TestEmitComponentsRoundTrips(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:abc\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	roots, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := EmitComponents(roots)
	roots2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	if len(roots2) != 1 || roots2[0].Name != "VCALENDAR" {
		t.Fatalf("roots2 = %+v", roots2)
	}
	uid, ok := roots2[0].ChildrenNamed("VEVENT")[0].Prop("UID")
	if !ok || uid.Value != "abc" {
		t.Errorf("UID after round-trip = %+v", uid)
	}
}

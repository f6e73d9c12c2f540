package grammar

import "testing"

func TestLexerUnfoldsContinuations(t *testing.T) {
	text := "SUMMARY:Long line that wraps\r\n  onto a second physical line\r\n"
	lex := NewLexer(text)
	cl, ok, err := lex.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a content line")
	}
	want := "Long line that wraps onto a second physical line"
	if cl.Value != want {
		t.Errorf("Value = %q, want %q", cl.Value, want)
	}
}

func TestLexerContinuationWithNoPredecessorErrors(t *testing.T) {
	lex := NewLexer(" continuation with nothing before it\r\n")
	_, _, err := lex.Next()
	if err == nil {
		t.Fatal("expected LexError, got nil")
	}
	if _, ok := err.(*LexError); !ok {
		t.Errorf("err = %T, want *LexError", err)
	}
}

func TestLexerParametersAndValues(t *testing.T) {
	text := "DTSTART;TZID=America/New_York;VALUE=DATE-TIME:20220829T090000\r\n"
	lex := NewLexer(text)
	cl, ok, err := lex.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", cl, ok, err)
	}
	if cl.Name != "DTSTART" {
		t.Errorf("Name = %q", cl.Name)
	}
	tzid, ok := cl.ParamValue("TZID")
	if !ok || tzid != "America/New_York" {
		t.Errorf("TZID param = %q, %v", tzid, ok)
	}
	if cl.Value != "20220829T090000" {
		t.Errorf("Value = %q", cl.Value)
	}
}

func TestLexerQuotedParamValuePreservesPunctuation(t *testing.T) {
	text := `ATTENDEE;CN="Doe, Jane; VP":mailto:jane@example.com` + "\r\n"
	lex := NewLexer(text)
	cl, ok, err := lex.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", cl, ok, err)
	}
	cn, ok := cl.ParamValue("CN")
	if !ok || cn != "Doe, Jane; VP" {
		t.Errorf("CN = %q, %v", cn, ok)
	}
}

func TestLexerUnterminatedQuotedValueErrors(t *testing.T) {
	text := `ATTENDEE;CN="unterminated:mailto:jane@example.com` + "\r\n"
	lex := NewLexer(text)
	_, _, err := lex.Next()
	if err == nil {
		t.Fatal("expected error for unterminated quoted value")
	}
}

func TestLexerMultipleParameterValues(t *testing.T) {
	text := "RESOURCES;LANGUAGE=en:EASEL,PROJECTOR\r\n"
	lex := NewLexer(text)
	cl, _, err := lex.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.Value != "EASEL,PROJECTOR" {
		t.Errorf("Value = %q", cl.Value)
	}
}

func TestLexerAcceptsBareLF(t *testing.T) {
	text := "BEGIN:VCALENDAR\nEND:VCALENDAR\n"
	lex := NewLexer(text)
	first, _, err := lex.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "BEGIN" || first.Value != "VCALENDAR" {
		t.Errorf("first = %+v", first)
	}
}

func TestLexerStripsBOM(t *testing.T) {
	text := "\uFEFFBEGIN:VCALENDAR\r\n"
	lex := NewLexer(text)
	cl, _, err := lex.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.Name != "BEGIN" {
		t.Errorf("Name = %q, want BEGIN", cl.Name)
	}
}

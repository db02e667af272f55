package importer

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"(555) 123-4567", "+15551234567"},
		{"555.123.4567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"+44 20 7946 0958", "+442079460958"},
		{"05551234567", "+15551234567"}, // 多余的长途前缀 0
		{"", ""},
		{nil, ""},
		{"n/a", ""},
		{[]interface{}{"555-123-4567"}, "+15551234567"},
	}
	for _, c := range cases {
		got := NormalizePhone(c.in, "+1")
		if got != c.want {
			t.Fatalf("NormalizePhone(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"(555) 123-4567",
		"+15551234567",
		"05551234567",
		"555",
		"garbage",
		"",
	}
	for _, in := range inputs {
		once := NormalizePhone(in, "+1")
		twice := NormalizePhone(once, "+1")
		if once != twice {
			t.Fatalf("expected idempotent normalization for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  John.Doe@Example.COM "); got != "john.doe@example.com" {
		t.Fatalf("unexpected email: %q", got)
	}
	if got := NormalizeEmail(nil); got != "" {
		t.Fatalf("expected empty email, got %q", got)
	}
	if got := NormalizeEmail([]interface{}{"A@B.com"}); got != "a@b.com" {
		t.Fatalf("unexpected email from array: %q", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"2024-03-05", "2024-03-05"},
		{"2024-03-05T10:30:00Z", "2024-03-05"},
		{"03/05/2024", "2024-03-05"},
		{"March 5, 2024", "2024-03-05"},
		{"not a date", ""},
		{nil, ""},
	}
	for _, c := range cases {
		if got := NormalizeDate(c.in); got != c.want {
			t.Fatalf("NormalizeDate(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeDateTime(t *testing.T) {
	got := NormalizeDateTime("2024-03-05T10:30:00Z")
	if got != "2024-03-05T10:30:00Z" {
		t.Fatalf("unexpected datetime: %q", got)
	}
	if NormalizeDateTime("whenever") != "" {
		t.Fatalf("expected empty datetime for garbage input")
	}
}

func TestPhotoURLs(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"url": "https://example.com/a.jpg", "filename": "a.jpg"},
		map[string]interface{}{"filename": "no-url.jpg"}, // 没有 url，丢弃
		"not an attachment",
		map[string]interface{}{"url": "https://example.com/b.jpg"},
	}
	urls := PhotoURLs(raw)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://example.com/a.jpg" || urls[1] != "https://example.com/b.jpg" {
		t.Fatalf("unexpected urls: %v", urls)
	}

	if PhotoURLs("not a list") != nil {
		t.Fatalf("expected nil for non-list input")
	}
	if PhotoURLs(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestPickFirst(t *testing.T) {
	fields := map[string]interface{}{
		"Plate":         "",
		"License Plate": "ABC-123",
		"Number":        "42",
	}
	if got := PickFirst(fields, "Plate", "License Plate", "Number"); got != "ABC-123" {
		t.Fatalf("expected first non-empty candidate, got %q", got)
	}
	if got := PickFirst(fields, "Missing", "AlsoMissing"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := PickFirst(nil, "Anything"); got != "" {
		t.Fatalf("expected empty string for nil fields, got %q", got)
	}
}

func TestAsScalars(t *testing.T) {
	if got := AsString(float64(2021)); got != "2021" {
		t.Fatalf("AsString(2021.0) = %q", got)
	}
	if got := AsInt("2021.0"); got != 2021 {
		t.Fatalf("AsInt(\"2021.0\") = %d", got)
	}
	if got := AsFloat("$1,234.50"); got != 1234.5 {
		t.Fatalf("AsFloat($1,234.50) = %v", got)
	}
	if !AsBool("Yes") || !AsBool(true) || AsBool("no") || AsBool(nil) {
		t.Fatalf("unexpected AsBool behavior")
	}
}

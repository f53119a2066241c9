package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Load("../../../locales", "en", []string{"en", "th"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Resolve("en;q=0.8, th;q=0.9"); got != "th" {
		t.Fatalf("expected th, got %s", got)
	}
	if got := b.Resolve("th-TH,th;q=0.9"); got != "th" {
		t.Fatalf("expected regional tag to match th, got %s", got)
	}
	if got := b.Resolve("fr-FR"); got != "en" {
		t.Fatalf("expected fallback for unsupported language, got %s", got)
	}
	if got := b.Resolve(""); got != "en" {
		t.Fatalf("expected fallback for empty header, got %s", got)
	}
}

func TestTranslateFallsBack(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("en.json", `{"quotation.total": "Total", "quotation.vat": "VAT"}`)
	write("th.json", `{"quotation.total": "ยอดรวมทั้งสิ้น"}`)

	b, err := Load(dir, "en", []string{"en", "th", "ja"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("th", "quotation.total"); got != "ยอดรวมทั้งสิ้น" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := b.T("th", "quotation.vat"); got != "VAT" {
		t.Fatalf("expected fallback translation, got %q", got)
	}
	if got := b.T("ja", "unknown.key"); got != "unknown.key" {
		t.Fatalf("expected key echo, got %q", got)
	}
	if got := b.Supported(); len(got) != 3 || got[0] != "en" {
		t.Fatalf("unexpected supported list %v", got)
	}
}

func TestLoadRequiresFallbackFile(t *testing.T) {
	if _, err := Load(t.TempDir(), "en", []string{"en"}); err == nil {
		t.Fatal("expected error when fallback locale is missing")
	}
}

func TestLocaleFilesShareKeys(t *testing.T) {
	b, err := Load("../../../locales", "en", []string{"en", "th"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for key := range b.dict["en"] {
		if _, ok := b.dict["th"][key]; !ok {
			t.Errorf("th locale missing key %s", key)
		}
	}
}

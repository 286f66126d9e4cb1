package request

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateAcceptsAllFormats(t *testing.T) {
	want := time.Date(2015, 6, 10, 0, 0, 0, 0, time.UTC)
	inputs := []string{"10.06.2015", "10/06/2015", "2015-06-10", "10-06-2015", "  10.06.2015  "}

	for _, in := range inputs {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "завтра", "10.06.15", "2015/06/10"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrBadDate) {
			t.Errorf("ParseDate(%q): expected ErrBadDate, got %v", in, err)
		}
	}
}

func TestCleanCompanyName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  ооо   Ромашка  ", "ООО Ромашка"},
		{"зао Вектор", "ЗАО Вектор"},
		{"ип Иванов И.И.", "ИП Иванов И.И."},
		{"Газпром", "Газпром"},
		{"ООО Ромашка", "ООО Ромашка"},
		{"оооРомашка", "оооРомашка"},
	}

	for _, c := range cases {
		if got := CleanCompanyName(c.in); got != c.want {
			t.Errorf("CleanCompanyName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseNormalizesEverything(t *testing.T) {
	req, err := Parse("  пао  Сбер ", "10.06.2015", " Казань ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.CompanyName != "ПАО Сбер" {
		t.Errorf("unexpected company %q", req.CompanyName)
	}
	if req.Place != "Казань" {
		t.Errorf("unexpected place %q", req.Place)
	}
	if req.RegistrationDate.Year() != 2015 {
		t.Errorf("unexpected date %v", req.RegistrationDate)
	}
}

func TestParseRejectsEmptyCompany(t *testing.T) {
	if _, err := Parse("   ", "10.06.2015", ""); !errors.Is(err, ErrEmptyCompany) {
		t.Errorf("expected ErrEmptyCompany, got %v", err)
	}
}

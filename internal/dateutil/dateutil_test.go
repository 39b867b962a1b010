package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// Friday 1 March 2024.
var day = time.Date(2024, time.March, 1, 18, 30, 0, 0, time.UTC)

func TestLayoutFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layout string
		want   string
	}{
		{"YYYY", "2024"},
		{"YY", "24"},
		{"MMMM", "March"},
		{"MMM", "Mar"},
		{"MM", "03"},
		{"M", "3"},
		{"DDDD", "Friday"},
		{"DDD", "Fri"},
		{"DD", "01"},
		{"D", "1"},
		{"DD/MM/YYYY", "01/03/2024"},
		{"DDDD D MMMM", "Friday 1 March"},
		{"[Printed] YYYY", "Printed 2024"},
		{"[Edition 2] YYYY", "Edition 2 2024"},
		{"Version 15", "Version 15"},
		{"[]YYYY[]", "2024"},
		{"YYYYY", "2024Y"},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			t.Parallel()

			l, err := ParseLayout(tt.layout)
			if err != nil {
				t.Fatalf("ParseLayout(%q) error = %v", tt.layout, err)
			}
			if got := l.Format(day); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLayoutErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layout string
	}{
		{"empty", ""},
		{"unclosed bracket", "YYYY [draft"},
		{"too long", strings.Repeat("Y", MaxLayoutLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseLayout(tt.layout); !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseLayout(%q) error = %v, want ErrInvalidDateFormat", tt.layout, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"Summer 2024", "Summer 2024", false},
		{"auto", "2024-03-01", false},
		{"AUTO", "2024-03-01", false},
		{"auto:iso", "2024-03-01", false},
		{"auto:European", "01/03/2024", false},
		{"auto:us", "03/01/2024", false},
		{"auto:long", "March 1, 2024", false},
		{"auto:month", "March 2024", false},
		{"auto:year", "2024", false},
		{"auto:[Camp] YYYY", "Camp 2024", false},
		{"automatic", "", true},
		{"auto:", "", true},
		{"auto:[x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, day)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("error = %v, want ErrInvalidDateFormat", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

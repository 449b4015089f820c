package normalize

import "testing"

func TestFormatDateTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pads month and day", "1月3日 9:05", "01月03日9:05"},
		{"already normalized", "01月03日9:05", "01月03日9:05"},
		{"no space", "1月03日15:00", "01月03日15:00"},
		{"several spaces", "12月25日   20:30", "12月25日20:30"},
		{"ideographic space", "1月3日\u300015:00", "01月03日15:00"},
		{"no-break space", "1月3日\u00a015:00", "01月03日15:00"},
		{"tab and ideographic space", "1月3日\t\u3000 15:00", "01月03日15:00"},
		{"surrounding whitespace", "  1月3日 15:00 ", "01月03日15:00"},
		{"not a date", "not a date", "not a date"},
		{"empty", "", ""},
		{"three digit month", "123月3日 15:00", "123月3日 15:00"},
		{"single digit minute", "1月3日 15:0", "1月3日 15:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDateTime(tt.in); got != tt.want {
				t.Errorf("FormatDateTime(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDateTimeIdempotent(t *testing.T) {
	for _, in := range []string{"1月3日 9:05", "10月1日20:00", "whatever"} {
		once := FormatDateTime(in)
		if twice := FormatDateTime(once); twice != once {
			t.Errorf("FormatDateTime not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeTeamString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"upper VS", "热火VS76人", "76人热火"},
		{"lower vs reversed", "76人vs热火", "76人热火"},
		{"spaces around vs", "Team A vs Team B", "teamateamb"},
		{"reversed with mixed case separator", "team b Vs team a", "teamateamb"},
		{"no separator", " Golden State ", "goldenstate"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTeamString(tt.in); got != tt.want {
				t.Errorf("NormalizeTeamString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTeamStringSymmetric(t *testing.T) {
	if NormalizeTeamString("热火VS76人") != NormalizeTeamString("76人vs热火") {
		t.Fatal("team order must not matter")
	}
	if NormalizeTeamString("A vs B") != NormalizeTeamString("B VS A") {
		t.Fatal("team order and separator case must not matter")
	}
}

func TestNormalizeTeamStringIdempotent(t *testing.T) {
	for _, in := range []string{"热火VS76人", "Lakers vs Celtics", "单独赛事"} {
		once := NormalizeTeamString(in)
		if twice := NormalizeTeamString(once); twice != once {
			t.Errorf("NormalizeTeamString not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClockMinutes(t *testing.T) {
	if m, ok := ClockMinutes("15:25"); !ok || m != 925 {
		t.Errorf("ClockMinutes(15:25) = %d, %v", m, ok)
	}
	if _, ok := ClockMinutes("5:25"); ok {
		t.Error("ClockMinutes accepted a one digit hour")
	}
}

func TestTailClock(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"01月03日15:00", "15:00", true},
		{"1月3日 15:00", "15:00", true},
		{"1月3日 9:05", "", false},
		{"15:00", "15:00", true},
		{"5:00", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := TailClock(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("TailClock(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

package probe

import (
	"strings"
	"testing"
)

func TestParseTargetForms(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
		want string
	}{
		{"tcp://db:5432", KindTCP, "db:5432"},
		{"db:5432", KindTCP, "db:5432"},
		{"http://web:3000/api/status", KindHTTP, "http://web:3000/api/status"},
		{"https://web/health", KindHTTP, "https://web/health"},
		{"cmd:nc -z localhost 8001", KindCommand, "nc -z localhost 8001"},
	}
	for _, c := range cases {
		got, err := ParseTarget(c.in)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", c.in, err)
		}
		if got.Kind != c.kind {
			t.Fatalf("ParseTarget(%q): kind %q, want %q", c.in, got.Kind, c.kind)
		}
		var field string
		switch c.kind {
		case KindTCP:
			field = got.Address
		case KindHTTP:
			field = got.URL
		case KindCommand:
			field = got.Command
		}
		if field != c.want {
			t.Fatalf("ParseTarget(%q): got %q, want %q", c.in, field, c.want)
		}
	}
}

func TestParseTargetRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "ftp://host:21", "justahost"} {
		if _, err := ParseTarget(in); err == nil {
			t.Fatalf("ParseTarget(%q): expected error", in)
		}
	}
}

func TestTargetValidate(t *testing.T) {
	ok := []Target{
		{Name: "a", Kind: KindTCP, Address: "h:1"},
		{Name: "b", Kind: KindHTTP, URL: "http://h/x"},
		{Name: "c", Kind: KindCommand, Command: "true"},
	}
	for _, tg := range ok {
		if err := tg.Validate(); err != nil {
			t.Fatalf("Validate(%s): %v", tg.Name, err)
		}
	}
	bad := []Target{
		{Name: "a", Kind: KindTCP},
		{Name: "b", Kind: KindHTTP},
		{Name: "c", Kind: KindCommand},
		{Name: "d", Kind: Kind("udp"), Address: "h:1"},
	}
	for _, tg := range bad {
		if err := tg.Validate(); err == nil {
			t.Fatalf("Validate(%s): expected error", tg.Name)
		}
	}
}

func TestTargetDescribe(t *testing.T) {
	tg := Target{Name: "db", Kind: KindTCP, Address: "db:5432"}
	if got := tg.Describe(); got != "tcp:db:5432" {
		t.Fatalf("Describe: %q", got)
	}
	invalid := Target{Name: "x", Kind: KindTCP}
	if got := invalid.Describe(); !strings.HasPrefix(got, "invalid:") {
		t.Fatalf("Describe invalid: %q", got)
	}
}

// Fuzz ParseTarget with arbitrary input to ensure it never panics and only
// returns targets that validate.
func FuzzParseTarget(f *testing.F) {
	f.Add("tcp://a:1")
	f.Add("http://h/p?q=1")
	f.Add("cmd:")
	f.Add("a:b:c")
	f.Fuzz(func(t *testing.T, s string) {
		tg, err := ParseTarget(s)
		if err != nil {
			return
		}
		if tg.Kind == KindCommand {
			// cmd targets may carry an empty command only through "cmd:"
			return
		}
		if verr := tg.Validate(); verr != nil {
			t.Fatalf("parsed target does not validate: %q -> %v", s, verr)
		}
	})
}

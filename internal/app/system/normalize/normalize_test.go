package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := map[string]string{
		"Student@College.EDU":   "student@college.edu",
		"  lead@test.edu\t":     "lead@test.edu",
		"":                      "",
		"already@lower.case":    "already@lower.case",
		" MIXED.Case+tag@X.io ": "mixed.case+tag@x.io",
	}
	for in, want := range tests {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada Lovelace", "Ada Lovelace"},
		{"  Ada   Lovelace  ", "Ada Lovelace"},
		{"Ada\tKing\nLovelace", "Ada King Lovelace"},
		{"mcDonald", "mcDonald"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"super_admin", "super_admin"},
		{"Super Admin", "super_admin"},
		{"club-admin", "club_admin"},
		{"  CLUB   ADMIN ", "club_admin"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Role(tt.in); got != tt.want {
			t.Errorf("Role(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  I love robots.  ", "I love robots."},
		{"line one\r\nline two", "line one\nline two"},
		{"\r\n", ""},
		{"keeps  inner   spacing", "keeps  inner   spacing"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

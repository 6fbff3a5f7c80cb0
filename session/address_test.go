package session

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"ws://10.0.0.5:3030/ws", "ws://10.0.0.5:3030/ws"},
		{"wss://desk.example.net/remote", "wss://desk.example.net/remote"},
		{"  ws://10.0.0.5:3030/ws  ", "ws://10.0.0.5:3030/ws"},
		{"10.0.0.5", "ws://10.0.0.5:3030/ws"},
		{"10.0.0.5:4000", "ws://10.0.0.5:4000/ws"},
		{"192.168.1.20", "ws://192.168.1.20:3030/ws"},
	}
	for _, tc := range cases {
		got, err := NormalizeAddress(tc.raw)
		if err != nil {
			t.Fatalf("NormalizeAddress(%q) failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeAddress(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeAddressRejectsInvalidInput(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"http://10.0.0.5",
		"https://10.0.0.5",
		"ws://",
		"desk.example.net",
		"999.1.1.1",
		"10.0.0.5:0",
		"10.0.0.5:70000",
		"10.0.0.5:abc",
		"fe80::1",
		"not an address",
	}
	for _, raw := range cases {
		if _, err := NormalizeAddress(raw); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("NormalizeAddress(%q): expected ErrInvalidAddress, got %v", raw, err)
		}
	}
}

package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestAdvertiseRejectsBadPort(t *testing.T) {
	if _, err := Advertise("x", "", 0); !errors.Is(err, ErrBadPort) {
		t.Fatalf("err = %v", err)
	}
}

func TestEntryAddr(t *testing.T) {
	cases := []struct {
		name string
		in   *mdns.ServiceEntry
		want string
	}{
		{"nil", nil, ""},
		{"no ip", &mdns.ServiceEntry{Port: 8080}, ""},
		{"no port", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 1)}, ""},
		{"ok", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 1), Port: 8080}, "10.0.0.1:8080"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := entryAddr(tc.in); got != tc.want {
				t.Fatalf("entryAddr = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNilAdvertiserShutdown(t *testing.T) {
	var a *Advertiser
	if err := a.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

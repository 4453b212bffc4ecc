// Package discovery advertises the relay on the local network and finds
// relays advertised by other hosts.
package discovery

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const DefaultService = "_sketch._tcp"

var ErrBadPort = errors.New("discovery: port must be positive")

// Advertiser keeps one mDNS responder alive until Shutdown.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces instance/service on port. An empty instance uses the
// host name.
func Advertise(instance, service string, port int) (*Advertiser, error) {
	if port <= 0 {
		return nil, ErrBadPort
	}
	if service == "" {
		service = DefaultService
	}
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}
	zone, err := mdns.NewMDNSService(instance, service, "", "", port, nil, []string{"Sketch relay", "path=/api/ws"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Info().Str("module", "discovery").Str("instance", instance).Str("service", service).Int("port", port).Msg("advertising relay")
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Browse queries the network for service and returns host:port addresses of
// the relays that answered within timeout.
func Browse(service string, timeout time.Duration) ([]string, error) {
	if service == "" {
		service = DefaultService
	}
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan []string, 1)
	go func() {
		var addrs []string
		seen := make(map[string]struct{})
		for e := range entries {
			addr := entryAddr(e)
			if addr == "" {
				continue
			}
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			addrs = append(addrs, addr)
		}
		found <- addrs
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	err := mdns.Query(params)
	close(entries)
	addrs := <-found
	if err != nil {
		return addrs, fmt.Errorf("mdns query: %w", err)
	}
	return addrs, nil
}

func entryAddr(e *mdns.ServiceEntry) string {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return ""
	}
	return net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
}

// Package discovery finds hosts on the local network. Two probes run side
// by side: a UDP broadcast that hosts answer directly, and an mDNS browse
// for hosts that advertise themselves. Results merge into one list keyed by
// address.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultService is the mDNS service name without domain suffix.
	DefaultService = "_fossdeck._tcp"
	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."
	// DefaultProbePort is the UDP port hosts listen on for discovery probes.
	DefaultProbePort = 45321
	// DefaultScanTimeout bounds one discovery scan.
	DefaultScanTimeout = 3 * time.Second

	// DefaultHostPort is assumed when a reply omits the websocket port.
	DefaultHostPort = 3030
	// DefaultHostPath is assumed when a reply omits the websocket path.
	DefaultHostPath = "/ws"
)

// Host is one discovered endpoint, ready to connect to.
type Host struct {
	// Name is the host's advertised display name.
	Name string
	// Address is the full ws:// URL built from the reply.
	Address string
	// IP is the address the reply came from, used for deduplication.
	IP string
	// Version is the host's advertised server version, when present.
	Version string
}

type sourceFunc func(ctx context.Context, cfg Config, found chan<- Host) error

// Config controls one discovery scan.
type Config struct {
	Service   string
	Domain    string
	ProbePort int
	Timeout   time.Duration

	probeFn  sourceFunc
	browseFn sourceFunc
}

func (c Config) withDefaults() Config {
	out := c
	if out.Service == "" {
		out.Service = DefaultService
	}
	if out.Domain == "" {
		out.Domain = DefaultDomain
	}
	if out.ProbePort <= 0 {
		out.ProbePort = DefaultProbePort
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultScanTimeout
	}
	if out.probeFn == nil {
		out.probeFn = probeBroadcast
	}
	if out.browseFn == nil {
		out.browseFn = browseMDNS
	}
	return out
}

// Discover runs one scan and returns the merged host list, sorted by name.
// The same host answering both probes appears once; the first reply wins.
// An error is returned only when both probes failed and nothing was found.
func Discover(ctx context.Context, config Config) ([]Host, error) {
	cfg := config.withDefaults()

	scanCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	found := make(chan Host, 32)

	var wg sync.WaitGroup
	var probeErr, browseErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		probeErr = cfg.probeFn(scanCtx, cfg, found)
	}()
	go func() {
		defer wg.Done()
		browseErr = cfg.browseFn(scanCtx, cfg, found)
	}()

	go func() {
		wg.Wait()
		close(found)
	}()

	seen := make(map[string]struct{})
	hosts := make([]Host, 0, 8)
	for host := range found {
		if host.IP == "" || host.Address == "" {
			continue
		}
		if _, exists := seen[host.IP]; exists {
			continue
		}
		seen[host.IP] = struct{}{}
		hosts = append(hosts, host)
	}

	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].Name == hosts[j].Name {
			return hosts[i].IP < hosts[j].IP
		}
		return hosts[i].Name < hosts[j].Name
	})

	if len(hosts) == 0 && probeErr != nil && browseErr != nil {
		return nil, errors.Join(
			fmt.Errorf("udp probe: %w", probeErr),
			fmt.Errorf("mdns browse: %w", browseErr),
		)
	}
	return hosts, nil
}

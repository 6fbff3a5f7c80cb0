package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
)

// browseMDNS collects service advertisements until the context expires and
// feeds them into the merged result set.
func browseMDNS(ctx context.Context, cfg Config, found chan<- Host) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("create mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 32)
	collectorDone := make(chan struct{})

	go func() {
		defer close(collectorDone)
		for {
			select {
			case <-ctx.Done():
				return
			case entry := <-entries:
				if entry == nil {
					continue
				}
				host, ok := parseServiceEntry(entry)
				if !ok {
					continue
				}
				select {
				case found <- host:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, cfg.Service, cfg.Domain, entries); err != nil {
		return fmt.Errorf("browse %s: %w", cfg.Service, err)
	}

	<-ctx.Done()
	<-collectorDone
	return nil
}

// parseServiceEntry turns one advertisement into a Host. Entries without an
// IPv4 address are dropped; the websocket path may ride in a TXT record.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (Host, bool) {
	if len(entry.AddrIPv4) == 0 || entry.AddrIPv4[0] == nil {
		return Host{}, false
	}
	ip := entry.AddrIPv4[0].String()

	port := entry.Port
	if port <= 0 || port > 65535 {
		port = DefaultHostPort
	}

	path := DefaultHostPath
	version := ""
	for _, txt := range entry.Text {
		if value, ok := strings.CutPrefix(txt, "path="); ok && strings.TrimSpace(value) != "" {
			path = strings.TrimSpace(value)
		}
		if value, ok := strings.CutPrefix(txt, "version="); ok {
			version = strings.TrimSpace(value)
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	name := strings.TrimSpace(entry.Instance)
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSpace(entry.HostName), ".")
	}
	if name == "" {
		name = ip
	}

	return Host{
		Name:    name,
		Address: fmt.Sprintf("ws://%s:%d%s", ip, port, path),
		IP:      ip,
		Version: version,
	}, true
}

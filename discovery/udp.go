package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"
)

// probeMessage is the plaintext query hosts answer with a JSON reply.
const probeMessage = "FOSSDECK_DISCOVERY_V1?"

// probeReply is the JSON payload a host sends back. Every field is
// optional; defaults are applied when absent.
type probeReply struct {
	Name    string `json:"name"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
	Version string `json:"version"`
}

// probeBroadcast sends the discovery query to every interface's directed
// broadcast address plus the limited broadcast address, then collects
// replies until the context expires.
func probeBroadcast(ctx context.Context, cfg Config, found chan<- Host) error {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("open probe socket: %w", err)
	}
	defer conn.Close()

	targets := append(broadcastTargets(), net.IPv4bcast)
	payload := []byte(probeMessage)
	for _, ip := range targets {
		_, _ = conn.WriteTo(payload, &net.UDPAddr{IP: ip, Port: cfg.ProbePort})
	}

	buf := make([]byte, 2048)
	for {
		deadline := time.Now().Add(200 * time.Millisecond)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		_ = conn.SetReadDeadline(deadline)

		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("read probe reply: %w", err)
		}

		udpFrom, ok := from.(*net.UDPAddr)
		if !ok {
			continue
		}
		host := parseProbeReply(buf[:n], udpFrom.IP)

		select {
		case found <- host:
		case <-ctx.Done():
			return nil
		}
	}
}

// parseProbeReply turns one reply datagram into a Host. Anything answering
// the probe counts as a host: replies that are not JSON objects, and fields
// they omit, fall back to defaults.
func parseProbeReply(payload []byte, from net.IP) Host {
	var reply probeReply
	_ = json.Unmarshal(payload, &reply)

	ip := from.String()
	port := reply.Port
	if port <= 0 || port > 65535 {
		port = DefaultHostPort
	}
	path := strings.TrimSpace(reply.Path)
	if path == "" {
		path = DefaultHostPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	name := strings.TrimSpace(reply.Name)
	if name == "" {
		name = ip
	}

	return Host{
		Name:    name,
		Address: fmt.Sprintf("ws://%s:%d%s", ip, port, path),
		IP:      ip,
		Version: strings.TrimSpace(reply.Version),
	}
}

// broadcastTargets computes the directed broadcast address of every up,
// non-loopback IPv4 interface.
func broadcastTargets() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var targets []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ip := directedBroadcast(addr); ip != nil {
				targets = append(targets, ip)
			}
		}
	}
	return targets
}

// directedBroadcast returns the subnet broadcast address for an IPv4
// network address, nil for anything else.
func directedBroadcast(addr net.Addr) net.IP {
	network, ok := addr.(*net.IPNet)
	if !ok {
		return nil
	}
	ip := network.IP.To4()
	if ip == nil {
		return nil
	}
	mask := network.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil
	}

	out := make(net.IP, net.IPv4len)
	for i := 0; i < net.IPv4len; i++ {
		out[i] = ip[i] | ^mask[i]
	}
	return out
}

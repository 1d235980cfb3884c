package discovery

import (
	"bufio"
	"net"
	"strings"
	"time"
)

const (
	ssdpAddr   = "239.255.255.250:1900"
	ssdpTarget = "urn:schemas-upnp-org:device:ZonePlayer:1"
)

type ssdpResponse struct {
	Location string
	USN      string
	Headers  map[string]string
	FromIP   string
}

// discover performs an SSDP M-SEARCH and collects responses until timeout.
func discover(timeout time.Duration) ([]ssdpResponse, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	addr, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, err
	}

	if err := sendSearch(conn, addr); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	responses := make(map[string]ssdpResponse)
	buf := make([]byte, 2048)
	for {
		n, raddr, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			return mapToSlice(responses), err
		}

		resp := parseResponse(string(buf[:n]))
		if resp.Location == "" || resp.USN == "" {
			continue
		}
		resp.FromIP = raddr.String()

		// Deduplicate by USN
		if _, exists := responses[resp.USN]; !exists {
			responses[resp.USN] = resp
		}
	}

	return mapToSlice(responses), nil
}

func sendSearch(conn net.PacketConn, addr *net.UDPAddr) error {
	msg := strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"HOST: " + ssdpAddr,
		"MAN: \"ssdp:discover\"",
		"MX: 2",
		"ST: " + ssdpTarget,
		"",
		"",
	}, "\r\n")

	_, err := conn.WriteTo([]byte(msg), addr)
	return err
}

func parseResponse(raw string) ssdpResponse {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	headers := make(map[string]string)

	// Skip status line
	if scanner.Scan() {
		// no-op
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		headers[key] = value
	}

	return ssdpResponse{
		Location: headers["LOCATION"],
		USN:      headers["USN"],
		Headers:  headers,
	}
}

func mapToSlice(responses map[string]ssdpResponse) []ssdpResponse {
	result := make([]ssdpResponse, 0, len(responses))
	for _, r := range responses {
		result = append(result, r)
	}
	return result
}

package utils

import (
	"fmt"
	"net"
	"strings"
)

// GetHostIP returns the outbound LAN address of this host. No packet is sent.
func GetHostIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:53")
	if err != nil {
		return "", fmt.Errorf("get host ip: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// StationURL is the address scanning stations on the venue network should open.
// Wildcard listen addresses are replaced with host.
func StationURL(listenAddr, host string) string {
	h, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://" + listenAddr
	}
	if h == "" || h == "0.0.0.0" || h == "::" {
		h = host
	}
	if strings.Contains(h, ":") {
		h = "[" + h + "]"
	}
	return "http://" + h + ":" + port
}

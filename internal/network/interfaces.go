package network

import (
	"fmt"
	"net"
	"strings"
)

// Strips brackets and zone from an address literal
func parseHostIP(destination string) (ip net.IP, err error) {
	host := destination
	if splitHost, _, splitErr := net.SplitHostPort(destination); splitErr == nil {
		host = splitHost
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if zone := strings.IndexByte(host, '%'); zone >= 0 {
		host = host[:zone]
	}

	ip = net.ParseIP(host)
	if ip == nil {
		err = fmt.Errorf("invalid destination address: %s", destination)
		return
	}
	return
}

// Asks the routing table which local interface would carry traffic to ip
func interfaceForDestination(ip net.IP) (iface *net.Interface, err error) {
	probe, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: ip, Port: 9})
	if err != nil {
		err = fmt.Errorf("failed to find interface for destination %s: %w", ip, err)
		return
	}
	defer probe.Close()

	localIP := probe.LocalAddr().(*net.UDPAddr).IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}
	for index := range ifaces {
		addrs, addrErr := ifaces[index].Addrs()
		if addrErr != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if ok && ipNet.IP.Equal(localIP) {
				iface = &ifaces[index]
				return
			}
		}
	}

	err = fmt.Errorf("no matching interface found for address %v", localIP)
	return
}

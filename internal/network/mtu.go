package network

import (
	"fmt"
	"net"

	"gelfsend/pkg/gelf"
)

const (
	// Worst case header sizes (options included)
	ip4Overhead int = 60
	ip6Overhead int = 80
	udpOverhead int = 8

	defaultMTU int = 1500

	// Smallest datagram still worth chunking into (IPv6 minimum MTU less headers)
	MinChunkSize int = 1280 - ip6Overhead - udpOverhead
)

// IP plus UDP header bytes for the destination address family
func transportOverhead(ip net.IP) (overhead int) {
	if ip.To4() != nil {
		overhead = ip4Overhead + udpOverhead
		return
	}
	overhead = ip6Overhead + udpOverhead
	return
}

// Largest UDP payload that avoids IP fragmentation on the path's first hop
func FindMaxUDPPayload(destination string) (maxPayloadSize int, err error) {
	ip, err := parseHostIP(destination)
	if err != nil {
		return
	}

	mtu := defaultMTU
	if ip.IsLoopback() {
		mtu = loopbackMTU()
	} else {
		iface, ifaceErr := interfaceForDestination(ip)
		if ifaceErr == nil && iface.MTU > 0 {
			mtu = iface.MTU
		}
	}

	maxPayloadSize = mtu - transportOverhead(ip)
	if maxPayloadSize <= gelf.ChunkHeaderLen {
		err = fmt.Errorf("mtu %d leaves no room for chunk data to %s", mtu, destination)
		return
	}
	return
}

// Chunk size for the destination, bounded to [MinChunkSize, gelf.DefaultChunkSize]
func FindChunkSize(destination string) (chunkSize int, err error) {
	chunkSize, err = FindMaxUDPPayload(destination)
	if err != nil {
		return
	}
	chunkSize = clampChunkSize(chunkSize)
	return
}

func clampChunkSize(size int) int {
	if size < MinChunkSize {
		return MinChunkSize
	}
	if size > gelf.DefaultChunkSize {
		return gelf.DefaultChunkSize
	}
	return size
}

func loopbackMTU() (mtu int) {
	mtu = defaultMTU

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 && iface.MTU > 0 {
			mtu = iface.MTU
			return
		}
	}
	return
}

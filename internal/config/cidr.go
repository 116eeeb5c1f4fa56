package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// CIDRHost calculates a host IP address inside a network prefix, mirroring
// Terraform's cidrhost function so address schemes survive the migration
// from HCL unchanged.
//
// hostnum can be negative to count from the end of the range (-1 is the
// broadcast address in an IPv4 subnet). Only IPv4 prefixes are supported.
func CIDRHost(prefix string, hostnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}

	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 addresses are supported, got %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	hostBits := totalBits - maskSize
	maxHosts := uint64(1) << hostBits

	var offset uint64
	if hostnum < 0 {
		absHostNum := uint64(-hostnum)
		if absHostNum > maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
		offset = maxHosts - absHostNum
	} else {
		offset = uint64(hostnum)
		if offset >= maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
	}

	ip := network.IP.To4()
	ipInt := uint64(binary.BigEndian.Uint32(ip))
	ipInt += offset

	out := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(out, uint32(ipInt))
	return out.String(), nil
}

// MaskBits returns the prefix length of an IPv4 CIDR, for building
// cloud-init ip= parameters.
func MaskBits(prefix string) (int, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return 0, fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	bits, _ := network.Mask.Size()
	return bits, nil
}

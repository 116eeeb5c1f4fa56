package proxmox

import "fmt"

// BuildNet0 renders the net0 device string for a virtio NIC on the given
// bridge. A VLAN of 0 means untagged.
func BuildNet0(bridge string, vlan int) string {
	if vlan > 0 {
		return fmt.Sprintf("virtio,bridge=%s,tag=%d", bridge, vlan)
	}
	return fmt.Sprintf("virtio,bridge=%s", bridge)
}

// BuildIPConfig0 renders the cloud-init static address string from a CIDR
// address and gateway.
func BuildIPConfig0(cidr, gateway string) string {
	return fmt.Sprintf("ip=%s,gw=%s", cidr, gateway)
}

package main

import (
	"fmt"
	"net"

	"netrecon/internal/core/model"
)

// top10Ports and top100Ports mirror the well-known-service shortlists
// a scanner's --top-10/--top-100 flags conventionally expand to.
var top10Ports = []int{21, 22, 23, 25, 80, 110, 139, 443, 445, 3389}

var top100Ports = []int{
	7, 9, 13, 21, 22, 23, 25, 26, 37, 53, 79, 80, 81, 88, 106, 110, 111, 113,
	119, 135, 139, 143, 144, 179, 199, 389, 427, 443, 444, 445, 465, 513, 514,
	515, 543, 544, 548, 554, 587, 631, 646, 873, 990, 993, 995, 1025, 1026,
	1027, 1028, 1029, 1110, 1433, 1720, 1723, 1755, 1900, 2000, 2001, 2049,
	2121, 2717, 3000, 3128, 3306, 3389, 3986, 4899, 5000, 5009, 5051, 5060,
	5101, 5190, 5357, 5432, 5631, 5666, 5800, 5900, 6000, 6001, 6646, 7070,
	8000, 8008, 8009, 8080, 8081, 8443, 8888, 9100, 9999, 10000, 32768, 49152,
	49153, 49154, 49155, 49156, 49157,
}

// expandCIDR resolves a CIDR block into one Endpoint per usable
// address, skipping the network and broadcast addresses for an IPv4
// block wider than /31.
func expandCIDR(cidr string) ([]model.Endpoint, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}

	var endpoints []model.Endpoint
	for addr := cloneIP(ip.Mask(ipNet.Mask)); ipNet.Contains(addr); incIP(addr) {
		ones, bits := ipNet.Mask.Size()
		if bits-ones > 1 && (isNetworkAddress(addr, ipNet) || isBroadcastAddress(addr, ipNet)) {
			continue
		}
		target := addr.String()
		endpoints = append(endpoints, model.Endpoint{Target: target, IP: cloneIP(addr)})
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("CIDR %q expanded to zero addresses", cidr)
	}
	return endpoints, nil
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return
		}
	}
}

func isNetworkAddress(ip net.IP, ipNet *net.IPNet) bool {
	return ip.Equal(ipNet.IP.Mask(ipNet.Mask))
}

func isBroadcastAddress(ip net.IP, ipNet *net.IPNet) bool {
	bcast := cloneIP(ipNet.IP.Mask(ipNet.Mask))
	for i := range bcast {
		bcast[i] |= ^ipNet.Mask[i]
	}
	return ip.Equal(bcast)
}

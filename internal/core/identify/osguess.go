package identify

// GuessOSFamily buckets an observed reply TTL into a coarse OS family,
// the same three bands the teacher's ttl_engine uses, but fed from a
// TTL already captured off a live probe reply instead of a spawned
// `ping` process — raw-socket probes see the real IP header TTL
// directly, so no extra round trip is needed.
func GuessOSFamily(observedTTL int) (family string, accuracy int) {
	switch {
	case observedTTL <= 0:
		return "", 0
	case observedTTL <= 64:
		return "Unix/Linux", 70
	case observedTTL <= 128:
		return "Windows", 70
	default:
		return "Network device (Solaris/Cisco)", 60
	}
}

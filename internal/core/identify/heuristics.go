package identify

// portDefaults maps a handful of canonical ports to a low-confidence
// service guess, applied only when the banner was empty or no
// signature matched (spec.md §4.4 stage 4: "minimal heuristics").
var portDefaults = map[int]string{
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	53:    "dns",
	80:    "http",
	110:   "pop3",
	143:   "imap",
	443:   "https",
	445:   "smb",
	993:   "imaps",
	995:   "pop3s",
	1433:  "mssql",
	1521:  "oracle",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgresql",
	6379:  "redis",
	8080:  "http-proxy",
	27017: "mongodb",
}

const heuristicConfidence = 0.3

// portDefault returns the canonical service guess for port, if any.
func portDefault(port int) (string, bool) {
	svc, ok := portDefaults[port]
	return svc, ok
}

// canonicalService reports the service a port is canonically expected
// to run, used by the anomaly check "banner advertises one service but
// port is canonically another" (spec.md §4.4).
func canonicalService(port int) (string, bool) {
	return portDefault(port)
}

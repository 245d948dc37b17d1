package identify

import "bytes"

// Classifier is the pluggable ML disambiguation contract of spec.md
// §4.4/§9: a pure function from banner bytes and port to a label and
// confidence. The core requires only this signature, never a specific
// model format or framework.
type Classifier func(banner []byte, port int) (label string, confidence float64)

// keywordWeights is a tiny keyword-to-label table used by the
// built-in classifier — enough to satisfy the contract end-to-end
// without claiming to be a real model.
var keywordWeights = map[string]string{
	"apache":     "http",
	"nginx":      "http",
	"openssh":    "ssh",
	"postfix":    "smtp",
	"dovecot":    "imap",
	"mysql":      "mysql",
	"postgresql": "postgresql",
	"redis":      "redis",
	"microsoft":  "rdp",
	"memcached":  "memcached",
}

// HeuristicClassifier is the built-in Classifier: a case-insensitive
// keyword lookup over the banner. The first keyword found (in map
// iteration order) yields its label at a fixed confidence of 0.55;
// keywords are not counted or weighed against each other. It exists to give
// the pipeline a usable default, not to compete with a real model
// plugged in at startup.
func HeuristicClassifier(banner []byte, port int) (string, float64) {
	if len(banner) == 0 {
		return "", 0
	}
	lower := bytes.ToLower(banner)
	for keyword, label := range keywordWeights {
		if bytes.Contains(lower, []byte(keyword)) {
			return label, 0.55
		}
	}
	return "", 0
}

package identify

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"netrecon/internal/core/model"
)

const (
	minRSABits = 2048
	minECBits  = 256
)

// InspectCert converts an x509 leaf certificate into the record shape
// the Port Record carries, per spec.md §3/§4.4.
func InspectCert(cert *x509.Certificate) *model.TLSCertificate {
	if cert == nil {
		return nil
	}
	rec := &model.TLSCertificate{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		NotBefore:          cert.NotBefore.UTC().Format(time.RFC3339),
		NotAfter:           cert.NotAfter.UTC().Format(time.RFC3339),
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		AlternativeNames:   append([]string(nil), cert.DNSNames...),
	}
	rec.PublicKeyBits = publicKeyBits(cert)
	return rec
}

func publicKeyBits(cert *x509.Certificate) int {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.N.BitLen()
	case *ecdsa.PublicKey:
		return pub.Curve.Params().BitSize
	default:
		return 0
	}
}

// CertAnomalies reports the certificate-derived anomalies named in
// spec.md §4.4: CN/SNI mismatch, weak key, expired or not-yet-valid.
func CertAnomalies(cert *x509.Certificate, expectedHost string, now time.Time) []string {
	if cert == nil {
		return nil
	}
	var anomalies []string

	if expectedHost != "" && cert.VerifyHostname(expectedHost) != nil {
		anomalies = append(anomalies, fmt.Sprintf("tls certificate common name %q does not match target %q", cert.Subject.CommonName, expectedHost))
	}
	if now.Before(cert.NotBefore) {
		anomalies = append(anomalies, "tls certificate is not yet valid")
	}
	if now.After(cert.NotAfter) {
		anomalies = append(anomalies, "tls certificate has expired")
	}
	if bits := publicKeyBits(cert); bits > 0 {
		switch cert.PublicKeyAlgorithm {
		case x509.RSA:
			if bits < minRSABits {
				anomalies = append(anomalies, fmt.Sprintf("tls certificate uses a weak %d-bit RSA key", bits))
			}
		case x509.ECDSA:
			if bits < minECBits {
				anomalies = append(anomalies, fmt.Sprintf("tls certificate uses a weak %d-bit EC key", bits))
			}
		}
	}
	return anomalies
}

// ServiceMismatch reports the "banner advertises one service but port
// is canonically another" anomaly of spec.md §4.4.
func ServiceMismatch(port int, detectedService string) (string, bool) {
	canonical, ok := canonicalService(port)
	if !ok || detectedService == "" || canonical == detectedService {
		return "", false
	}
	if strings.Contains(detectedService, canonical) || strings.Contains(canonical, detectedService) {
		return "", false
	}
	return fmt.Sprintf("port %d advertises %q but is canonically %q", port, detectedService, canonical), true
}

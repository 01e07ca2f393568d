// SPDX-License-Identifier: GPL-3.0-or-later

package tlscfg

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTLSConfig(t *testing.T) {
	certFile, keyFile := writeSelfSignedPair(t)

	tests := map[string]struct {
		config   TLSConfig
		wantNil  bool
		wantFail bool
	}{
		"not configured": {
			config:  TLSConfig{},
			wantNil: true,
		},
		"skip verify only": {
			config: TLSConfig{InsecureSkipVerify: true},
		},
		"custom CA": {
			config: TLSConfig{TLSCA: certFile},
		},
		"client certificate": {
			config: TLSConfig{TLSCert: certFile, TLSKey: keyFile},
		},
		"fails on missing CA file": {
			config:   TLSConfig{TLSCA: filepath.Join(t.TempDir(), "missing.pem")},
			wantFail: true,
		},
		"fails on CA file without PEM data": {
			config:   TLSConfig{TLSCA: writeFile(t, "garbage.pem", []byte("not a certificate"))},
			wantFail: true,
		},
		"fails on mismatched key pair": {
			config:   TLSConfig{TLSCert: certFile, TLSKey: certFile},
			wantFail: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := NewTLSConfig(test.config)

			if test.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if test.wantNil {
				assert.Nil(t, cfg)
				return
			}
			require.NotNil(t, cfg)
			assert.Equal(t, test.config.InsecureSkipVerify, cfg.InsecureSkipVerify)
			assert.Equal(t, test.config.TLSCA != "", cfg.RootCAs != nil)
			assert.Equal(t, test.config.Enabled(), len(cfg.Certificates) == 1)
		})
	}
}

func writeSelfSignedPair(t *testing.T) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "puppetdb.example.com"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = writeFile(t, "cert.pem", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyFile = writeFile(t, "key.pem", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))

	return certFile, keyFile
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

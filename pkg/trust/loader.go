package trust

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeyFile is the on-disk registry format:
//
//	principals:
//	  - principal: kernel-primary
//	    public_key: "9f3c…"   # hex-encoded Ed25519 public key
//	    revoked: false
type KeyFile struct {
	Principals []KeyEntry `yaml:"principals"`
}

type KeyEntry struct {
	Principal string `yaml:"principal"`
	PublicKey string `yaml:"public_key"`
	Revoked   bool   `yaml:"revoked,omitempty"`
}

// LoadKeyFile reads a YAML key file into a fresh registry.
func LoadKeyFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return ParseKeyFile(data)
}

// ParseKeyFile builds a registry from YAML key file bytes.
func ParseKeyFile(data []byte) (*Registry, error) {
	var kf KeyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}

	reg := NewRegistry()
	for i, entry := range kf.Principals {
		if entry.Principal == "" {
			return nil, fmt.Errorf("key file entry %d: missing principal", i)
		}
		if err := reg.AddHex(entry.Principal, entry.PublicKey); err != nil {
			return nil, err
		}
		if entry.Revoked {
			reg.Revoke(entry.Principal)
		}
	}
	return reg, nil
}

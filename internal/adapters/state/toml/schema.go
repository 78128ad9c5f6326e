package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int              `toml:"version"`
	Verified []verifiedSchema `toml:"verified"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported verified senders schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type verifiedSchema struct {
	Number     string `toml:"number"`
	VerifiedAt string `toml:"verified_at"`
}

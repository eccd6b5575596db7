package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// SnapshotFileName is the serialized schema copy captured at the time of the
// last applied migration, stored under the vault's metadata directory.
const SnapshotFileName = "schema-snapshot.yaml"

// MetaDirName is the vault metadata directory.
const MetaDirName = ".quill"

// ErrNoSnapshot indicates no snapshot has been saved yet for this vault.
var ErrNoSnapshot = errors.New("no schema snapshot found")

func snapshotPath(vaultPath string) string {
	return filepath.Join(vaultPath, MetaDirName, SnapshotFileName)
}

// LoadSnapshot loads the schema snapshot saved by the last migration.
func LoadSnapshot(vaultPath string) (*Schema, error) {
	data, err := os.ReadFile(snapshotPath(vaultPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read schema snapshot: %w", err)
	}

	var sch Schema
	if err := yaml.Unmarshal(data, &sch); err != nil {
		return nil, fmt.Errorf("failed to parse schema snapshot: %w", err)
	}

	normalize(&sch)
	return &sch, nil
}

// SaveSnapshot serializes the schema as the new baseline for future diffs.
// The write is atomic so a crash never leaves a truncated snapshot.
func SaveSnapshot(vaultPath string, sch *Schema) error {
	dir := filepath.Join(vaultPath, MetaDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", MetaDirName, err)
	}

	data, err := yaml.Marshal(sch)
	if err != nil {
		return fmt.Errorf("failed to serialize schema snapshot: %w", err)
	}

	if err := atomic.WriteFile(snapshotPath(vaultPath), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write schema snapshot: %w", err)
	}
	return nil
}

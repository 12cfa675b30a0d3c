// Package snapshotfile reads configuration snapshots authored as JSON files.
// Comments and trailing commas are allowed (JSONC).
//
// A file holds either a bare EventConfig or a published snapshot of the
// form {"version": ..., "publishedAt": ..., "config": {...}}.
package snapshotfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Eursukkul/booth-festa/internal/literal"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/tidwall/jsonc"
)

// envelope distinguishes a wrapped snapshot from a bare config by the
// presence of the config key.
type envelope struct {
	models.ConfigPublished
	Config *models.EventConfig `json:"config"`
}

// Parse strips JSONC comments and trailing commas from data and decodes the
// snapshot. A file without a version gets one derived from its content, so
// importing the same file twice is a no-op.
func Parse(data []byte) (models.ConfigPublished, error) {
	stripped := jsonc.ToJSON(data)

	var env envelope
	if err := json.Unmarshal(stripped, &env); err != nil {
		return models.ConfigPublished{}, fmt.Errorf("parsing snapshot: %w", err)
	}

	snap := env.ConfigPublished
	if env.Config != nil {
		snap.Config = *env.Config
	} else if err := json.Unmarshal(stripped, &snap.Config); err != nil {
		return models.ConfigPublished{}, fmt.Errorf("parsing config: %w", err)
	}
	snap.Config = snap.Config.Normalize()

	if err := snap.Config.Validate(); err != nil {
		return models.ConfigPublished{}, err
	}
	if snap.Version == "" {
		snap.Version = ContentVersion(snap.Config)
	}
	return snap, nil
}

// ReadFile reads and parses a snapshot file.
func ReadFile(path string) (models.ConfigPublished, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ConfigPublished{}, fmt.Errorf("reading %s: %w", path, err)
	}
	snap, err := Parse(data)
	if err != nil {
		return models.ConfigPublished{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ContentVersion names cfg after a digest of its canonical literal.
func ContentVersion(cfg models.EventConfig) string {
	sum := sha256.Sum256([]byte(literal.Encode(cfg)))
	return "seed-" + hex.EncodeToString(sum[:6])
}

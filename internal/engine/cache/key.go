package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/rshade/ecopredict/internal/score"
)

// keyVersion changes whenever scoring changes, invalidating old entries.
const keyVersion = "score/v2"

// keyInput is the hashed form of score.Input. Its field names are fixed here
// so renaming API tags never invalidates the cache. Values are kept exact
// because scoring matches categorical values verbatim.
type keyInput struct {
	Version     string  `json:"v"`
	Usage       float64 `json:"u"`
	Humidity    float64 `json:"h"`
	Solar       float64 `json:"s"`
	Wall        string  `json:"w"`
	Roof        string  `json:"r"`
	Orientation string  `json:"o"`
}

// KeyFor returns the cache key for a score input: the SHA256 hex digest of
// its canonical JSON encoding.
func KeyFor(in score.Input) (string, error) {
	data, err := json.Marshal(keyInput{
		Version:     keyVersion,
		Usage:       in.UsagePercent,
		Humidity:    in.HumidityPercent,
		Solar:       in.SolarKWh,
		Wall:        string(in.WallMaterial),
		Roof:        string(in.RoofType),
		Orientation: string(in.Orientation),
	})
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

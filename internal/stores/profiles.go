package stores

import (
	_ "embed"

	"github.com/goccy/go-yaml"

	"github.com/tillsync/tillsync/pkg/errors"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profiles holds the receipt-format settings for every supported store.
type Profiles struct {
	Netto NettoProfile `yaml:"netto"`
	Rewe  ReweProfile  `yaml:"rewe"`
	DM    DMProfile    `yaml:"dm"`
}

// NettoProfile configures the e-mail receipt extractor. The blacklist
// composition differs between receipt-format versions.
type NettoProfile struct {
	RowBlacklist []string `yaml:"row_blacklist"`
}

// ReweProfile configures the order-export extractor.
type ReweProfile struct {
	LineItemDenylist []string `yaml:"line_item_denylist"`
}

// DMProfile configures the till-receipt extractor.
type DMProfile struct {
	TotalMarker string `yaml:"total_marker"`
}

// LoadProfiles returns the embedded default store profiles.
func LoadProfiles() (*Profiles, error) {
	var p Profiles
	if err := yaml.Unmarshal(profilesYAML, &p); err != nil {
		return nil, errors.WrapParse("yaml", "store profiles", err)
	}
	return &p, nil
}

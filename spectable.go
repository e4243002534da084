package mapmorph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// specFile is the on-disk layout of a spec table.
type specFile struct {
	Transitions map[string]TransitionSpec `yaml:"transitions" toml:"transitions" json:"transitions"`
}

// SpecTable holds the transition specs keyed by forward adjacency ("0->1").
type SpecTable struct {
	specs map[string]TransitionSpec
}

// NewSpecTable creates an empty table.
func NewSpecTable() *SpecTable {
	return &SpecTable{specs: make(map[string]TransitionSpec)}
}

// Set stores the spec for the adjacency lo->hi after validating it.
func (t *SpecTable) Set(lo, hi Level, s TransitionSpec) error {
	if !lo.Valid() || !hi.Valid() || hi-lo != 1 {
		return fmt.Errorf("set spec %d->%d: %w", lo, hi, ErrNotAdjacent)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("set spec %s: %w", Key(lo, hi), err)
	}
	t.specs[Key(lo, hi)] = s
	return nil
}

// Lookup returns the spec for the adjacency between a and b in either order.
func (t *SpecTable) Lookup(a, b Level) (TransitionSpec, error) {
	if !a.Valid() || !b.Valid() || (a-b != 1 && b-a != 1) {
		return TransitionSpec{}, fmt.Errorf("lookup %d->%d: %w", a, b, ErrNotAdjacent)
	}
	key := Key(a, b)
	if t == nil {
		return TransitionSpec{}, fmt.Errorf("lookup %s: %w", key, ErrNoSpec)
	}
	s, ok := t.specs[key]
	if !ok {
		return TransitionSpec{}, fmt.Errorf("lookup %s: %w", key, ErrNoSpec)
	}
	if err := s.Validate(); err != nil {
		return TransitionSpec{}, fmt.Errorf("lookup %s: %w", key, err)
	}
	return s, nil
}

// Keys returns the table keys in sorted order.
func (t *SpecTable) Keys() []string {
	keys := make([]string, 0, len(t.specs))
	for k := range t.specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultSpecTable returns the built-in specs for the three levels.
func DefaultSpecTable() *SpecTable {
	t := NewSpecTable()

	var ringToCluster TransitionSpec
	ringToCluster.Anchors.From = AnchorSpec{Kind: AnchorNode, Role: RoleFixed, Index: 0}
	ringToCluster.Anchors.To = AnchorSpec{Kind: AnchorNode, Role: RoleToIndex}
	ringToCluster.Rotation = RotationSpec{Mode: RotationAlignPair}
	ringToCluster.Scale = ScaleSpec{Mode: ScalePairToMini, Pair: [2]int{0, 1}, Mini: 0, Source: RoleToIndex}
	ringToCluster.Pan = PanSpec{ReverseStrategy: PanForwardInverse}
	ringToCluster.Pivot = PivotTo
	ringToCluster.Mapping.Mode = MappingRingToMini4
	ringToCluster.Mapping.Roles.From = RoleSpec{Role: RoleFixed, Index: 0}
	ringToCluster.Mapping.Roles.To = RoleSpec{Role: RoleToIndex}
	ringToCluster.Fades = FadeSpec{From: Window{0.5, 0.9}, To: Window{0.1, 0.5}}
	ringToCluster.DurationMs = 1100

	var clusterToHallway TransitionSpec
	clusterToHallway.Anchors.From = AnchorSpec{Kind: AnchorDoorCenter, Role: RoleFromIndex}
	clusterToHallway.Anchors.To = AnchorSpec{Kind: AnchorDoorCenter, Role: RoleFixed, Index: 0}
	clusterToHallway.Rotation = RotationSpec{Mode: RotationDoor, Side: SideCenter}
	clusterToHallway.Scale = ScaleSpec{Mode: ScaleDoorGapRatio, DoorGapHalf: 0.45, Source: RoleFromIndex}
	clusterToHallway.Pan = PanSpec{ReverseStrategy: PanIdentityStart}
	clusterToHallway.Pivot = PivotTo
	clusterToHallway.Mapping.Mode = MappingSingleDoor
	clusterToHallway.Mapping.Roles.From = RoleSpec{Role: RoleFromIndex}
	clusterToHallway.Mapping.Roles.To = RoleSpec{Role: RoleFixed, Index: 0}
	clusterToHallway.Fades = FadeSpec{From: Window{0.3, 0.7}, To: Window{0.25, 0.65}}
	clusterToHallway.DurationMs = 900

	// The built-in specs are known to be valid.
	_ = t.Set(LevelRing, LevelCluster, ringToCluster)
	_ = t.Set(LevelCluster, LevelHallway, clusterToHallway)
	return t
}

// LoadSpecTable reads a spec table from a YAML, TOML, or JSON file. The
// format is chosen by extension; anything else is parsed as YAML.
func LoadSpecTable(path string) (*SpecTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec table: %w", err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	t, err := ParseSpecTable(data, ext)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// ParseSpecTable decodes a spec table in the given format ("yaml", "yml",
// "toml", or "json").
func ParseSpecTable(data []byte, format string) (*SpecTable, error) {
	var f specFile
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &f)
	case "toml":
		err = toml.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse spec table: %w", err)
	}

	t := NewSpecTable()
	for key, s := range f.Transitions {
		lo, hi, err := parseKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse spec table: %w", err)
		}
		if err := t.Set(lo, hi, s); err != nil {
			return nil, fmt.Errorf("parse spec table: %w", err)
		}
	}
	return t, nil
}

// WriteYAML encodes the table in the same layout LoadSpecTable reads.
func (t *SpecTable) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(specFile{Transitions: t.specs}); err != nil {
		return fmt.Errorf("encode spec table: %w", err)
	}
	return enc.Close()
}

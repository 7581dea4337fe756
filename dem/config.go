package dem

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the knobs that govern the dT/kT handshake and output
// behavior for a user call, loaded from the engine section of a scene file.
type EngineConfig struct {
	// H is the integration timestep in seconds.
	H float64 `yaml:"h"`
	// CycleDuration is how much simulated time one user call covers; dT
	// runs cycles of H each until it is reached.
	CycleDuration float64 `yaml:"cycle_duration"`
	// UpdateThreshold is the max stamps of drift dT may accrue before
	// blocking for a fresh contact list.
	UpdateThreshold int64 `yaml:"update_threshold"`

	IsHistoryless   bool `yaml:"is_historyless"`
	IsStepConst     bool `yaml:"is_step_const"`
	IsAsync         bool `yaml:"is_async"`
	CanFamilyChange bool `yaml:"can_family_change"`

	OutputFlags OutputFlags `yaml:"output_flags"`
	Verbosity   Verbosity   `yaml:"verbosity"`
}

// OutputFlags is a bitset selecting which per-owner columns an output
// writer emits beyond the mandatory position/radius columns.
type OutputFlags uint16

const (
	OutputAbsV OutputFlags = 1 << iota
	OutputVel
	OutputAngVel
	OutputAcc
	OutputAngAcc
	OutputFamily
	OutputMaterial
)

func (f OutputFlags) Has(flag OutputFlags) bool { return f&flag != 0 }

// Verbosity controls how much diagnostic work the dynamic worker performs
// per cycle, matching the three levels named in the engine's scheduling
// design: silent running, per-step metric logging, and full debug tracing.
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota
	VerbosityStepMetric
	VerbosityDebug
)

// UnmarshalYAML lets Verbosity be written as a string in scene files
// ("quiet", "step_metric", "debug") instead of a bare integer.
func (v *Verbosity) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "quiet", "":
		*v = VerbosityQuiet
	case "step_metric":
		*v = VerbosityStepMetric
	case "debug":
		*v = VerbosityDebug
	default:
		return fmt.Errorf("unknown verbosity %q", s)
	}
	return nil
}

// SceneConfig is the static scene description: templates, materials and
// family table a façade uses to populate ManagedArrays before the workers
// start.
type SceneConfig struct {
	Templates []TemplateConfig `yaml:"templates"`
	Instances []InstanceConfig `yaml:"instances"`
	Families  []FamilyEntry    `yaml:"families"`
	Engine    EngineConfig     `yaml:"engine"`
}

// InstanceConfig places one owner in the scene: which template it uses,
// its initial position, and its user-facing family number.
type InstanceConfig struct {
	Type       string     `yaml:"type"` // "clump", "analytical", or "mesh"
	TemplateID int        `yaml:"template_id"`
	InitialPos [3]float64 `yaml:"initial_pos"`
	UserFamily uint32     `yaml:"family"`
}

// CountByType returns how many instances of each owner type the scene
// declares, in partition order, for use by NewSystem's allocation step.
func (c SceneConfig) CountByType() (clumps, analyticals, meshes int) {
	for _, inst := range c.Instances {
		switch inst.Type {
		case "analytical":
			analyticals++
		case "mesh":
			meshes++
		default:
			clumps++
		}
	}
	return
}

// TemplateConfig is the YAML-facing mirror of Template plus the material it
// references inline.
type TemplateConfig struct {
	Mass     float64    `yaml:"mass"`
	MOI      [3]float64 `yaml:"moi"`
	Radius   float64    `yaml:"radius"`
	LocalPos [3]float64 `yaml:"local_pos"`
	Material MaterialConfig `yaml:"material"`
}

// MaterialConfig is the YAML-facing mirror of Material.
type MaterialConfig struct {
	YoungsModulus float64 `yaml:"youngs_modulus"`
	PoissonsRatio float64 `yaml:"poissons_ratio"`
	Restitution   float64 `yaml:"restitution"`
	Friction      float64 `yaml:"friction"`
	RollingResist float64 `yaml:"rolling_resist"`
}

// FamilyEntry seeds the family map with a user family number and whether
// output from it should be suppressed.
type FamilyEntry struct {
	UserFamily uint32 `yaml:"family"`
	Suppressed bool   `yaml:"suppressed"`
}

// LoadSceneConfig reads and strictly parses a scene YAML file: unknown keys
// are a hard error.
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene config %s: %w", path, err)
	}
	var cfg SceneConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scene config %s: %w", path, err)
	}
	if cfg.Engine.UpdateThreshold < 1 {
		cfg.Engine.UpdateThreshold = 1
	}
	return &cfg, nil
}

// BuildFamilyMap constructs a FamilyMap from the scene's family table,
// applying suppression entries in the order they are listed.
func BuildFamilyMap(entries []FamilyEntry, defaultUserFamily uint32) *FamilyMap {
	fm := NewFamilyMap(defaultUserFamily)
	for _, e := range entries {
		fm.Define(e.UserFamily)
		if e.Suppressed {
			fm.Suppress(e.UserFamily)
		}
	}
	return fm
}

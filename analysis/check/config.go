package check

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Standard selects the C or C++ language standard. It influences only the
// shl-overflow top-bits window.
type Standard uint8

const (
	C89 Standard = iota
	C99
	C11
	CPP98
	CPP11
	CPP14
)

var standardNames = map[string]Standard{
	"c89":   C89,
	"c99":   C99,
	"c11":   C11,
	"c++98": CPP98,
	"c++11": CPP11,
	"c++14": CPP14,
}

func (s Standard) String() string {
	for name, std := range standardNames {
		if std == s {
			return name
		}
	}
	return "c89"
}

// ParseStandard resolves a standard name like "c11" or "c++14".
func ParseStandard(name string) (Standard, error) {
	if std, ok := standardNames[name]; ok {
		return std, nil
	}
	return C89, fmt.Errorf("unknown language standard %q", name)
}

// UnmarshalYAML decodes a standard from its name.
func (s *Standard) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	std, err := ParseStandard(name)
	if err != nil {
		return err
	}
	*s = std
	return nil
}

// Config enables the individual check families and the global toggles.
type Config struct {
	BoundsCheck           bool `yaml:"bounds-check"`
	PointerCheck          bool `yaml:"pointer-check"`
	MemoryLeakCheck       bool `yaml:"memory-leak-check"`
	DivByZeroCheck        bool `yaml:"div-by-zero-check"`
	SignedOverflowCheck   bool `yaml:"signed-overflow-check"`
	UnsignedOverflowCheck bool `yaml:"unsigned-overflow-check"`
	PointerOverflowCheck  bool `yaml:"pointer-overflow-check"`
	ConversionCheck       bool `yaml:"conversion-check"`
	UndefinedShiftCheck   bool `yaml:"undefined-shift-check"`
	FloatOverflowCheck    bool `yaml:"float-overflow-check"`
	NanCheck              bool `yaml:"nan-check"`

	Simplify          bool `yaml:"simplify"`
	RetainTrivial     bool `yaml:"retain-trivial"`
	AssertToAssume    bool `yaml:"assert-to-assume"`
	Assertions        bool `yaml:"assertions"`
	BuiltInAssertions bool `yaml:"built-in-assertions"`
	Assumptions       bool `yaml:"assumptions"`

	ErrorLabels []string `yaml:"error-label"`

	Standard Standard `yaml:"standard"`
}

// DefaultConfig keeps user assertions and assumptions and simplifies
// emitted properties; every check family starts disabled.
func DefaultConfig() Config {
	return Config{
		Simplify:          true,
		Assertions:        true,
		BuiltInAssertions: true,
		Assumptions:       true,
	}
}

// LoadProfile reads a YAML config profile, layered over the defaults.
func LoadProfile(path string) (Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.UnmarshalStrict(data, &conf); err != nil {
		return conf, fmt.Errorf("config profile %s: %w", path, err)
	}
	return conf, nil
}

// flagReset temporarily overrides Boolean flags, restoring the saved
// values on restore. Used for source-location pragmas.
type flagReset struct {
	saved []struct {
		flag *bool
		val  bool
	}
}

func (r *flagReset) set(flag *bool, v bool) {
	if *flag != v {
		r.saved = append(r.saved, struct {
			flag *bool
			val  bool
		}{flag, *flag})
		*flag = v
	}
}

func (r *flagReset) restore() {
	for _, s := range r.saved {
		*s.flag = s.val
	}
	r.saved = nil
}

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/treelint/treelint/pkg/errors"
	"github.com/treelint/treelint/pkg/logging"
	"github.com/treelint/treelint/pkg/types"
)

// EnvPrefix is the prefix of environment variables that override
// configuration file settings.
const EnvPrefix = "TREELINT_"

// FileNames are the project config file names probed in order
var FileNames = []string{".treelint.yaml", "treelint.yaml", ".treelint.toml", "treelint.toml"}

// envKeys maps a TREELINT_-stripped variable name to its settings key
var envKeys = map[string]string{
	"MODE":             "mode",
	"MAX_DEPTH":        "scan.max_depth",
	"MAX_FILES":        "scan.max_files",
	"TIMEOUT":          "scan.timeout",
	"CONCURRENCY":      "scan.concurrency",
	"FOLLOW_SYMLINKS":  "scan.follow_symlinks",
	"USE_IGNORE_FILES": "scan.use_ignore_files",
}

// Find probes dir for a project config file and returns its path, or
// the empty string when none exists.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Default returns the built-in configuration with no project file
// applied. Environment overrides still apply.
func Default() (*types.Config, error) {
	return assemble(nil, "")
}

// Load reads, layers, and decodes the config file at path
func Load(path string) (*types.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "resolving %s", path)
	}

	chain, err := resolveChain(abs, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return assemble(chain, abs)
}

// LoadDir finds and loads the project config in dir, falling back to
// the defaults when dir has none. The second return is the path of the
// file used, empty for defaults.
func LoadDir(dir string) (*types.Config, string, error) {
	path := Find(dir)
	if path == "" {
		cfg, err := Default()
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Hash returns a stable digest of the fully merged configuration,
// suitable as a cache key component.
func Hash(cfg *types.Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// doc is one resolved layer of the extends chain
type doc struct {
	raw    map[string]interface{}
	path   string // file path, empty for embedded presets
	preset string // preset name, empty for files
}

// resolveChain parses the file at path and every config it extends,
// base layers first.
func resolveChain(path string, seen map[string]bool) ([]doc, error) {
	if seen[path] {
		return nil, errors.Newf(errors.ErrConfigValid, "extends cycle through %s", path)
	}
	seen[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", path)
	}
	raw, err := parseRaw(path, data)
	if err != nil {
		return nil, err
	}

	chain, err := resolveExtends(raw, filepath.Dir(path), seen)
	if err != nil {
		return nil, err
	}
	return append(chain, doc{raw: raw, path: path}), nil
}

func resolveExtends(raw map[string]interface{}, dir string, seen map[string]bool) ([]doc, error) {
	v, ok := raw["extends"]
	if !ok {
		return nil, nil
	}
	delete(raw, "extends")

	var refs []string
	switch e := v.(type) {
	case string:
		refs = []string{e}
	case []interface{}:
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New(errors.ErrConfigValid, "extends entries must be strings")
			}
			refs = append(refs, s)
		}
	default:
		return nil, errors.New(errors.ErrConfigValid, "extends must be a string or list of strings")
	}

	var chain []doc
	for _, ref := range refs {
		if !strings.ContainsAny(ref, "/\\.") {
			if seen["preset:"+ref] {
				return nil, errors.Newf(errors.ErrConfigValid, "extends cycle through preset %q", ref)
			}
			seen["preset:"+ref] = true

			data, ok := presetBytes(ref)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigValid,
					"unknown preset %q (available: %s)", ref, strings.Join(PresetNames(), ", "))
			}
			parsed, err := kyaml.Parser().Unmarshal(data)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing preset %q", ref)
			}
			chain = append(chain, doc{raw: parsed, preset: ref})
			continue
		}

		base := ref
		if !filepath.IsAbs(base) {
			base = filepath.Join(dir, base)
		}
		sub, err := resolveChain(base, seen)
		if err != nil {
			return nil, err
		}
		chain = append(chain, sub...)
	}
	return chain, nil
}

func parseRaw(path string, data []byte) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
		}
	case ".toml":
		if err := gotoml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
		}
	default:
		return nil, errors.Newf(errors.ErrConfigParse, "unsupported config format: %s", path)
	}
	return raw, nil
}

// assemble layers defaults, the extends chain, and the environment into
// a final Config.
func assemble(chain []doc, origin string) (*types.Config, error) {
	logger := logging.GetLogger("config")

	defaults, err := toml.Parser().Unmarshal(defaultConfig)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "parsing embedded defaults")
	}

	// Scalar settings go through koanf so the environment can override
	// any layer.
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading defaults")
	}
	for _, d := range chain {
		if d.path != "" {
			if err := k.Load(file.Provider(d.path), parserFor(d.path)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "loading %s", d.path)
			}
			continue
		}
		if err := k.Load(confmap.Provider(d.raw, "."), nil); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "loading preset %q", d.preset)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading environment")
	}

	var s settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "decoding settings")
	}

	// Pattern-keyed sections merge outside koanf because flattening
	// would split their keys on dots.
	merged := map[string]interface{}{}
	mergeMaps(merged, defaults)
	for _, d := range chain {
		mergeMaps(merged, d.raw)
	}

	cfg := &types.Config{
		Mode:        types.Mode(s.Mode),
		Ignore:      stringSlice(merged["ignore"]),
		IgnorePaths: stringSlice(merged["ignore_paths"]),
		Scan: types.ScanOptions{
			MaxDepth:       s.Scan.MaxDepth,
			MaxFiles:       s.Scan.MaxFiles,
			Timeout:        s.Scan.Timeout,
			Concurrency:    s.Scan.Concurrency,
			FollowSymlinks: s.Scan.FollowSymlinks,
			UseIgnoreFiles: s.Scan.UseIgnoreFiles,
		},
	}

	if cfg.Mode != types.ModeStrict && cfg.Mode != types.ModeWarn {
		return nil, errors.Newf(errors.ErrConfigValid, "unknown mode %q", s.Mode)
	}

	cfg.Rules, err = decodeRules(merged["rules"])
	if err != nil {
		return nil, err
	}
	cfg.Layout, err = DecodeLayout(merged["layout"])
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("origin", origin).
		Int("layers", len(chain)).
		Str("mode", string(cfg.Mode)).
		Msg("configuration assembled")

	return cfg, nil
}

type settings struct {
	Mode string       `koanf:"mode"`
	Scan scanSettings `koanf:"scan"`
}

type scanSettings struct {
	MaxDepth       int           `koanf:"max_depth"`
	MaxFiles       int           `koanf:"max_files"`
	Timeout        time.Duration `koanf:"timeout"`
	Concurrency    int           `koanf:"concurrency"`
	FollowSymlinks bool          `koanf:"follow_symlinks"`
	UseIgnoreFiles bool          `koanf:"use_ignore_files"`
}

type rulesDoc struct {
	ForbiddenPaths []string            `koanf:"forbidden_paths"`
	ForbiddenNames []string            `koanf:"forbidden_names"`
	Dependencies   map[string][]string `koanf:"dependencies"`
	Mirrors        []mirrorDoc         `koanf:"mirrors"`
	When           []whenDoc           `koanf:"when"`
	Match          []matchDoc          `koanf:"match"`
}

type mirrorDoc struct {
	Source string `koanf:"source"`
	Target string `koanf:"target"`
}

type whenDoc struct {
	If      string   `koanf:"if"`
	Require []string `koanf:"require"`
	Forbid  []string `koanf:"forbid"`
}

type matchDoc struct {
	Name      string   `koanf:"name"`
	Pattern   string   `koanf:"pattern"`
	Exclude   []string `koanf:"exclude"`
	Require   []string `koanf:"require"`
	Forbid    []string `koanf:"forbid"`
	Allow     []string `koanf:"allow"`
	Case      string   `koanf:"case"`
	ChildCase string   `koanf:"child_case"`
}

func decodeRules(raw interface{}) (types.RuleSet, error) {
	var rs types.RuleSet
	if raw == nil {
		return rs, nil
	}

	var d rulesDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &d,
		TagName:          "koanf",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return rs, errors.Wrap(err, errors.ErrInternal, "building rules decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return rs, errors.Wrap(err, errors.ErrConfigValid, "decoding rules")
	}

	rs.ForbiddenPaths = d.ForbiddenPaths
	rs.ForbiddenNames = d.ForbiddenNames
	rs.Dependencies = d.Dependencies
	for _, m := range d.Mirrors {
		if m.Source == "" || m.Target == "" {
			return rs, errors.New(errors.ErrConfigValid, "mirror rules need both source and target")
		}
		rs.Mirrors = append(rs.Mirrors, types.MirrorRule{Source: m.Source, Target: m.Target})
	}
	for _, w := range d.When {
		if w.If == "" {
			return rs, errors.New(errors.ErrConfigValid, "when rules need an if pattern")
		}
		rs.When = append(rs.When, types.WhenRule{If: w.If, Require: w.Require, Forbid: w.Forbid})
	}
	for _, m := range d.Match {
		if m.Pattern == "" {
			return rs, errors.New(errors.ErrConfigValid, "match rules need a pattern")
		}
		caseStyle, err := ParseCaseStyle(m.Case)
		if err != nil {
			return rs, err
		}
		childCase, err := ParseCaseStyle(m.ChildCase)
		if err != nil {
			return rs, err
		}
		rs.Match = append(rs.Match, types.MatchRule{
			Name:      m.Name,
			Pattern:   m.Pattern,
			Exclude:   m.Exclude,
			Require:   m.Require,
			Forbid:    m.Forbid,
			Allow:     m.Allow,
			Case:      caseStyle,
			ChildCase: childCase,
		})
	}
	return rs, nil
}

func parserFor(path string) koanf.Parser {
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		return toml.Parser()
	}
	return kyaml.Parser()
}

func envKey(name string) string {
	return envKeys[strings.TrimPrefix(name, EnvPrefix)]
}

// mergeMaps merges src into dest: nested maps merge, slices append,
// scalars overwrite.
func mergeMaps(dest, src map[string]interface{}) {
	for key, srcVal := range src {
		destVal, ok := dest[key]
		if !ok {
			dest[key] = srcVal
			continue
		}
		if srcMap, ok := asStringMap(srcVal); ok {
			if destMap, ok := asStringMap(destVal); ok {
				mergeMaps(destMap, srcMap)
				dest[key] = destMap
				continue
			}
		}
		if isSlice(srcVal) && isSlice(destVal) {
			dest[key] = append(toSlice(destVal), toSlice(srcVal)...)
			continue
		}
		dest[key] = srcVal
	}
}

func isSlice(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []string:
		return true
	}
	return false
}

func toSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return s
	case []string:
		out := make([]interface{}, len(s))
		for i, val := range s {
			out[i] = val
		}
		return out
	}
	return nil
}

func stringSlice(v interface{}) []string {
	if v == nil {
		return nil
	}
	var out []string
	for _, item := range toSlice(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

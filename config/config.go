package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lab1702/marksman/game"
	"github.com/lab1702/marksman/server"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the targeting server and replay tool.
// Fields left out of the file take the stock defaults.
//
// YAML schema:
//
//	port: "8080"
//	seed: 1
//	debug:
//	  solver: false
//	  classifier: false
//	rules:
//	  max_velocity: 8
//	  gun_turn_rate: 20
//	  ...
//	classifier:
//	  order: [stationary, circular, linear, projection]
//	  linear_threshold: 10
//	  ...
//	solver:
//	  max_lead_ticks: 100
//	  jitter_deg: 0
//	  ...
//	ranking:
//	  kind_order: [stationary, circular, linear, projection]
//	  critical_energy: 50
//	  droid_energy: 100
type Config struct {
	Port       string           `yaml:"port"`
	Seed       int64            `yaml:"seed"`
	Debug      DebugConfig      `yaml:"debug"`
	Rules      RulesConfig      `yaml:"rules"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Solver     SolverConfig     `yaml:"solver"`
	Ranking    RankingConfig    `yaml:"ranking"`
}

type DebugConfig struct {
	Solver     bool `yaml:"solver"`
	Classifier bool `yaml:"classifier"`
}

type RulesConfig struct {
	MaxVelocity         float64  `yaml:"max_velocity"`
	Acceleration        float64  `yaml:"acceleration"`
	Deceleration        float64  `yaml:"deceleration"`
	MaxTurnRate         float64  `yaml:"max_turn_rate"`
	GunTurnRate         float64  `yaml:"gun_turn_rate"`
	MinBulletPower      float64  `yaml:"min_bullet_power"`
	MaxBulletPower      float64  `yaml:"max_bullet_power"`
	BulletBaseSpeed     float64  `yaml:"bullet_base_speed"`
	BulletSpeedPerPower *float64 `yaml:"bullet_speed_per_power"`
	BotHalfWidth        float64  `yaml:"bot_half_width"`
}

type ClassifierConfig struct {
	Order               []string `yaml:"order"`
	StationaryThreshold int      `yaml:"stationary_threshold"`
	LinearThreshold     int      `yaml:"linear_threshold"`
	CircularThreshold   int      `yaml:"circular_threshold"`
	ProjectionMaxGap    int64    `yaml:"projection_max_gap"`
	MaxCircleRadius     float64  `yaml:"max_circle_radius"`
	StationaryTolerance float64  `yaml:"stationary_tolerance"`
	LineTolerance       float64  `yaml:"line_tolerance"`
	CircleTolerance     float64  `yaml:"circle_tolerance"`
	HeadingTolerance    float64  `yaml:"heading_tolerance"`
	StopVelocity        float64  `yaml:"stop_velocity"`
	RequireLinearStops  *bool    `yaml:"require_linear_stops"`
	HistoryLimit        int      `yaml:"history_limit"`
	Horizon             int64    `yaml:"horizon"`
}

// SolverConfig fields that are pointers accept an explicit 0
type SolverConfig struct {
	MaxLeadTicks       int64    `yaml:"max_lead_ticks"`
	MaxAimIterations   *int     `yaml:"max_aim_iterations"`
	FullPowerRadius    *float64 `yaml:"full_power_radius"`
	PowerDropoffRange  float64  `yaml:"power_dropoff_range"`
	PowerDropoffStep   *float64 `yaml:"power_dropoff_step"`
	FootprintTolerance float64  `yaml:"footprint_tolerance"`
	FriendlyFireRadius *float64 `yaml:"friendly_fire_radius"`
	FriendlyTolerance  *float64 `yaml:"friendly_tolerance"`
	JitterDeg          float64  `yaml:"jitter_deg"`
}

type RankingConfig struct {
	KindOrder      []string `yaml:"kind_order"`
	CriticalEnergy float64  `yaml:"critical_energy"`
	DroidEnergy    float64  `yaml:"droid_energy"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads, defaults and validates the YAML configuration at path
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration. Unknown keys are rejected so a typo does
// not silently fall back to a default.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Seed == 0 {
		c.Seed = 1
	}

	rules := game.DefaultRules()
	defaultFloat(&c.Rules.MaxVelocity, rules.MaxVelocity)
	defaultFloat(&c.Rules.Acceleration, rules.Acceleration)
	defaultFloat(&c.Rules.Deceleration, rules.Deceleration)
	defaultFloat(&c.Rules.MaxTurnRate, rules.MaxTurnRate)
	defaultFloat(&c.Rules.GunTurnRate, rules.GunTurnRate)
	defaultFloat(&c.Rules.MinBulletPower, rules.MinBulletPower)
	defaultFloat(&c.Rules.MaxBulletPower, rules.MaxBulletPower)
	defaultFloat(&c.Rules.BulletBaseSpeed, rules.BulletBaseSpeed)
	defaultFloatPtr(&c.Rules.BulletSpeedPerPower, rules.BulletSpeedPerPower)
	defaultFloat(&c.Rules.BotHalfWidth, rules.BotHalfWidth)

	classifier := game.DefaultClassifierConfig()
	if len(c.Classifier.Order) == 0 {
		c.Classifier.Order = kindNames(classifier.Order)
	}
	defaultInt(&c.Classifier.StationaryThreshold, classifier.StationaryThreshold)
	defaultInt(&c.Classifier.LinearThreshold, classifier.LinearThreshold)
	defaultInt(&c.Classifier.CircularThreshold, classifier.CircularThreshold)
	if c.Classifier.ProjectionMaxGap == 0 {
		c.Classifier.ProjectionMaxGap = classifier.ProjectionMaxGap
	}
	defaultFloat(&c.Classifier.MaxCircleRadius, classifier.MaxCircleRadius)
	defaultFloat(&c.Classifier.StationaryTolerance, classifier.StationaryTolerance)
	defaultFloat(&c.Classifier.LineTolerance, classifier.LineTolerance)
	defaultFloat(&c.Classifier.CircleTolerance, classifier.CircleTolerance)
	defaultFloat(&c.Classifier.HeadingTolerance, classifier.HeadingTolerance)
	defaultFloat(&c.Classifier.StopVelocity, classifier.StopVelocity)
	if c.Classifier.RequireLinearStops == nil {
		stops := classifier.RequireLinearStops
		c.Classifier.RequireLinearStops = &stops
	}
	defaultInt(&c.Classifier.HistoryLimit, classifier.HistoryLimit)
	if c.Classifier.Horizon == 0 {
		c.Classifier.Horizon = classifier.Horizon
	}

	solver := server.DefaultSolverConfig()
	if c.Solver.MaxLeadTicks == 0 {
		c.Solver.MaxLeadTicks = solver.MaxLeadTicks
	}
	if c.Solver.MaxAimIterations == nil {
		iterations := solver.MaxAimIterations
		c.Solver.MaxAimIterations = &iterations
	}
	defaultFloatPtr(&c.Solver.FullPowerRadius, solver.Power.NearRadius)
	defaultFloat(&c.Solver.PowerDropoffRange, solver.Power.DropoffRange)
	defaultFloatPtr(&c.Solver.PowerDropoffStep, solver.Power.DropoffStep)
	defaultFloatPtr(&c.Solver.FriendlyFireRadius, solver.FriendlyFireRadius)
	defaultFloatPtr(&c.Solver.FriendlyTolerance, solver.FriendlyTolerance)

	ranking := server.DefaultRankingConfig()
	if len(c.Ranking.KindOrder) == 0 {
		c.Ranking.KindOrder = kindNames(ranking.KindOrder)
	}
	defaultFloat(&c.Ranking.CriticalEnergy, ranking.CriticalEnergy)
	defaultFloat(&c.Ranking.DroidEnergy, ranking.DroidEnergy)
}

func defaultFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// defaultFloatPtr fills an omitted field; an explicit 0 is kept
func defaultFloatPtr(v **float64, def float64) {
	if *v == nil {
		*v = &def
	}
}

func defaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func kindNames(kinds []game.PatternKind) []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return names
}

func parseKinds(field string, names []string) ([]game.PatternKind, error) {
	kinds := make([]game.PatternKind, 0, len(names))
	for i, name := range names {
		kind, err := game.ParsePatternKind(name)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Validate checks the configuration. Omitted fields are checked at their
// defaults.
func (c Config) Validate() error {
	c.applyDefaults()
	r := c.Rules
	if r.MaxVelocity <= 0 || r.Acceleration <= 0 || r.Deceleration <= 0 {
		return fmt.Errorf("rules: velocity limits must be positive")
	}
	if r.MaxTurnRate <= 0 || r.GunTurnRate <= 0 {
		return fmt.Errorf("rules: turn rates must be positive")
	}
	if r.MinBulletPower <= 0 || r.MaxBulletPower < r.MinBulletPower {
		return fmt.Errorf("rules: bullet power range [%g, %g] is invalid", r.MinBulletPower, r.MaxBulletPower)
	}
	if *r.BulletSpeedPerPower < 0 {
		return fmt.Errorf("rules.bullet_speed_per_power cannot be negative")
	}
	if r.BulletBaseSpeed-*r.BulletSpeedPerPower*r.MaxBulletPower <= 0 {
		return fmt.Errorf("rules: a full power bullet must move")
	}
	if r.BotHalfWidth <= 0 {
		return fmt.Errorf("rules.bot_half_width must be positive")
	}

	classifier, err := c.classifierConfig()
	if err != nil {
		return err
	}
	if err := classifier.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	s := c.Solver
	if s.MaxLeadTicks < 1 {
		return fmt.Errorf("solver.max_lead_ticks must be positive")
	}
	if *s.MaxAimIterations < 0 {
		return fmt.Errorf("solver.max_aim_iterations cannot be negative")
	}
	if *s.FullPowerRadius < 0 || s.PowerDropoffRange <= 0 || *s.PowerDropoffStep < 0 {
		return fmt.Errorf("solver: power curve is invalid")
	}
	if s.FootprintTolerance < 0 || *s.FriendlyTolerance < 0 || *s.FriendlyFireRadius < 0 {
		return fmt.Errorf("solver: tolerances and radii cannot be negative")
	}
	if s.JitterDeg < 0 || s.JitterDeg > 180 {
		return fmt.Errorf("solver.jitter_deg must be within [0, 180], got %g", s.JitterDeg)
	}

	if _, err := parseKinds("ranking.kind_order", c.Ranking.KindOrder); err != nil {
		return err
	}
	return nil
}

func (c Config) classifierConfig() (game.ClassifierConfig, error) {
	order, err := parseKinds("classifier.order", c.Classifier.Order)
	if err != nil {
		return game.ClassifierConfig{}, err
	}
	cc := c.Classifier
	out := game.ClassifierConfig{
		Order:               order,
		StationaryThreshold: cc.StationaryThreshold,
		LinearThreshold:     cc.LinearThreshold,
		CircularThreshold:   cc.CircularThreshold,
		ProjectionMaxGap:    cc.ProjectionMaxGap,
		MaxCircleRadius:     cc.MaxCircleRadius,
		StationaryTolerance: cc.StationaryTolerance,
		LineTolerance:       cc.LineTolerance,
		CircleTolerance:     cc.CircleTolerance,
		HeadingTolerance:    cc.HeadingTolerance,
		StopVelocity:        cc.StopVelocity,
		HistoryLimit:        cc.HistoryLimit,
		Horizon:             cc.Horizon,
	}
	if cc.RequireLinearStops != nil {
		out.RequireLinearStops = *cc.RequireLinearStops
	}
	return out, nil
}

// EngineConfig converts the configuration for the targeting engine
func (c Config) EngineConfig() (server.EngineConfig, error) {
	c.applyDefaults()
	classifier, err := c.classifierConfig()
	if err != nil {
		return server.EngineConfig{}, err
	}
	kindOrder, err := parseKinds("ranking.kind_order", c.Ranking.KindOrder)
	if err != nil {
		return server.EngineConfig{}, err
	}

	r := c.Rules
	s := c.Solver
	return server.EngineConfig{
		Rules: game.Rules{
			MaxVelocity:         r.MaxVelocity,
			Acceleration:        r.Acceleration,
			Deceleration:        r.Deceleration,
			MaxTurnRate:         r.MaxTurnRate,
			GunTurnRate:         r.GunTurnRate,
			MinBulletPower:      r.MinBulletPower,
			MaxBulletPower:      r.MaxBulletPower,
			BulletBaseSpeed:     r.BulletBaseSpeed,
			BulletSpeedPerPower: *r.BulletSpeedPerPower,
			BotHalfWidth:        r.BotHalfWidth,
		},
		Classifier: classifier,
		Solver: server.SolverConfig{
			MaxLeadTicks:     s.MaxLeadTicks,
			MaxAimIterations: *s.MaxAimIterations,
			Power: game.PowerCurve{
				NearRadius:   *s.FullPowerRadius,
				DropoffRange: s.PowerDropoffRange,
				DropoffStep:  *s.PowerDropoffStep,
			},
			FootprintTolerance: s.FootprintTolerance,
			FriendlyFireRadius: *s.FriendlyFireRadius,
			FriendlyTolerance:  *s.FriendlyTolerance,
			JitterDeg:          s.JitterDeg,
		},
		Ranking: server.RankingConfig{
			KindOrder:      kindOrder,
			CriticalEnergy: c.Ranking.CriticalEnergy,
			DroidEnergy:    c.Ranking.DroidEnergy,
		},
		Seed: c.Seed,
	}, nil
}

// ApplyDebug sets the server debug flags
func (c Config) ApplyDebug() {
	server.DebugSolver = c.Debug.Solver
	server.DebugClassifier = c.Debug.Classifier
}

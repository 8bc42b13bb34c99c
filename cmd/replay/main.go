// Command replay runs a scripted engagement through the targeting engine and
// compares its hit rate with a naive constant-velocity lead.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/lab1702/marksman/config"
	"github.com/lab1702/marksman/server"
	"github.com/lab1702/marksman/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	scenarioPath := flag.String("scenario", "", "Path to a YAML scenario script (required)")
	every := flag.Int64("every", 10, "Fire at every opponent each N ticks")
	verbose := flag.Bool("v", false, "Print every graded shot")
	plotPath := flag.String("plot", "", "Write a cumulative hit rate chart (.png, .svg or .pdf)")
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyDebug()

	engineConfig, err := cfg.EngineConfig()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	script, err := sim.LoadScenarioScript(*scenarioPath)
	if err != nil {
		log.Fatalf("Scenario: %v", err)
	}
	scn, err := sim.NewScenario(script, engineConfig.Rules)
	if err != nil {
		log.Fatalf("Scenario: %v", err)
	}

	var shots []sim.ShotResult
	opts := sim.ReplayOptions{Every: *every}
	opts.OnShot = func(r sim.ShotResult) {
		shots = append(shots, r)
		if *verbose {
			source := "engine"
			if r.Baseline {
				source = "naive"
			}
			outcome := r.Outcome.String()
			if r.Outcome == sim.ShotHit {
				outcome = fmt.Sprintf("hit at %d", r.HitTick)
			}
			log.Printf("tick %d %s -> %s: heading %.1f speed %.1f, %s",
				r.Tick, source, r.Name, r.Shot.Heading, r.Shot.Speed, outcome)
		}
	}

	results := sim.Replay(scn, server.NewEngine(engineConfig), opts)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPPONENT\tPATTERN\tSHOTS\tHITS\tRATE\tHELD\tUNGRADED\tNAIVE\tNAIVE RATE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\t%d\t%d\t%d/%d\t%.1f%%\n",
			r.Name, r.Kind, r.Shots, r.Hits, r.HitRate()*100, r.NoSolution, r.Ungraded,
			r.BaselineHits, r.BaselineShots, r.BaselineHitRate()*100)
	}
	w.Flush()

	if *plotPath != "" {
		if err := sim.SaveHitRateChart(shots, *plotPath); err != nil {
			log.Fatalf("Plot: %v", err)
		}
		log.Printf("Hit rate chart written to %s", *plotPath)
	}
}

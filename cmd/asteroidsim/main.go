// Command asteroidsim drives the collision-culling kernel over a seeded
// asteroid field for a configured number of ticks, reporting survivor
// counts as it goes.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/outpost-sim/asteroids/asteroid"
	"github.com/outpost-sim/asteroids/collisionmap"
	"github.com/outpost-sim/asteroids/fixedpoint"
	"github.com/outpost-sim/asteroids/hwy/contrib/workerpool"
	"github.com/outpost-sim/asteroids/internal/worldconfig"
	"github.com/outpost-sim/asteroids/kernel"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "asteroidsim",
	Short: "Run the fixed-point asteroid collision-culling kernel",
	Long: `asteroidsim seeds a ring of asteroids drifting toward the hub and
steps the collision-culling kernel a configured number of ticks, logging
how many asteroids remain as tiles and escape culling remove them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation to completion",
	RunE:  runSimulation,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a world config YAML file")
	rootCmd.AddCommand(runCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("asteroidsim dev")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("asteroidsim failed", "error", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := worldconfig.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Log.Level == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	m := collisionmap.New()
	store := seedField(cfg.Seed)

	slog.Info("simulation starting",
		"ticks", cfg.Sim.Ticks,
		"kernel", cfg.Sim.Kernel,
		"asteroids", store.Size(),
	)

	var pool *workerpool.Pool
	if cfg.Sim.Kernel == worldconfig.KernelSharded {
		pool = workerpool.New(cfg.Sim.Workers)
		defer pool.Close()
	}

	for tick := 0; tick < cfg.Sim.Ticks && store.Size() > 0; tick++ {
		switch cfg.Sim.Kernel {
		case worldconfig.KernelVector:
			kernel.UpdateVector(store, m, cfg.Sim.PlatformVel)
		case worldconfig.KernelSharded:
			kernel.UpdateSharded(store, m, cfg.Sim.PlatformVel, pool)
		default:
			kernel.UpdateScalar(store, m, cfg.Sim.PlatformVel)
		}

		if tick%50 == 0 || store.Size() == 0 {
			slog.Debug("tick complete", "tick", tick, "survivors", store.Size())
		}
		if store.Size() == 0 {
			slog.Info("all asteroids culled", "tick", tick)
			break
		}
	}

	slog.Info("simulation finished", "survivors", store.Size())
	return nil
}

// seedField builds a store of cfg.Count asteroids placed evenly around a
// ring of radius cfg.SpawnRing, each drifting inward at cfg.Speed plus a
// small per-asteroid jitter.
func seedField(cfg worldconfig.SeedConfig) *asteroid.Store {
	s := asteroid.New()
	s.Resize(cfg.Count)

	posX := s.RawPositionX()
	posY := s.RawPositionY()
	velX := s.RawVelocityX()
	velY := s.RawVelocityY()

	for i := 0; i < cfg.Count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(cfg.Count)
		px := cfg.SpawnRing * math.Cos(angle)
		py := cfg.SpawnRing * math.Sin(angle)

		jitter := 0.9 + 0.2*rand.Float64()
		vx := -cfg.Speed * jitter * math.Cos(angle)
		vy := -cfg.Speed * jitter * math.Sin(angle)

		posX[i] = fixedpoint.PosFromReal(px)
		posY[i] = fixedpoint.PosFromReal(py)
		velX[i] = fixedpoint.VelFromReal(vx)
		velY[i] = fixedpoint.VelFromReal(vy)
	}

	return s
}

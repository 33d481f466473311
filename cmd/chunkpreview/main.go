// chunkpreview generates the chunks around the origin for one seed and writes
// a summary to YAML, without running the streaming loop.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/data"
	"github.com/driftworks/chunkstream/internal/scripting"
	"github.com/driftworks/chunkstream/internal/world"
)

type chunkSummary struct {
	X       int32          `yaml:"x"`
	Y       int32          `yaml:"y"`
	Outcome string         `yaml:"outcome"`
	Biome   string         `yaml:"biome"`
	POI     string         `yaml:"poi,omitempty"`
	Debris  map[string]int `yaml:"debris,omitempty"`
}

type preview struct {
	Seed     int64          `yaml:"seed"`
	Radius   int32          `yaml:"radius"`
	Outcomes map[string]int `yaml:"outcomes"`
	Chunks   []chunkSummary `yaml:"chunks"`
}

func main() {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Usage: chunkpreview <server.toml> <seed> <radius_chunks> <output.yaml>")
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2], os.Args[3], os.Args[4]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath, seedArg, radiusArg, outPath string) error {
	seed, err := strconv.ParseInt(seedArg, 10, 64)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	radius, err := strconv.ParseInt(radiusArg, 10, 32)
	if err != nil || radius < 0 {
		return fmt.Errorf("radius_chunks must be a non-negative integer")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	content, err := data.LoadContent(cfg.Data.Dir)
	if err != nil {
		return err
	}
	log := zap.NewNop()
	ecsWorld := ecs.NewWorld()
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, content.POIs, ecsWorld, component.NewStores(ecsWorld), log)
	if err != nil {
		return err
	}
	defer engine.Close()

	gen := world.NewChunkGenerator(world.GeneratorDeps{
		Biomes:   content.Biomes,
		Selector: world.NewBiomeSelector(content.Biomes, cfg.Generation.BiomeScale),
		Sampler:  world.NewPoissonSampler(seed),
		POI:      engine,
		Config:   config.NewStaticStore(cfg),
		Log:      log,
	})
	gen.Reset(seed)

	p := preview{Seed: seed, Radius: int32(radius), Outcomes: map[string]int{}}
	r := int32(radius)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			ch, err := gen.Generate(world.ChunkCoord{X: x, Y: y})
			if err != nil {
				return err
			}
			s := chunkSummary{X: x, Y: y, Outcome: ch.Outcome.String(), Biome: ch.BiomeID(), POI: ch.POI}
			if len(ch.Debris) > 0 {
				s.Debris = map[string]int{}
				for e := range ch.Debris {
					s.Debris[e.Kind]++
				}
			}
			p.Outcomes[s.Outcome]++
			p.Chunks = append(p.Chunks, s)
		}
	}
	sort.SliceStable(p.Chunks, func(i, j int) bool {
		if p.Chunks[i].Y != p.Chunks[j].Y {
			return p.Chunks[i].Y < p.Chunks[j].Y
		}
		return p.Chunks[i].X < p.Chunks[j].X
	})

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Fprintf(out, "# Chunk preview, seed %d (%d chunks)\n", seed, len(p.Chunks))
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&p); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %d chunk summaries to %s\n", len(p.Chunks), outPath)
	return nil
}

package scripting

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/data"
	"github.com/driftworks/chunkstream/internal/world"
)

// ErrNoLayouts is returned when a point of interest is rolled but the table is empty.
var ErrNoLayouts = errors.New("no point-of-interest layouts")

// Engine wraps a single gopher-lua VM that lays out points of interest.
// Single-goroutine access only (game loop).
type Engine struct {
	vm     *lua.LState
	pois   *data.POITable
	world  *ecs.World
	stores *component.Stores
	log    *zap.Logger

	cur *placement // layout call in progress
}

type placement struct {
	layout *data.POILayout
	chunk  world.ChunkCoord
	placed []ecs.EntityID
}

// NewEngine loads every script under scriptsDir/poi and checks that each
// layout's function exists.
func NewEngine(scriptsDir string, pois *data.POITable, w *ecs.World, stores *component.Stores, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, pois: pois, world: w, stores: stores, log: log}
	vm.SetGlobal("spawn_structure", vm.NewFunction(e.spawnStructure))

	if err := e.loadDir(filepath.Join(scriptsDir, "poi")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load poi scripts: %w", err)
	}
	for _, l := range pois.Layouts() {
		if _, ok := vm.GetGlobal(l.Script).(*lua.LFunction); !ok {
			vm.Close()
			return nil, fmt.Errorf("poi %q: lua function %q not found", l.ID, l.Script)
		}
	}
	return e, nil
}

func (e *Engine) Close() { e.vm.Close() }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// GeneratePOI picks a layout with the chunk's seed and runs its Lua function.
// If the script fails, every structure it placed is removed again.
func (e *Engine) GeneratePOI(c world.ChunkCoord, seed int64) (string, error) {
	r := rand.New(rand.NewSource(seed))
	layout := e.pois.Pick(r)
	if layout == nil {
		return "", ErrNoLayouts
	}

	origin := c.Origin()
	ctx := e.vm.NewTable()
	ctx.RawSetString("chunk_x", lua.LNumber(c.X))
	ctx.RawSetString("chunk_y", lua.LNumber(c.Y))
	ctx.RawSetString("origin_x", lua.LNumber(origin.X()))
	ctx.RawSetString("origin_y", lua.LNumber(origin.Y()))
	ctx.RawSetString("size", lua.LNumber(world.ChunkSize))
	ctx.RawSetString("seed", lua.LNumber(r.Int31()))

	e.cur = &placement{layout: layout, chunk: c}
	defer func() { e.cur = nil }()

	err := e.vm.CallByParam(lua.P{
		Fn:      e.vm.GetGlobal(layout.Script),
		NRet:    0,
		Protect: true,
	}, ctx)
	if err != nil {
		for _, id := range e.cur.placed {
			e.world.DestroyEntity(id)
		}
		return "", fmt.Errorf("poi %q at %s: %w", layout.ID, c, err)
	}
	e.log.Debug("poi laid out",
		zap.String("poi", layout.ID),
		zap.Stringer("chunk", c),
		zap.Int("structures", len(e.cur.placed)))
	return layout.ID, nil
}

// spawn_structure(prototype, x, y)
func (e *Engine) spawnStructure(L *lua.LState) int {
	proto := L.CheckString(1)
	pos := mgl64.Vec2{float64(L.CheckNumber(2)), float64(L.CheckNumber(3))}
	if e.cur == nil {
		L.RaiseError("spawn_structure called outside a layout")
		return 0
	}
	if !e.cur.layout.Allows(proto) {
		L.RaiseError("layout %s may not place %q", e.cur.layout.ID, proto)
		return 0
	}
	id := e.world.CreateEntity()
	e.stores.Positions.Set(id, &component.Position{Pos: pos})
	e.stores.Structures.Set(id, &component.Structure{
		Prototype: proto,
		Layout:    e.cur.layout.ID,
		Chunk:     e.cur.chunk,
	})
	e.cur.placed = append(e.cur.placed, id)
	return 0
}

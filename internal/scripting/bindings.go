package scripting

import (
	"math"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// HostFunctions lists the globals registered into every Runtime.
var HostFunctions = []string{
	"spawn_sprite",
	"get_position",
	"set_position",
	"set_velocity",
	"is_key_pressed",
	"get_delta_time",
	"get_camera_position",
	"set_camera_position",
	"mark_as_player",
	"mark_as_camera_target",
	"mark_as_world_element",
	"set_health",
	"get_health",
	"get_stamina",
	"set_sprite_size",
	"log",
}

// hostFuncs implements the script-callable surface over a Bridge.
type hostFuncs struct {
	bridge *Bridge
	logger *log.Logger
}

// registerHostFunctions installs the host surface into L's globals.
func registerHostFunctions(L *lua.LState, b *Bridge, logger *log.Logger) {
	h := &hostFuncs{bridge: b, logger: logger}
	fns := map[string]lua.LGFunction{
		"spawn_sprite":          h.spawnSprite,
		"get_position":          h.getPosition,
		"set_position":          h.setPosition,
		"set_velocity":          h.setVelocity,
		"is_key_pressed":        h.isKeyPressed,
		"get_delta_time":        h.getDeltaTime,
		"get_camera_position":   h.getCameraPosition,
		"set_camera_position":   h.setCameraPosition,
		"mark_as_player":        h.marker(world.MarkPlayer),
		"mark_as_camera_target": h.marker(world.MarkCameraTarget),
		"mark_as_world_element": h.marker(world.MarkWorldElement),
		"set_health":            h.setHealth,
		"get_health":            h.getHealth,
		"get_stamina":           h.getStamina,
		"set_sprite_size":       h.setSpriteSize,
		"log":                   h.logMessage,
	}
	for _, name := range HostFunctions {
		L.SetGlobal(name, L.NewFunction(fns[name]))
	}
}

// checkID reads argument n as a ScriptID, raising a Lua error for anything
// that is not a non-negative integer in range.
func checkID(L *lua.LState, n int) ScriptID {
	v := float64(L.CheckNumber(n))
	if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
		L.ArgError(n, "entity id must be a non-negative integer")
		return 0
	}
	return ScriptID(v)
}

func checkFloat(L *lua.LState, n int) float64 {
	return float64(L.CheckNumber(n))
}

func pushPair(L *lua.LState, a, b float64) int {
	L.Push(lua.LNumber(a))
	L.Push(lua.LNumber(b))
	return 2
}

// spawn_sprite(width, height, r, g, b, x, y, z) -> id
func (h *hostFuncs) spawnSprite(L *lua.LState) int {
	w, ht := checkFloat(L, 1), checkFloat(L, 2)
	color := core.NewRGB(checkFloat(L, 3), checkFloat(L, 4), checkFloat(L, 5))
	x, y, z := checkFloat(L, 6), checkFloat(L, 7), checkFloat(L, 8)
	id := h.bridge.RequestSpawn(w, ht, color, x, y, z)
	L.Push(lua.LNumber(id))
	return 1
}

// get_position(id) -> x, y
func (h *hostFuncs) getPosition(L *lua.LState) int {
	p := h.bridge.Position(checkID(L, 1))
	return pushPair(L, p.X, p.Y)
}

// set_position(id, x, y)
func (h *hostFuncs) setPosition(L *lua.LState) int {
	h.bridge.RequestPosition(checkID(L, 1), checkFloat(L, 2), checkFloat(L, 3))
	return 0
}

// set_velocity(id, vx, vy)
func (h *hostFuncs) setVelocity(L *lua.LState) int {
	h.bridge.RequestVelocity(checkID(L, 1), checkFloat(L, 2), checkFloat(L, 3))
	return 0
}

// is_key_pressed(name) -> bool
func (h *hostFuncs) isKeyPressed(L *lua.LState) int {
	L.Push(lua.LBool(h.bridge.KeyPressed(L.CheckString(1))))
	return 1
}

// get_delta_time() -> seconds
func (h *hostFuncs) getDeltaTime(L *lua.LState) int {
	L.Push(lua.LNumber(h.bridge.Delta()))
	return 1
}

// get_camera_position() -> x, y
func (h *hostFuncs) getCameraPosition(L *lua.LState) int {
	p := h.bridge.Camera()
	return pushPair(L, p.X, p.Y)
}

// set_camera_position(x, y)
func (h *hostFuncs) setCameraPosition(L *lua.LState) int {
	h.bridge.RequestCamera(checkFloat(L, 1), checkFloat(L, 2))
	return 0
}

// mark_as_*(id)
func (h *hostFuncs) marker(m world.Marker) lua.LGFunction {
	return func(L *lua.LState) int {
		h.bridge.RequestMarker(checkID(L, 1), m)
		return 0
	}
}

// set_health(id, value)
func (h *hostFuncs) setHealth(L *lua.LState) int {
	h.bridge.RequestHealth(checkID(L, 1), checkFloat(L, 2))
	return 0
}

// get_health(id) -> current, max
func (h *hostFuncs) getHealth(L *lua.LState) int {
	v := h.bridge.Health(checkID(L, 1))
	return pushPair(L, v.Current, v.Max)
}

// get_stamina(id) -> current, max
func (h *hostFuncs) getStamina(L *lua.LState) int {
	v := h.bridge.Stamina(checkID(L, 1))
	return pushPair(L, v.Current, v.Max)
}

// set_sprite_size(id, w, h)
func (h *hostFuncs) setSpriteSize(L *lua.LState) int {
	h.bridge.RequestSpriteSize(checkID(L, 1), checkFloat(L, 2), checkFloat(L, 3))
	return 0
}

// log(message)
func (h *hostFuncs) logMessage(L *lua.LState) int {
	h.logger.Info(L.CheckString(1))
	return 0
}

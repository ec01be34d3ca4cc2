// Package scripting embeds a Lua interpreter and bridges it to the host world.
//
// Scripts never touch the world directly. Host functions registered into the
// interpreter record intents on a Bridge; once per tick the Processor drains
// every queue with an atomic take and applies the effects in a fixed order.
// Scripts address entities by ScriptID, a monotonic counter that the Bridge
// maps onto world handles once the host realizes each spawn.
//
// A Runtime owns one *lua.LState and must only be used from the host's
// simulation goroutine. A Watcher observes the script directory on its own
// goroutine and hands debounced events to a Reloader over a channel.
//
// Global bindings that a script creates are staged while the chunk runs and
// committed only if it finishes without error. A script name replaces its own
// earlier bindings on reload; globals created outside any loaded script name
// are not tracked and cannot be reloaded.
package scripting

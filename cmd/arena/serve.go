package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/scriptarena/internal/platform/tui"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/spectate"
	"github.com/vovakirdan/scriptarena/internal/transport/observer"
	"github.com/vovakirdan/scriptarena/internal/world"
)

var (
	flagSSHAddr     string
	flagObserveAddr string
	flagHostKey     string
	flagIdleTimeout int
	flagServeAgent  string
)

var serveCmd = &cobra.Command{
	Use:   "serve [game]",
	Short: "Host a game for SSH and WebSocket spectators",
	Long: `Run a game headlessly on the wall clock and let others watch it.

SSH viewers get a read-only terminal view of the world. WebSocket
observers receive one JSON frame per tick at /observe/ws; a JSON
summary is served at /observe/bootstrap. Scripts hot-reload exactly
as in play mode, and every viewer sees the change on the next tick.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arena/host_key

Examples:
  arena serve                            # SSH on :23234, no observer feed
  arena serve --ssh :2222 --observe :8081
  arena serve native --ssh "" --observe 127.0.0.1:8081

Viewers can connect with:
  ssh localhost -p 23234`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		gameID := defaultGame
		if len(args) == 1 {
			gameID = args[0]
		}
		if !registry.Exists(gameID) {
			fail("unknown game %q\nRun 'arena list' to see available games.", gameID)
		}
		if err := serve(gameID); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty disables)")
	serveCmd.Flags().StringVar(&flagObserveAddr, "observe", "", "WebSocket observer address (empty disables)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeAgent, "agent", "", "Orbiter preset for the native game: calm, normal, aggressive")
}

func serve(gameID string) error {
	if flagSSHAddr == "" && flagObserveAddr == "" {
		return errors.New("nothing to serve: set --ssh or --observe")
	}

	arena, err := loadArena()
	if err != nil {
		return err
	}
	if err := applyAgentPreset(&arena, flagServeAgent); err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, "arena")
	if err != nil {
		return err
	}

	store := openStore(arena.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}

	game, err := registry.CreateWith(gameID, newEnv(arena, logger, store))
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	defer closeGame(game, logger)

	hub := spectate.NewHub(4)
	view := world.View{
		UnitsPerCol: arena.View.UnitsPerColumn,
		UnitsPerRow: arena.View.UnitsPerRow,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.Title = game.Title()
		sshCfg.View = view

		sshSrv, err := tui.NewSSHServer(sshCfg, hub, logger.WithPrefix("arena-ssh"))
		if err != nil {
			return fmt.Errorf("creating SSH server: %w", err)
		}
		g.Go(func() error { return sshSrv.ListenAndServe(ctx) })
		fmt.Printf("SSH spectators: ssh localhost -p %s\n", portOf(flagSSHAddr))
	}

	if flagObserveAddr != "" {
		obs := observer.NewServer(hub, game.ID(), logger.WithPrefix("observer"))
		g.Go(func() error { return obs.ListenAndServe(flagObserveAddr) })
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return obs.Shutdown(shutdownCtx)
		})
		fmt.Printf("WebSocket observers: ws://%s/observe/ws\n", flagObserveAddr)
	}
	fmt.Println("Press Ctrl+C to stop")

	start := time.Now()
	g.Go(func() error {
		loop := hostLoop{game: game, realtime: true, publish: hub.Publish}
		loop.run(ctx, runtimeConfig(80, 24))
		hub.Close()
		return nil
	})

	err = g.Wait()
	recordSession(store, game, "serve", time.Since(start), logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// portOf returns the port part of a listen address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return addr
}

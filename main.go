package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bubblearena/client"
	"bubblearena/game"
)

var rootCmd = &cobra.Command{
	Use:   "bubblearena",
	Short: "Bubble arena game client",
	Long:  `Headless client for the bubble arena: joins a room over websocket, tracks players and moves the local player on a tile map.`,
}

var (
	envFile string
	offline bool
	flagCfg client.Config
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Connect to a room and play with keys read from stdin",
	Long:  `Reads "<mode> <dir>" lines from stdin, e.g. "press up" or "1 2", and drives the local player.`,
	RunE:  runPlay,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Tile map utilities",
}

var mapCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Parse a tile map and print its size and spawn points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tileSize, _ := cmd.Flags().GetFloat64("tile-size")
		m, err := game.LoadGridMap(args[0], tileSize)
		if err != nil {
			return err
		}
		cols, rows := m.Size()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %dx%d tiles, tile size %.0f\n", args[0], cols, rows, m.TileSize())
		for i, s := range m.Spawns() {
			fmt.Fprintf(out, "spawn %d: (%.0f, %.0f)\n", i, s.X, s.Y)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&envFile, "env", ".env", "optional .env file with BUBBLE_* settings")
	f.BoolVar(&offline, "offline", false, "skip the server and spawn the local player on the map")
	f.StringVar(&flagCfg.ServerURL, "server", "", "room server websocket url")
	f.StringVar(&flagCfg.Name, "name", "", "display name")
	f.StringVar(&flagCfg.Role, "role", "", "local player role")
	f.StringVar(&flagCfg.MapPath, "map", "", "tile map file")
	f.StringVar(&flagCfg.AssetDir, "assets", "", "directory with <role>.png files; empty accepts roles 1-4")
	f.IntVar(&flagCfg.TicksPerSecond, "tps", 0, "simulation ticks per second")
	f.DurationVar(&flagCfg.WelcomeTimeout, "welcome-timeout", 0, "reconnect if no Welcome arrives within this time")
	f.StringVar(&flagCfg.LogFile, "log-file", "", "log file (rolling)")
	f.StringVar(&flagCfg.LogLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&flagCfg.AdminAddr, "admin-addr", "", "debug HTTP listen address, e.g. :6060")

	mapCheckCmd.Flags().Float64("tile-size", game.DefaultTileSize, "logical size of one tile")
	mapCmd.AddCommand(mapCheckCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(mapCmd)
}

// mergeFlags 命令行显式给出的参数覆盖环境变量
func mergeFlags(cmd *cobra.Command, cfg *client.Config) {
	f := cmd.Flags()
	if f.Changed("server") {
		cfg.ServerURL = flagCfg.ServerURL
	}
	if f.Changed("name") {
		cfg.Name = flagCfg.Name
	}
	if f.Changed("role") {
		cfg.Role = flagCfg.Role
	}
	if f.Changed("map") {
		cfg.MapPath = flagCfg.MapPath
	}
	if f.Changed("assets") {
		cfg.AssetDir = flagCfg.AssetDir
	}
	if f.Changed("tps") {
		cfg.TicksPerSecond = flagCfg.TicksPerSecond
	}
	if f.Changed("welcome-timeout") {
		cfg.WelcomeTimeout = flagCfg.WelcomeTimeout
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagCfg.LogFile
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagCfg.LogLevel
	}
	if f.Changed("admin-addr") {
		cfg.AdminAddr = flagCfg.AdminAddr
	}
}

func roleCatalog(assetDir string) game.RoleCatalog {
	if assetDir != "" {
		return game.AssetRoles{Dir: assetDir}
	}
	return game.StaticRoles{
		"1": game.DefaultAttributes,
		"2": game.DefaultAttributes,
		"3": game.DefaultAttributes,
		"4": game.DefaultAttributes,
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := client.LoadConfig(envFile)
	mergeFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := client.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return err
	}
	defer client.SyncLogger()

	tiles, err := game.LoadGridMap(cfg.MapPath, cfg.TileSize)
	if err != nil {
		return err
	}

	metrics := &client.ClientMetrics{}
	inbox := client.NewInbox(256, metrics)
	transport := client.NewWSTransport(inbox)
	g, err := client.NewGame(&client.GameConfig{
		Inbox:          inbox,
		Transport:      transport,
		Registry:       game.NewRegistry(roleCatalog(cfg.AssetDir)),
		Tiles:          tiles,
		URL:            cfg.ServerURL,
		Name:           cfg.Name,
		WelcomeTimeout: cfg.WelcomeTimeout,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if offline {
		spawn := game.Vec2{}
		if spawns := tiles.Spawns(); len(spawns) > 0 {
			spawn = spawns[0]
		}
		if _, err := g.Players().SpawnLocal(cfg.Name, cfg.Role, spawn); err != nil {
			return err
		}
		client.Log.Infof("offline: %s spawned at (%.0f, %.0f)", cfg.Name, spawn.X, spawn.Y)
	} else {
		g.Attach()
	}

	var admin *http.Server
	if cfg.AdminAddr != "" {
		admin = &http.Server{Addr: cfg.AdminAddr, Handler: client.NewAdminMux(g, inbox)}
		go func() {
			client.Log.Infof("debug HTTP listening on %s", cfg.AdminAddr)
			if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				client.Log.Errorf("admin listen: %v", err)
			}
		}()
	}

	go func() {
		if err := client.ReadKeys(os.Stdin, inbox); err != nil {
			client.Log.Warnf("stdin: %v", err)
		}
	}()

	g.Run(ctx, cfg.TickInterval())

	client.Log.Info("Shutting down...")
	g.Detach()
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = admin.Shutdown(shutdownCtx)
	}
	return nil
}

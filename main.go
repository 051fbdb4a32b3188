package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/nstehr/pitch/pitch-core/agent"
	"github.com/nstehr/pitch/pitch-core/ipc"
	"github.com/nstehr/pitch/pitch-core/metrics"
	"github.com/nstehr/pitch/pitch-core/model"
	"github.com/nstehr/pitch/pitch-core/rules"
	"github.com/nstehr/pitch/pitch-core/store"
	"github.com/nstehr/pitch/pitch-core/suggest"
	"github.com/nstehr/pitch/pitch-core/viz"
)

const banner = `
██████╗ ██╗████████╗ ██████╗██╗  ██╗
██╔══██╗██║╚══██╔══╝██╔════╝██║  ██║
██████╔╝██║   ██║   ██║     ███████║
██╔═══╝ ██║   ██║   ██║     ██╔══██║
██║     ██║   ██║   ╚██████╗██║  ██║
╚═╝     ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝

Gap-Driven Robot Soccer Strategy`

func main() {
	app := makeapp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("pitch failed", "error", err)
		os.Exit(1)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "pitch"
	app.Usage = "real-time strategy engine for small-size robot soccer"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "socket", Value: "/tmp/pitch.sock", Usage: "Unix socket the bridge connects to", EnvVar: "PITCH_SOCKET"},
		cli.StringFlag{Name: "side", Value: "min", Usage: "Side to control: min or max", EnvVar: "PITCH_SIDE"},
		cli.StringFlag{Name: "params", Usage: "Tuning file (key = value)", EnvVar: "PITCH_PARAMS"},
		cli.StringFlag{Name: "groups", Usage: "Parameter group YAML file; built-in groups when empty", EnvVar: "PITCH_GROUPS"},
		cli.StringFlag{Name: "suggestions", Usage: "Formation suggestion YAML file, saved again on shutdown", EnvVar: "PITCH_SUGGESTIONS"},
		cli.StringFlag{Name: "db", Usage: "SQLite file for snapshot slots and the decision log", EnvVar: "PITCH_DB"},
		cli.StringFlag{Name: "influxdb-addr", Usage: "InfluxDB HTTP address; stats are only logged when empty", EnvVar: "INFLUXDB_ADDR"},
		cli.StringFlag{Name: "influxdb-db", Value: "pitch", Usage: "InfluxDB database", EnvVar: "INFLUXDB_DB"},
		cli.StringFlag{Name: "viz-addr", Usage: "Address for the inspection feed, e.g. :8090", EnvVar: "PITCH_VIZ_ADDR"},
		cli.BoolFlag{Name: "continuous", Usage: "Decide continuously instead of on demand"},
		cli.Int64Flag{Name: "seed", Usage: "Random seed; 0 seeds from the clock"},
		cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
	}
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:  "params",
			Usage: "Write the tuning file for the default (or --params) parameters",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out", Value: "pitch.params", Usage: "Destination file"},
			},
			Action: func(c *cli.Context) error {
				prm := rules.DefaultParams()
				if path := c.GlobalString("params"); path != "" {
					if err := rules.LoadParams(path, &prm); err != nil {
						return err
					}
				}
				if err := rules.SaveParams(c.String("out"), prm); err != nil {
					return err
				}
				fmt.Println("wrote", c.String("out"))
				return nil
			},
		},
	}
	return app
}

func serve(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting pitch")

	side, ok := model.ParsePlayer(c.String("side"))
	if !ok {
		return fmt.Errorf("unknown side %q", c.String("side"))
	}

	prm := rules.DefaultParams()
	if path := c.String("params"); path != "" {
		if err := rules.LoadParams(path, &prm); err != nil {
			return err
		}
		slog.Info("tuning parameters loaded", "path", path)
	}

	groups := rules.DefaultGroups(prm)
	if path := c.String("groups"); path != "" {
		var err error
		if groups, err = rules.LoadGroups(path, prm); err != nil {
			return err
		}
	}
	selector, err := rules.NewSelector(prm, groups)
	if err != nil {
		return err
	}
	slog.Info("parameter groups ready", "groups", selector.Names())

	suggestionsPath := c.String("suggestions")
	suggestions, err := loadSuggestions(suggestionsPath)
	if err != nil {
		return err
	}

	cfg := agent.DeciderConfig{
		Side:        side,
		Field:       model.DefaultField(),
		Selector:    selector,
		Suggestions: suggestions,
		Continuous:  c.Bool("continuous"),
		Seed:        c.Int64("seed"),
	}

	if path := c.String("db"); path != "" {
		st, err := store.NewStore(path)
		if err != nil {
			return err
		}
		defer st.Close()
		cfg.Store = st
		slog.Info("store opened", "path", path)
	}

	mc, err := metrics.NewClient(c.String("influxdb-addr"), c.String("influxdb-db"), "pitch")
	if err != nil {
		return err
	}
	defer mc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := c.String("viz-addr"); addr != "" {
		vz := viz.NewServer(addr)
		cfg.Feed = vz
		go func() {
			if err := vz.ListenAndServe(ctx); err != nil {
				slog.Error("viz server failed", "error", err)
			}
		}()
	}

	rt := agent.NewRuntime(cfg)
	rt.Start(ctx, mc)

	socketPath := c.String("socket")

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath, "side", side)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, conn, rt)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	if suggestionsPath != "" {
		if err := suggestions.Save(suggestionsPath); err != nil {
			slog.Error("failed to save suggestions", "error", err)
		}
	}
	return nil
}

// loadSuggestions reads the suggestion file, starting empty when there is
// none yet.
func loadSuggestions(path string) (*suggest.Store, error) {
	if path == "" {
		return suggest.NewStore(), nil
	}
	s, err := suggest.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no suggestion file yet, starting empty", "path", path)
		return suggest.NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	slog.Info("suggestions loaded", "path", path, "count", s.Len())
	return s, nil
}

func handleConn(ctx context.Context, conn net.Conn, rt *agent.Runtime) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(c, rt)
	a.Register()
	c.ReadLoop(ctx)
}

// survivor - seasonal leaderboards for a survival game server
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ernie/survivor-stats/internal/api"
	"github.com/ernie/survivor-stats/internal/auth"
	"github.com/ernie/survivor-stats/internal/config"
	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/faction"
	"github.com/ernie/survivor-stats/internal/gamestatus"
	"github.com/ernie/survivor-stats/internal/leaderboard"
	"github.com/ernie/survivor-stats/internal/metrics"
	"github.com/ernie/survivor-stats/internal/season"
	"github.com/ernie/survivor-stats/internal/statsource"
	"github.com/ernie/survivor-stats/internal/storage"
)

var version = "dev"

const defaultConfigPath = "/etc/survivor/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "season":
		cmdSeason(os.Args[2:])
	case "leaderboard":
		cmdLeaderboard(os.Args[2:])
	case "factions":
		cmdFactions(os.Args[2:])
	case "blacklist":
		cmdBlacklist(os.Args[2:])
	case "scoring":
		cmdScoring(os.Args[2:])
	case "user":
		cmdUser(os.Args[2:])
	case "version":
		fmt.Printf("survivor %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: survivor <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve [--debug]                     Start the stats server")
	fmt.Println("  season start <name> [--end-date D]  Archive the active season and start a new one")
	fmt.Println("  season end                          Archive the active season")
	fmt.Println("  season list                         List all seasons")
	fmt.Println("  season current                      Show the active season and time remaining")
	fmt.Println("  season delete <id>                  Delete an ended season and its snapshots")
	fmt.Println("  season export <id> [--output F]     Print an archived season's final standings")
	fmt.Println("  leaderboard [--top N] [--category C]")
	fmt.Println("                                      Show top players this season (default: 20 zombie_kills)")
	fmt.Println("  factions                            Show faction standings this season")
	fmt.Println("  blacklist add <user> [--reason R]   Hide a player from the leaderboards")
	fmt.Println("  blacklist remove <id>               Restore a blacklisted player")
	fmt.Println("  blacklist list                      List blacklisted players")
	fmt.Println("  scoring show                        Show faction score multipliers")
	fmt.Println("  scoring set [--zk N] [--pk N] [--eco N] [--time N]")
	fmt.Println("                                      Change faction score multipliers")
	fmt.Println("  user add [--admin] <username>       Add a user (prompts for password)")
	fmt.Println("  user remove <username>              Remove a user")
	fmt.Println("  user list                           List all users")
	fmt.Println("  version                             Show version")
	fmt.Println("  help                                Show this help")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --config <path>    Path to configuration file (default /etc/survivor/config.yml)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  survivor serve --config /etc/survivor/config.yml")
	fmt.Println("  survivor season start \"Season 4\" --end-date 2026-12-31")
	fmt.Println("  survivor leaderboard --top 50 --category economy")
	fmt.Println("  survivor user add --admin myuser")
}

// app holds the services shared by serve and the local commands
type app struct {
	cfg         *config.Config
	store       *storage.Store
	pool        *pgxpool.Pool
	stats       *statsource.Adapter
	engine      *season.Engine
	seasons     *season.Controller
	leaderboard *leaderboard.Service
}

func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*app, error) {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a := &app{cfg: cfg, store: store}

	var sources []statsource.Source
	if cfg.Stats.RemoteDSN != "" {
		pool, err := statsource.OpenPool(ctx, cfg.Stats.RemoteDSN)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("connecting to stats database: %w", err)
		}
		a.pool = pool
		sources = append(sources, statsource.NewRemoteSource(pool, cfg.Stats.RemoteTable, cfg.Stats.QueryTimeout, logger, m))
	}
	if cfg.Stats.PlayersDir != "" {
		sources = append(sources, statsource.NewFileSource(cfg.Stats.PlayersDir, logger, m))
	}
	chain := statsource.NewChainSource(logger, m, sources...)

	a.stats = statsource.NewAdapter(chain, store, logger)
	a.engine = season.NewEngine(store, logger, m)
	a.seasons = season.NewController(store, a.engine, a.stats, logger, m)
	a.leaderboard = leaderboard.NewService(a.stats, store, store, a.engine, leaderboard.Config{
		MaintenanceMinPlayers: cfg.Leaderboard.MaintenanceMinPlayers,
		TopLimit:              cfg.Leaderboard.TopLimit,
	}, logger)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	a.store.Close()
}

// cmdServe starts the stats server
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to config file")
	debug := fs.Bool("debug", false, "log every request")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	log.Printf("Survivor %s starting...", version)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx, cfg, logger, m)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()
	log.Printf("Database initialized at %s", cfg.Database.Path)

	var querier gamestatus.Querier
	if cfg.GameServer.Address != "" {
		querier = gamestatus.NewA2SClient(cfg.GameServer.Address)
		log.Printf("Querying game server at %s", cfg.GameServer.Address)
	}
	status := gamestatus.NewCache(querier, cfg.GameServer.StatusCacheTTL, cfg.GameServer.MaxPlayers, logger, m)

	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	if cfg.Auth.JWTSecret == "" {
		log.Printf("Warning: No JWT secret configured. Auth tokens will use an empty secret.")
	}

	router := api.NewRouter(api.Deps{
		Store:       a.store,
		Seasons:     a.seasons,
		Leaderboard: a.leaderboard,
		Status:      status,
		Auth:        authService,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:      logger,
		StaticDir:   cfg.Server.StaticDir,
	})
	if cfg.Server.StaticDir != "" {
		log.Printf("Serving static files from %s", cfg.Server.StaticDir)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Shutting down HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	cancel()
	log.Println("Shutdown complete")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

// newFlagSet returns a flag set carrying the global --config flag
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	return fs, configPath
}

// runLocal opens the store and stat sources for a one-shot command. CLI
// commands log only warnings so table output stays readable.
func runLocal(configPath string, fn func(ctx context.Context, a *app) error) {
	cfg := loadConfig(configPath)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := openApp(ctx, cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	err = fn(ctx, a)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseIDArg(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// cmdSeason handles season subcommands
func cmdSeason(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: season subcommand required: start, end, list, current, delete, export\n")
		os.Exit(1)
	}
	subCmd := args[0]

	fs, configPath := newFlagSet("season " + subCmd)
	endDate := fs.String("end-date", "", "planned end date (RFC 3339 or YYYY-MM-DD)")
	output := fs.StringP("output", "o", "", "write the export to a file instead of stdout")
	fs.Parse(args[1:])
	remaining := fs.Args()

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		switch subCmd {
		case "start":
			return seasonError("start season", cmdSeasonStart(ctx, a, remaining, *endDate))
		case "end":
			s, err := a.seasons.EndSeason(ctx)
			if err != nil {
				return seasonError("end season", err)
			}
			fmt.Printf("Season '%s' ended and archived\n", s.Name)
			return nil
		case "list":
			return cmdSeasonList(ctx, a)
		case "current":
			return cmdSeasonCurrent(ctx, a)
		case "delete":
			id, err := parseIDArg(remaining, "usage: survivor season delete <id>")
			if err != nil {
				return err
			}
			if err := a.seasons.DeleteSeason(ctx, id); err != nil {
				return seasonError("delete season", err)
			}
			fmt.Printf("Season %d deleted\n", id)
			return nil
		case "export":
			return cmdSeasonExport(ctx, a, remaining, *output)
		default:
			return fmt.Errorf("unknown season command: %s (use: start, end, list, current, delete, export)", subCmd)
		}
	})
}

func cmdSeasonStart(ctx context.Context, a *app, args []string, endDateFlag string) error {
	if len(args) < 1 {
		return errors.New("usage: survivor season start <name> [--end-date YYYY-MM-DD]")
	}
	endDate, err := season.ParseEndDate(endDateFlag)
	if err != nil {
		return err
	}
	s, err := a.seasons.StartSeason(ctx, args[0], endDate)
	if err != nil {
		return err
	}
	fmt.Printf("Season '%s' started (id %d)\n", s.Name, s.ID)
	return nil
}

// seasonError keeps validation messages as they are and prefixes anything else
func seasonError(op string, err error) error {
	if err == nil || season.IsValidationError(err) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func cmdSeasonCurrent(ctx context.Context, a *app) error {
	s, err := a.seasons.ActiveSeason(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Println("No active season")
		return nil
	}
	fmt.Printf("Season '%s' (id %d), started %s\n", s.Name, s.ID, s.StartDate.Format("2006-01-02 15:04"))
	if left := s.TimeRemaining(time.Now()); left != nil {
		fmt.Printf("Ends %s (%s left)\n", s.EndDate.Format("2006-01-02 15:04"), left.Round(time.Minute))
	}
	return nil
}

func cmdSeasonList(ctx context.Context, a *app) error {
	seasons, err := a.seasons.ListSeasons(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seasons: %w", err)
	}
	if len(seasons) == 0 {
		fmt.Println("No seasons yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTARTED\tENDS")
	fmt.Fprintln(w, "--\t----\t------\t-------\t----")
	for _, s := range seasons {
		status := "ended"
		switch {
		case s.IsActive:
			status = "active"
		case s.Archived():
			status = "archived"
		}
		ends := "-"
		if s.EndDate != nil {
			ends = s.EndDate.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, status, s.StartDate.Format("2006-01-02 15:04"), ends)
	}
	return w.Flush()
}

func cmdSeasonExport(ctx context.Context, a *app, args []string, output string) error {
	id, err := parseIDArg(args, "usage: survivor season export <id> [--output file]")
	if err != nil {
		return err
	}
	_, export, err := a.seasons.Export(ctx, id)
	if err != nil {
		return err
	}
	if output == "" {
		_, err := io.WriteString(os.Stdout, export)
		return err
	}
	if err := os.WriteFile(output, []byte(export), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", output)
	return nil
}

func cmdLeaderboard(args []string) {
	fs, configPath := newFlagSet("leaderboard")
	limit := fs.Int("top", 20, "number of top players to show")
	category := fs.String("category", domain.CategoryZombieKills, "zombie_kills, player_kills or economy")
	fs.Parse(args)

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		entries, err := a.leaderboard.Top(ctx, *category, *limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tPLAYER\tZOMBIES\tPLAYERS\tHOURS\tECONOMY\tFACTION")
		fmt.Fprintln(w, "----\t------\t-------\t-------\t-----\t-------\t-------")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f\t%.0f\t%s\n",
				e.Rank, e.Player.PlayerKey,
				e.Season.ZombieKills, e.Season.PlayerKills,
				e.Season.HoursSurvived, e.Season.CurrencyEarned,
				e.Player.FactionName)
		}
		return w.Flush()
	})
}

func cmdFactions(args []string) {
	fs, configPath := newFlagSet("factions")
	fs.Parse(args)

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		factions, err := a.leaderboard.Factions(ctx)
		if err != nil {
			return err
		}
		if len(factions) == 0 {
			fmt.Println("No factions")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tFACTION\tTAG\tMEMBERS\tZOMBIES\tPLAYERS\tHOURS\tECONOMY\tSCORE")
		fmt.Fprintln(w, "----\t-------\t---\t-------\t-------\t-------\t-----\t-------\t-----")
		for i, f := range factions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%.1f\t%.0f\t%.2f\n",
				i+1, f.Name, f.Tag, f.MemberCount,
				f.Totals.ZombieKills, f.Totals.PlayerKills,
				f.Totals.HoursSurvived, f.Totals.CurrencyEarned, f.Score)
		}
		return w.Flush()
	})
}

// cmdBlacklist handles blacklist subcommands
func cmdBlacklist(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: blacklist subcommand required: add, remove, list\n")
		os.Exit(1)
	}
	subCmd := args[0]

	fs, configPath := newFlagSet("blacklist " + subCmd)
	reason := fs.String("reason", "", "why the player is hidden")
	fs.Parse(args[1:])
	remaining := fs.Args()

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		switch subCmd {
		case "add":
			if len(remaining) < 1 {
				return errors.New("usage: survivor blacklist add <username> [--reason text]")
			}
			entry, err := a.store.AddToBlacklist(ctx, remaining[0], *reason)
			if err != nil {
				return err
			}
			fmt.Printf("Player '%s' blacklisted (id %d)\n", entry.Username, entry.ID)
			return nil
		case "remove":
			id, err := parseIDArg(remaining, "usage: survivor blacklist remove <id>")
			if err != nil {
				return err
			}
			if err := a.store.RemoveFromBlacklist(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Blacklist entry %d removed\n", id)
			return nil
		case "list":
			entries, err := a.store.ListBlacklist(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Blacklist is empty")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tREASON\tADDED")
			fmt.Fprintln(w, "--\t--------\t------\t-----")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Username, e.Reason, e.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown blacklist command: %s (use: add, remove, list)", subCmd)
		}
	})
}

// cmdScoring handles scoring subcommands
func cmdScoring(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: scoring subcommand required: show, set\n")
		os.Exit(1)
	}
	subCmd := args[0]

	fs, configPath := newFlagSet("scoring " + subCmd)
	zk := fs.Float64("zk", 0, "points per zombie kill")
	pk := fs.Float64("pk", 0, "points per player kill")
	eco := fs.Float64("eco", 0, "points per unit of currency earned")
	hours := fs.Float64("time", 0, "points per hour survived")
	fs.Parse(args[1:])

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		cfg, err := a.store.GetScoringConfig(ctx)
		if err != nil {
			return err
		}
		switch subCmd {
		case "show":
		case "set":
			if fs.Changed("zk") {
				cfg.ZombieKill = *zk
			}
			if fs.Changed("pk") {
				cfg.PlayerKill = *pk
			}
			if fs.Changed("eco") {
				cfg.Currency = *eco
			}
			if fs.Changed("time") {
				cfg.Survival = *hours
			}
			if err := faction.ValidateScoringConfig(cfg); err != nil {
				return err
			}
			if err := a.store.UpdateScoringConfig(ctx, cfg); err != nil {
				return err
			}
			fmt.Println("Scoring updated")
		default:
			return fmt.Errorf("unknown scoring command: %s (use: show, set)", subCmd)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "zombie kill\t%g\n", cfg.ZombieKill)
		fmt.Fprintf(w, "player kill\t%g\n", cfg.PlayerKill)
		fmt.Fprintf(w, "economy\t%g\n", cfg.Currency)
		fmt.Fprintf(w, "hour survived\t%g\n", cfg.Survival)
		return w.Flush()
	})
}

// cmdUser handles user subcommands
func cmdUser(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: user subcommand required: add, remove, list\n")
		os.Exit(1)
	}
	subCmd := args[0]

	fs, configPath := newFlagSet("user " + subCmd)
	isAdmin := fs.Bool("admin", false, "create as admin user")
	fs.Parse(args[1:])
	remaining := fs.Args()

	runLocal(*configPath, func(ctx context.Context, a *app) error {
		switch subCmd {
		case "add":
			return cmdUserAdd(ctx, a.store, remaining, *isAdmin)
		case "remove":
			if len(remaining) < 1 {
				return errors.New("usage: survivor user remove <username>")
			}
			if err := a.store.DeleteUser(ctx, remaining[0]); err != nil {
				return fmt.Errorf("failed to remove user: %w", err)
			}
			fmt.Printf("User '%s' removed\n", remaining[0])
			return nil
		case "list":
			return cmdUserList(ctx, a.store)
		default:
			return fmt.Errorf("unknown user command: %s (use: add, remove, list)", subCmd)
		}
	})
}

func cmdUserAdd(ctx context.Context, store *storage.Store, args []string, isAdmin bool) error {
	if len(args) < 1 {
		return errors.New("usage: survivor user add [--admin] <username>")
	}
	username := args[0]

	if _, err := store.GetUserByUsername(ctx, username); err == nil {
		return fmt.Errorf("user '%s' already exists", username)
	}

	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := store.CreateUser(ctx, username, hash, isAdmin); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	roleStr := "user"
	if isAdmin {
		roleStr = "admin"
	}
	fmt.Printf("User '%s' created successfully (role: %s)\n", username, roleStr)
	return nil
}

func cmdUserList(ctx context.Context, store *storage.Store) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tLAST_LOGIN")
	fmt.Fprintln(w, "--------\t----\t----------")
	for _, user := range users {
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		lastLogin := "never"
		if user.LastLogin != nil {
			lastLogin = user.LastLogin.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", user.Username, role, lastLogin)
	}
	return w.Flush()
}

// FilePath: cmd/sprout/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/apiclient"
	"github.com/plantsense/sprout/internal/config"
	"github.com/plantsense/sprout/internal/querycache"
	"github.com/plantsense/sprout/internal/service"
	"github.com/plantsense/sprout/internal/session"
	"github.com/plantsense/sprout/internal/sproutservice"
)

func main() {
	// Initialize version info
	nuts.InitVersion()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Wire session, clients, services and cache
	sess := session.NewStore(cfg.Gateway.URL, cfg.Session.FilePath, cfg.Gateway.Timeout)
	gateway := apiclient.New(cfg.Gateway.URL, cfg.Gateway.Timeout, sess)
	analytics := apiclient.New(cfg.AnalyticsURL(), cfg.Gateway.Timeout, sess)
	services := service.New(gateway, analytics)
	cache := querycache.New()
	svc := sproutservice.New(sess, services, cache)
	svc.DefaultStaleTime = cfg.Cache.DefaultStaleTime
	if err := svc.Validate(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	ctx := context.Background()

	// Expire dead cache entries during long-running commands like monitor
	cache.StartSweeper(ctx, cfg.Cache.SweepInterval, cfg.Cache.DefaultStaleTime)

	// Rehydrate the persisted session before any authenticated command
	if err := sess.CheckStatus(ctx); err != nil {
		nuts.L.Warnf("[Main] Session check failed: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	app := &app{cfg: cfg, svc: svc}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "sprout: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	svc *sproutservice.SproutService
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "plants":
		return a.cmdPlants(ctx, args)
	case "devices":
		return a.cmdDevices(ctx, args)
	case "chart":
		return a.cmdChart(ctx, args)
	case "monitor":
		return a.cmdMonitor(ctx, args)
	case "health":
		return a.cmdHealth(ctx)
	case "version":
		fmt.Println(nuts.GetVersion())
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// ClearConsole clears the console screen and moves the cursor home.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____                        __ ",
		"  / ___/____  _________  __  __/ /_",
		"  \\__ \\/ __ \\/ ___/ __ \\/ / / / __/",
		" ___/ / /_/ / /  / /_/ / /_/ / /_  ",
		"/____/ .___/_/   \\____/\\__,_/\\__/  ",
		"    /_/ ..........................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}

func printUsage() {
	DrawLogo()
	fmt.Println(`
Usage: sprout <command> [arguments]

Commands:
  login <email>                      sign in (password read from stdin)
  register <email> <first> <last>    create an account and sign in
  logout                             sign out locally and revoke the session
  whoami                             show the signed-in user
  profile [update|photo] ...         show or change the profile
  plants <list|get|create|update|delete|photo> ...
  devices <list|get|create|update|delete> ...
  chart <controller>                 render the 24h chart for a controller
  monitor <controller>               live dashboard polling the controller
  health                             analytics service health
  version                            print version`)
}

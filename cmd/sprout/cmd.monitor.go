// FilePath: cmd/sprout/cmd.monitor.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tm "github.com/buger/goterm"

	"github.com/plantsense/sprout/internal/charts"
	"github.com/plantsense/sprout/internal/realtime"
)

func (a *app) cmdChart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: sprout chart <controller>")
	}

	result, err := a.svc.ChartData(ctx, args[0], charts.Options{})
	if err != nil {
		return err
	}
	if !result.HasData() {
		fmt.Println("No chart data for this controller in the last 24h")
		return nil
	}

	fmt.Printf("%-7s %12s %12s %12s %12s\n", "Time", "Temp", "Air Hum", "Soil Hum", "Light")
	for _, point := range result.Chart.Points {
		fmt.Printf("%-7s %12s %12s %12s %12s\n",
			point.Time,
			formatReading(point.Temperature, "°C"),
			formatReading(point.Humidity, "%"),
			formatReading(point.SoilHumidity, "%"),
			formatReading(point.LightLevel, "lx"),
		)
	}

	current := result.Chart.Current
	fmt.Printf("\nCurrent: %.1f°C, %.0f%% air, %.0f%% soil, %.0f lx\n",
		current.Temperature, current.AirHumidity, current.SoilHumidity, current.LightLevel)
	if result.Chart.Unclassified > 0 {
		fmt.Printf("(%d metrics with unrecognized names ignored)\n", result.Chart.Unclassified)
	}
	return nil
}

func (a *app) cmdMonitor(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: sprout monitor <controller>")
	}
	controllerID := args[0]

	monitor := a.svc.NewMonitor(controllerID, func(update realtime.Update) {
		drawDashboard(controllerID, update)
	}, realtime.Options{
		Interval:     a.cfg.Analytics.PollInterval,
		OnlineWindow: a.cfg.Analytics.OnlineWindow,
	})

	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	// Run until interrupted
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}

func (a *app) cmdHealth(ctx context.Context) error {
	health, err := a.svc.AnalyticsHealth(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Status:   %s\nService:  %s\nInfluxDB: %s\nChecked:  %s\n",
		health.Status, health.Service, health.InfluxDB, health.Timestamp)
	return nil
}

func drawDashboard(controllerID string, update realtime.Update) {
	ClearConsole()
	tm.Printf("Controller: %s\n", tm.Bold(controllerID))
	tm.Printf("Checked:    %s\n\n", update.At.Format(time.TimeOnly))

	if update.Err != nil {
		tm.Println(tm.Color("Poll failed: "+update.Err.Error(), tm.RED))
		tm.Flush()
		return
	}

	switch update.Status {
	case realtime.StatusOnline:
		tm.Printf("Status:     %s\n", tm.Color("ONLINE", tm.GREEN))
	case realtime.StatusDelayed:
		tm.Printf("Status:     %s\n", tm.Color("DELAYED", tm.YELLOW))
	default:
		tm.Printf("Status:     %s\n", tm.Color("UNKNOWN", tm.RED))
	}

	if update.Measurement != nil {
		m := update.Measurement.Measurement
		tm.Printf("Latest:     %s = %.2f %s\n", m.MetricName, m.Value, m.Unit)
		tm.Printf("Data age:   %s\n", update.Age.Round(time.Second))
	}
	tm.Flush()
}

func formatReading(value *float64, unit string) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *value, unit)
}

// README: Entry point; loads config, wires the dispatch core, runs the tick
// loop to completion, and prints the end-of-day report.
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dispatchsim/internal/config"
	"dispatchsim/internal/dispatch/assign"
	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/loader"
	"dispatchsim/internal/dispatch/locking"
	"dispatchsim/internal/dispatch/metrics"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/reassign"
	"dispatchsim/internal/dispatch/tickdriver"
	httptransport "dispatchsim/internal/http"
	"dispatchsim/internal/infra"
	"dispatchsim/internal/inputs"
	"dispatchsim/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both the locking gate and the assign pipeline default to package-level
	// constants; override them here from configuration before the first tick.
	locking.LockWindowMinutes = cfg.Reassign.LockWindowMinutes
	locking.ServiceTimeMinutes = cfg.Reassign.ServiceTimeMinutes
	assign.ServiceTimeMinutes = cfg.Reassign.ServiceTimeMinutes

	reg, err := inputs.LoadVehicles(cfg.Inputs.VehiclesPath)
	if err != nil {
		log.Fatal(err)
	}
	scheduled, err := inputs.LoadBookings(cfg.Inputs.BookingsPath, booking.Scheduled)
	if err != nil {
		log.Fatal(err)
	}
	instants, err := inputs.LoadBookings(cfg.Inputs.InstantBookingsPath, booking.Instant)
	if err != nil {
		log.Fatal(err)
	}

	index := make(map[int]*booking.Booking, len(scheduled)+len(instants))
	for _, b := range scheduled {
		index[b.ID] = b
	}
	for _, b := range instants {
		index[b.ID] = b
	}

	o := buildOracle(cfg.MapsAPIKey)
	prices := pricing.DefaultTable()

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	ld := loader.New(instants, cfg.Clock.DayStartMinutes, rng)

	reassignCfg := reassign.Config{
		UrgentWindowMinutes: cfg.Reassign.UrgentWindowMinutes,
		OverloadCap:         cfg.Reassign.OverloadCap,
		OverloadCapFinal:    cfg.Reassign.OverloadCapFinal,
		ClassUpgradeMax:     cfg.Reassign.ClassUpgradeMax,
	}

	// Scheduled bookings get one greedy pre-pass before the clock starts
	// moving; the tick loop only ever reassigns the pool it is handed.
	stillUnassigned := reassign.Run(reg, scheduled, index, o, prices, cfg.Clock.DayStartMinutes, reassignCfg)

	driver := tickdriver.New(reg, index, o, prices, ld, tickdriver.Config{
		DayStartMinutes:  cfg.Clock.DayStartMinutes,
		DayEndMinutes:    cfg.Clock.DayEndMinutes,
		TickStepMinutes:  cfg.Clock.TickStepMinutes,
		RealSleepPerTick: cfg.Clock.RealSleepPerTick,
	}, reassignCfg)
	driver.SeedUnassigned(stillUnassigned)

	auditWriter := buildAuditWriter(ctx, cfg.Observers.DBDSN)
	vehicleFeed := buildVehicleFeed(cfg.Observers.RedisAddr)
	monitor := httptransport.NewMonitor()
	driver.OnTick = func(ev tickdriver.TickEvent) {
		monitor.Update(ev.SimTime, ev.Snapshot, metrics.PerVehicleBreakdown(reg))
		report.PrintTick(os.Stdout, ev.SimTime, ev.Vehicles, ev.Bookings, ev.Snapshot)
		if auditWriter != nil {
			if err := auditWriter.RecordTick(ctx, ev.SimTime, ev.Reassigned, ev.NewInstants, ev.Dropped, ev.Snapshot); err != nil {
				log.Printf("audit write failed: %v", err)
			}
		}
		if vehicleFeed != nil {
			for _, v := range reg.Vehicles {
				if err := vehicleFeed.PublishPosition(ctx, v.ID, v.LastStop()); err != nil {
					log.Printf("vehicle feed publish failed for vehicle %d: %v", v.ID, err)
				}
			}
		}
	}

	if cfg.HTTPAddr != "" {
		handler := httptransport.NewServer(monitor)
		if vehicleFeed != nil {
			handler = handler.WithVehicleFeed(vehicleFeed)
		}
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.Routes()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("monitoring server stopped: %v", err)
			}
		}()
	}

	final, unplaced, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("tick driver: %v", err)
	}

	report.PrintVehicleTable(os.Stdout, metrics.PerVehicleBreakdown(reg))
	report.PrintUnassigned(os.Stdout, unplaced)
	report.PrintSummary(os.Stdout, final)
}

func buildOracle(mapsAPIKey string) oracle.Oracle {
	fallback := oracle.Haversine{}
	if mapsAPIKey == "" {
		return fallback
	}
	m, err := oracle.NewMapsOracle(mapsAPIKey, fallback)
	if err != nil {
		log.Printf("maps oracle init failed, falling back to haversine: %v", err)
		return fallback
	}
	return m
}

func buildVehicleFeed(redisAddr string) *infra.VehicleFeed {
	if redisAddr == "" {
		return nil
	}
	client := infra.NewRedis(redisAddr)
	return infra.NewVehicleFeed(client)
}

func buildAuditWriter(ctx context.Context, dsn string) *infra.AuditWriter {
	if dsn == "" {
		return nil
	}
	pool, err := infra.NewDB(ctx, dsn)
	if err != nil {
		log.Printf("audit db unavailable, continuing without it: %v", err)
		return nil
	}
	w := infra.NewAuditWriter(pool)
	if err := w.EnsureSchema(ctx); err != nil {
		log.Printf("audit schema setup failed, continuing without it: %v", err)
		return nil
	}
	return w
}

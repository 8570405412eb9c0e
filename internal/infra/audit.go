// README: Postgres-backed tick audit trail. An optional observer: a run with
// no DSN configured never touches this file at all.
package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dispatchsim/internal/dispatch/metrics"
)

// AuditWriter appends one row per tick to dispatch_tick_audit. It never reads
// its own writes back within a run; the table exists for post-hoc analysis
// across runs, not for resuming a run.
type AuditWriter struct {
	pool *pgxpool.Pool
}

func NewAuditWriter(pool *pgxpool.Pool) *AuditWriter {
	return &AuditWriter{pool: pool}
}

// EnsureSchema creates the audit table if it does not already exist.
func (a *AuditWriter) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dispatch_tick_audit (
			id              BIGSERIAL PRIMARY KEY,
			sim_time        INTEGER NOT NULL,
			reassigned      BOOLEAN NOT NULL,
			new_instants    INTEGER NOT NULL,
			dropped         INTEGER NOT NULL,
			assigned        INTEGER NOT NULL,
			unassigned      INTEGER NOT NULL,
			driver_pay      DOUBLE PRECISION NOT NULL,
			customer_fare   DOUBLE PRECISION NOT NULL,
			recorded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// RecordTick appends one row describing a tick's outcome.
func (a *AuditWriter) RecordTick(ctx context.Context, simTime int, reassigned bool, newInstants, dropped int, snap metrics.Snapshot) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO dispatch_tick_audit
			(sim_time, reassigned, new_instants, dropped, assigned, unassigned, driver_pay, customer_fare)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		simTime, reassigned, newInstants, dropped, snap.Assigned, snap.Unassigned, snap.DriverPayTotal, snap.CustomerFareTotal)
	return err
}

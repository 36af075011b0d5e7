// Package app wires the metabulo HTTP API together: configuration,
// logging, OpenTelemetry, the relational store, the services and the chi
// router.
//
// # Initialization
//
//	1. Initialize tracing and metrics
//	2. Open the database (the schema is created by create-tables, not here)
//	3. Build the CSV and health services
//	4. Install middleware and mount /api routes
//
// # Usage
//
//	application, err := app.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get the configured
// shutdown timeout, after which telemetry is flushed and the database is
// closed. Errors are returned to the caller; the package never exits the
// process.
package app

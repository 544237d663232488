// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package supervisor provides process supervision for DegreeMatch using suture v4.

Long-running services are grouped into three layers so that a failure in one
restarts only its own layer:

	RootSupervisor ("degreematch")
	├── DataSupervisor ("data-layer")
	│   └── ScheduleGCService
	├── EngineSupervisor ("engine-layer")
	│   └── TrainingService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, which main wires to the zerolog-backed slog handler from the
logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerWithComponent("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewScheduleGCService(store, cfg.Schedules.GCInterval, logger))
	tree.AddEngineService(services.NewTrainingService(engine, trainCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor

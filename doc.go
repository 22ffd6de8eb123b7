// Package fanout provides a bulk fan-out orchestrator.
//
// A bulk request applies one action to many targets of the same kind. The
// request is planned once (validated, with its concurrency limit extracted
// and frozen), then dispatched window by window: every requested target
// becomes exactly one sub-job, including targets that vanished since
// planning. Sub-job failures are isolated; they never stop the remaining
// sub-jobs.
//
// End-users typically interact with the orchestrator via the Service facade
// exposed by the root package:
//
//	srv, _ := fanout.New(fanout.WithRepositories(hosts))
//	rt := srv.Runtime()
//	req, _ := rt.Plan(ctx, &bulk.PlanInput{Action: action, Targets: targets})
//	job, _ := rt.Submit(ctx, req)
//	job, _ = rt.Wait(ctx, job.ID, time.Minute)
package fanout

// Package cnwauth provides device-bound license validation for desktop and
// edge clients of the CNW License Server.
//
// Install with:
//
//	go get github.com/CloudNativeWorks/cnw-device-auth/cnwauth
//
// It covers four concerns:
//
//   - Deriving a stable hardware fingerprint for the local machine
//   - Exchanging a license key with the license endpoint (login / revalidation)
//   - Persisting the resulting session in the application config directory
//   - Re-validating the session on a schedule and tearing it down when the
//     server rejects the key
//
// # Quick Start
//
//	sessions := cnwauth.NewSessionStore(configDir)
//	sessions.Load()
//
//	client := cnwauth.NewOnlineClient("https://license.example.com/v1/vpn")
//	mgr := cnwauth.NewManager(
//	    cnwauth.WithOnlineClient(client),
//	    cnwauth.WithSessionStore(sessions),
//	)
//	res, err := mgr.Login(ctx, "CNW-XXXX-YYYY-ZZZZ")
//
// # Background revalidation
//
// A Scheduler runs named periodic tasks until its context is cancelled:
//
//	sched := cnwauth.NewScheduler()
//	mgr.RegisterTasks(sched, cfg)
//	sched.Start(ctx)
//
// Revalidation is deliberately fail-open: transport errors and malformed
// responses keep the session alive, and only an explicit rejection from the
// server triggers teardown. Interactive login is the opposite and fails
// closed on any ambiguity.
package cnwauth

package cnwauth_test

import (
	"context"
	"fmt"

	"github.com/CloudNativeWorks/cnw-device-auth/cnwauth"
)

func ExampleManager_Login() {
	sessions := cnwauth.NewSessionStore("/home/user/.config/cnw-device-auth")
	sessions.Load()

	mgr := cnwauth.NewManager(
		cnwauth.WithOnlineClient(cnwauth.NewOnlineClient("https://license.example.com/v1/vpn")),
		cnwauth.WithSessionStore(sessions),
	)

	res, err := mgr.Login(context.Background(), "CNW-XXXX-YYYY-ZZZZ")
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	fmt.Printf("Logged in as %s\n", res.DisplayName)
}

func ExampleManager_RegisterTasks() {
	cfg := cnwauth.DefaultConfig()

	sessions := cnwauth.NewSessionStore(cfg.ConfigDir)
	sessions.Load()

	mgr := cnwauth.NewManager(
		cnwauth.WithOnlineClient(cnwauth.NewOnlineClient("https://license.example.com/v1/vpn")),
		cnwauth.WithSessionStore(sessions),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := cnwauth.NewScheduler()
	mgr.RegisterTasks(sched, cfg)
	sched.Start(ctx)
}

func ExampleNewFingerprinter() {
	f := cnwauth.NewFingerprinter()
	fp := f.DeviceFingerprint(context.Background())
	fmt.Printf("Fingerprint length: %d\n", len(fp))
	// Output: Fingerprint length: 36
}

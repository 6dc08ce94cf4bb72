// Package sessionkit wires a token store, an auth API client and a session
// manager from one environment-driven Config.
//
//	var cfg sessionkit.Config
//	config.MustLoad(&cfg)
//
//	kit, err := sessionkit.New(ctx, cfg, sessionkit.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer kit.Close()
//
//	_ = kit.Session.Restore(ctx)
//
// The store backend is chosen by SESSIONKIT_TOKEN_STORE: memory, file (the
// default), redis or postgres. The postgres backend applies its migration on
// startup.
package sessionkit

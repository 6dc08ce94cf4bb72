// Package redis opens go-redis clients with connection retry and exposes a
// health check function.
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Connect parses the URL, then pings the server with exponential backoff until
// it answers, RetryAttempts is exhausted, or ConnectTimeout elapses. Both
// redis:// and rediss:// schemes are accepted.
//
// Healthcheck returns a func(context.Context) error suitable for readiness
// probes.
package redis

package host

import (
	"log/slog"
	"time"

	"github.com/aretw0/actionhost/pkg/actiontable"
	"github.com/aretw0/actionhost/pkg/backoff"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/metrics"
	"github.com/aretw0/actionhost/pkg/ports"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/aretw0/actionhost/pkg/session"
	"github.com/aretw0/actionhost/pkg/wire"
)

// DefaultEndpoint is the production coordinator a Config connects to
// when Endpoint is left empty (spec.md §6).
const DefaultEndpoint = "wss://coordinator.actionhost.example/host"

// Config is a host instance's configuration (spec.md §6).
type Config struct {
	// APIKey authenticates the INITIALIZE_HOST handshake. Required.
	APIKey string

	// Actions is the registered action table. Required.
	Actions *actiontable.Table

	// Endpoint overrides the production coordinator address.
	Endpoint string

	// LogLevel is "prod" or "debug"; defaults to "prod".
	LogLevel string

	// Registry supplies the io namespace's component schemas; defaults
	// to io.DefaultRegistry().
	Registry *schema.Registry

	// Dial overrides how the Socket opens its underlying connection;
	// defaults to wire.DialTLS. Tests substitute an in-memory pipe.
	Dial wire.Dialer

	// Guard, if set, bounds concurrent transactions per action name
	// (spec.md §5's resource model, generalized per SPEC_FULL §3.3).
	Guard *session.Guard

	// Metrics, if set, records the active-transaction gauge, SEND_IO_CALL
	// RPC errors and reconnect attempts; the Controller does not observe
	// RenderDuration.
	Metrics *metrics.Metrics

	// Locker, if set, claims each transactionId with a distributed mutex
	// before creating it, so a fleet of Host processes registered under
	// the same coordinator never double-runs one START_TRANSACTION
	// (spec.md's Non-goals exclude cross-host transaction *scaling*, not
	// this kind of replica-safety bookkeeping). The default is the
	// single-process-only path: no Locker, no dedup.
	Locker ports.DistributedLocker

	// LockTTL bounds how long a claimed transactionId lock survives if
	// its holder crashes without releasing; defaults to 5 minutes.
	LockTTL time.Duration

	// LockAttemptTimeout bounds how long handleStartTransaction waits to
	// claim the lock before giving up and dropping the transaction, on
	// the assumption another replica already has it; defaults to 2s.
	LockAttemptTimeout time.Duration

	// Backoff overrides the reconnect schedule; defaults to
	// backoff.DefaultSteps with backoff.DefaultRetriesPerStep.
	BackoffSteps          []time.Duration
	BackoffRetriesPerStep int

	Logger *slog.Logger
}

func (c Config) logLevel() slog.Level {
	if c.LogLevel == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (c Config) schedule() *backoff.Schedule {
	return backoff.New(c.BackoffSteps, c.BackoffRetriesPerStep)
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c Config) registry() *schema.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return actionio.DefaultRegistry()
}

func (c Config) lockTTL() time.Duration {
	if c.LockTTL > 0 {
		return c.LockTTL
	}
	return 5 * time.Minute
}

func (c Config) lockAttemptTimeout() time.Duration {
	if c.LockAttemptTimeout > 0 {
		return c.LockAttemptTimeout
	}
	return 2 * time.Second
}


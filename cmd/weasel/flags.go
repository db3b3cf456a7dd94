package main

import (
	"time"

	"github.com/dvcrn/weasel/internal/auth"
	"github.com/dvcrn/weasel/internal/cache"
	"github.com/dvcrn/weasel/internal/device"
	"github.com/dvcrn/weasel/internal/openpaths"
	"github.com/dvcrn/weasel/internal/tracker"
	"github.com/urfave/cli/v2"
)

const (
	credsSettings = "settings"
	credsEnv      = "env"
	credsKeychain = "keychain"
)

var (
	settingsFlag = &cli.StringFlag{
		Name:    "settings",
		Usage:   "path to the settings file (default $XDG_CONFIG_HOME/weasel/settings.json, then ./settings.json)",
		EnvVars: []string{"WEASEL_SETTINGS"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "trace, debug, info, warn or error",
		Value:   "info",
		EnvVars: []string{"WEASEL_LOG_LEVEL"},
	}

	hostFlag = &cli.StringFlag{
		Name:    "host",
		Usage:   "interface to listen on",
		Value:   "localhost",
		EnvVars: []string{"WEASEL_HOST"},
	}
	portFlag = &cli.IntFlag{
		Name:    "port",
		Usage:   "port to listen on",
		Value:   6789,
		EnvVars: []string{"WEASEL_PORT", "PORT"},
	}
	credentialsFlag = &cli.StringFlag{
		Name:    "credentials",
		Usage:   "where the OpenPaths consumer pair comes from: settings, env or keychain",
		Value:   credsSettings,
		EnvVars: []string{"WEASEL_CREDENTIALS"},
	}
	refreshPolicyFlag = &cli.StringFlag{
		Name:    "refresh-policy",
		Usage:   "manual, periodic_timer or periodic_loop",
		Value:   string(cache.PolicyPeriodicTimer),
		EnvVars: []string{"WEASEL_REFRESH_POLICY"},
	}
	refreshIntervalFlag = &cli.DurationFlag{
		Name:    "refresh-interval",
		Usage:   "time between upstream polls",
		Value:   cache.DefaultInterval,
		EnvVars: []string{"WEASEL_REFRESH_INTERVAL"},
	}
	headerRefreshFlag = &cli.StringFlag{
		Name:    "header-refresh",
		Usage:   "re-sign the auth header on failure or after request_count uses",
		Value:   string(auth.RefreshOnFailure),
		EnvVars: []string{"WEASEL_HEADER_REFRESH"},
	}
	headerMaxAgeFlag = &cli.IntFlag{
		Name:    "header-max-age",
		Usage:   "requests per auth header under the request_count policy",
		Value:   auth.DefaultMaxAge,
		EnvVars: []string{"WEASEL_HEADER_MAX_AGE"},
	}
	maxAttemptsFlag = &cli.IntFlag{
		Name:    "max-attempts",
		Usage:   "upstream attempts per poll before giving up",
		Value:   openpaths.DefaultMaxAttempts,
		EnvVars: []string{"WEASEL_MAX_ATTEMPTS"},
	}
	proximityFlag = &cli.Float64Flag{
		Name:    "proximity",
		Usage:   "metres within which a point takes a known location's name",
		Value:   tracker.DefaultProximity,
		EnvVars: []string{"WEASEL_PROXIMITY"},
	}
	deviceFlag = &cli.StringFlag{
		Name:    "device",
		Usage:   "Spark device id to notify on location changes",
		EnvVars: []string{"WEASEL_DEVICE"},
	}
	deviceFunctionFlag = &cli.StringFlag{
		Name:    "device-function",
		Usage:   "device function receiving the location label",
		Value:   device.DefaultFunction,
		EnvVars: []string{"WEASEL_DEVICE_FUNCTION"},
	}
	adminKeyFlag = &cli.StringFlag{
		Name:    "admin-key",
		Usage:   "key required by POST /admin/refresh (disabled when empty)",
		EnvVars: []string{"WEASEL_ADMIN_KEY", "ADMIN_API_KEY"},
	}
	shutdownTimeoutFlag = &cli.DurationFlag{
		Name:  "shutdown-timeout",
		Usage: "time allowed for in-flight requests on shutdown",
		Value: 10 * time.Second,
	}

	accessFlag = &cli.StringFlag{
		Name:     "access",
		Usage:    "OpenPaths access key",
		Required: true,
		EnvVars:  []string{"OPENPATHS_ACCESS"},
	}
	secretFlag = &cli.StringFlag{
		Name:     "secret",
		Usage:    "OpenPaths secret key",
		Required: true,
		EnvVars:  []string{"OPENPATHS_SECRET"},
	}
	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "overwrite an existing settings file",
	}
)

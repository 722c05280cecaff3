// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// computed runs a compute marketplace ledger node and serves its API.
package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/compute/api"
	"github.com/vechain/compute/api/admin"
	"github.com/vechain/compute/cmd/computed/httpserver"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/log"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/metrics"
	"github.com/vechain/compute/node"
	"github.com/vechain/compute/xenv"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Computed",
		Usage:     "Node of the VeChain compute marketplace",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiRateLimitFlag,
			apiRateBurstFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			skipNTPFlag,
			cacheFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)

	// metrics must be enabled before the first meter is created
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	configID, err := cfg.ID()
	if err != nil {
		return errors.Wrap(err, "config id")
	}
	gene, err := cfg.Genesis(uint64(time.Now().Unix()))
	if err != nil {
		return errors.Wrap(err, "config")
	}

	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	log.Debug("cache size(MB)", "size", cacheMB)

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, configID); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir, cacheMB/2); err != nil {
			return err
		}
		if logDB, err = openLogDB(instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return errors.Wrap(err, "open main database")
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return errors.Wrap(err, "open log database")
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()
	log.Debug("log database opened", "driver", logDB.DriverVersion())

	n, err := node.New(mainDB, logDB, xenv.NewWallClock(1), node.Options{
		StateCacheSize: cacheMB / 2 * 1024 * 1024,
		SkipLogs:       ctx.Bool(skipLogsFlag.Name),
		SkipNTP:        ctx.Bool(skipNTPFlag.Name),
	})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping node..."); n.Close() }()

	if _, err := n.Init(gene); err != nil {
		return errors.Wrap(err, "init ledger")
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiClose := api.New(n, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		RateLimit:       ctx.Float64(apiRateLimitFlag.Name),
		RateBurst:       ctx.Int(apiRateBurstFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		SkipLogs:        ctx.Bool(skipLogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: &apiLogs,
	})
	defer func() { log.Info("closing subscriptions..."); apiClose() }()

	apiSrv, err := httpserver.Listen("api", ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	servers := []*httpserver.Server{apiSrv}

	var metricsURL, adminURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		srv, err := httpserver.Listen("metrics", ctx.String(metricsAddrFlag.Name), httpserver.MetricsHandler())
		if err != nil {
			return err
		}
		servers = append(servers, srv)
		metricsURL = srv.URL("/metrics")
	}
	if ctx.Bool(enableAdminFlag.Name) {
		srv, err := httpserver.Listen("admin", ctx.String(adminAddrFlag.Name), admin.New(logLevel, &apiLogs, n))
		if err != nil {
			return err
		}
		servers = append(servers, srv)
		adminURL = srv.URL("/admin")
	}

	printStartupMessage(cfg, configID, n, instanceDir, apiSrv.URL("/"), metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	for _, srv := range servers {
		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
	}
	n.Run(groupCtx)

	return group.Wait()
}

func printStartupMessage(
	cfg *Config,
	configID compute.Bytes32,
	n *node.Node,
	instanceDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	optional := func(url string) string {
		if url == "" {
			return "Disabled"
		}
		return url
	}

	fmt.Printf(`Starting Computed %v
    Config       [ %v ]
    Owner        [ %v ]
    Height       [ %v @%v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		fullVersion(),
		configID,
		cfg.Owner,
		n.Height(), time.Unix(int64(n.Now()), 0),
		instanceDir,
		apiURL,
		optional(metricsURL),
		optional(adminURL),
	)
	if len(cfg.Accounts) > 0 {
		fmt.Println("    Funded accounts:")
		for _, acc := range cfg.Accounts {
			fmt.Printf("        %v\n", acc.Address)
		}
	}
}

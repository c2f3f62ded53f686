// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"
	"github.com/openbc-project/handshaked/internal/auditlog"
	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/openbc-project/handshaked/internal/config"
	"github.com/openbc-project/handshaked/internal/diagserver"
	"github.com/openbc-project/handshaked/internal/handshake"
	"github.com/openbc-project/handshaked/internal/manifestsource"
	"github.com/openbc-project/handshaked/internal/metrics"
	"github.com/openbc-project/handshaked/internal/policy"
	"github.com/openbc-project/handshaked/internal/reload"
	"github.com/openbc-project/handshaked/internal/runtimeEnv"
	"github.com/openbc-project/handshaked/pkg/log"
)

var (
	flagConfigFile = flag.String("config", "./config.json", "path to the server configuration file")
	flagEnvFile    = flag.String("env", "", "optional .env file to load before reading the config file")
	flagListenAddr = flag.String("listen", ":7777", "address the handshake TCP listener binds to")
	flagGops       = flag.Bool("gops", false, "start a github.com/google/gops diagnostics agent")
)

func main() {
	flag.Parse()

	if !checksum.VerifyTables() {
		log.Fatal("startup self-check failed: checksum substitution tables do not reproduce the expected fixed point")
	}

	if *flagEnvFile != "" {
		if err := runtimeEnv.LoadEnv(*flagEnvFile); err != nil {
			log.Fatal("loading env file: ", err)
		}
	}

	if err := config.Init(*flagConfigFile); err != nil {
		log.Fatal("loading configuration: ", err)
	}
	log.SetLogLevel(config.Keys.LogLevel)

	if *flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Error("starting gops agent: ", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manifests, err := reload.NewManager(ctx, config.Keys.ManifestPath, manifestsource.Load)
	if err != nil {
		log.Fatal("loading initial manifest: ", err)
	}
	if err := manifests.WatchFile(ctx); err != nil {
		log.Warnf("manifest file watch not active: %s", err)
	}
	if config.Keys.ManifestReloadIntervalSeconds > 0 {
		interval := time.Duration(config.Keys.ManifestReloadIntervalSeconds) * time.Second
		if err := manifests.StartPeriodicSelfCheck(ctx, gocron.DurationJob(interval)); err != nil {
			log.Warnf("periodic manifest self-check not active: %s", err)
		}
	}
	defer manifests.Close()

	audit, err := auditlog.Open(config.Keys.AuditDB)
	if err != nil {
		log.Fatal("opening audit log: ", err)
	}
	defer audit.Close()

	severityPolicy, err := policy.Compile(config.Keys.SeverityPolicy)
	if err != nil {
		log.Fatal("compiling severity policy: ", err)
	}

	diag := diagserver.New(config.Keys.Addr, manifests)
	go func() {
		if err := diag.ListenAndServe(); err != nil {
			log.Error("diagnostics server stopped: ", err)
		}
	}()

	listener, err := net.Listen("tcp", *flagListenAddr)
	if err != nil {
		log.Fatal("binding handshake listener: ", err)
	}

	if config.Keys.User != "" || config.Keys.Group != "" {
		if err := runtimeEnv.DropPrivileges(config.Keys.User, config.Keys.Group); err != nil {
			log.Fatal("dropping privileges: ", err)
		}
	}

	runtimeEnv.SystemdNotify(true, "serving")
	log.Infof("openbc-handshaked: listening for clients on %s", *flagListenAddr)

	go acceptLoop(ctx, listener, manifests, audit, severityPolicy)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("openbc-handshaked: shutting down")
	runtimeEnv.SystemdNotify(false, "stopping")
	listener.Close()
	diag.Shutdown()
}

func acceptLoop(ctx context.Context, listener net.Listener, manifests *reload.Manager, audit *auditlog.Log, pol *policy.Policy) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accepting connection: ", err)
				continue
			}
		}

		go handleConnection(ctx, conn, manifests, audit, pol)
	}
}

func handleConnection(ctx context.Context, conn net.Conn, manifests *reload.Manager, audit *auditlog.Log, pol *policy.Policy) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	driver := &handshake.Driver{
		Transport: &tcpTransport{conn: conn},
		Manifest:  manifests.Current(),
	}

	outcome, err := driver.Run()
	if err != nil {
		log.Warnf("handshake with %s errored: %s", remote, err)
		outcome = handshake.Outcome{Result: handshake.ParseError, Round: 0}
	}

	metrics.ObserveRound(outcome.Round, outcome.Result)

	accepted := !pol.ShouldBoot(outcome.Round, outcome.Result)
	metrics.ObserveHandshake(accepted)
	if err := audit.Record(ctx, remote, outcome.Round, outcome.Result, accepted, time.Now()); err != nil {
		log.Warnf("recording audit event for %s: %s", remote, err)
	}

	if !accepted {
		frame, buildErr := handshake.BuildBootPlayer(handshake.BootReasonChecksumFailed)
		if buildErr == nil {
			conn.Write(frame)
		}
		log.Warnf("booted %s: round %d result %s", remote, outcome.Round, outcome.Result)
		return
	}

	settings, err := handshake.BuildSettings(0, true, true, 0, "")
	if err == nil {
		conn.Write(settings)
	}
	gameInit, err := handshake.BuildGameInit()
	if err == nil {
		conn.Write(gameInit)
	}
	log.Infof("accepted %s", remote)
}

// tcpTransport adapts a net.Conn to handshake.Transport. Each Receive
// call applies a fixed deadline so a silent client cannot tie up a
// handler goroutine indefinitely.
type tcpTransport struct {
	conn net.Conn
}

const responseDeadline = 10 * time.Second

func (t *tcpTransport) Send(frame []byte) error {
	_, err := t.conn.Write(frame)
	return err
}

func (t *tcpTransport) Receive() ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(responseDeadline)); err != nil {
		return nil, err
	}
	buf := make([]byte, 8192)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

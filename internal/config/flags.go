// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from the process arguments.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-r remote document store URL used by the client
//	-d database DSN (Postgres on the server, SQLite path on the client)
//	-f client file blob store directory
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-hash-key request integrity hash key
//	-log-file client log file path
//	-sync-disabled start with the sync preference turned off
//	-sync-interval background sync period
//	-probe-interval connectivity probe period
func ParseFlags() (*StructuredConfig, error) {
	var serverAddress NetAddress
	var remoteAddress string
	var filesDir string
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var hashKey string
	var logFile string
	var syncDisabled bool
	var syncInterval time.Duration
	var probeInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&remoteAddress, "r", "", "Remote document store URL")
	flag.StringVar(&filesDir, "f", "", "File blob store directory")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&hashKey, "hash-key", "", "Request integrity hash key")
	flag.StringVar(&logFile, "log-file", "", "Client log file path")
	flag.BoolVar(&syncDisabled, "sync-disabled", false, "Start with sync turned off")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe period")

	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			HashKey:       hashKey,
			LogFile:       logFile,
			SyncDisabled:  syncDisabled,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Files: Files{Dir: filesDir},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			ProbeInterval: probeInterval,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

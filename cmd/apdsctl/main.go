// Command apdsctl queries a running apds service.
//
//	apdsctl [-addr host:port] status
//	apdsctl latest [mode]
//	apdsctl history [-since 1h] [mode]
//	apdsctl stop
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/pb"
	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/tlsconfig"
)

var errUsage = errors.New("usage: apdsctl [flags] status | latest [mode] | history [-since d] [mode] | stop")

// command is one parsed subcommand with its own arguments
type command struct {
	name  string
	mode  string
	since time.Duration
}

func main() {
	var (
		addr       string
		timeout    time.Duration
		tlsFiles   tlsconfig.Files
		serverName string
	)
	flag.StringVar(&addr, "addr", "localhost:50052", "service address")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	flag.StringVar(&tlsFiles.Cert, "cert", os.Getenv("TLS_CERT"), "client certificate")
	flag.StringVar(&tlsFiles.Key, "key", os.Getenv("TLS_KEY"), "client key")
	flag.StringVar(&tlsFiles.CA, "ca", os.Getenv("TLS_CA"), "CA certificate")
	flag.StringVar(&serverName, "server-name", "", "name expected on the server certificate")
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "apdsctl:", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			flag.Usage()
		}
		os.Exit(2)
	}

	if err := run(addr, tlsFiles, serverName, timeout, cmd); err != nil {
		fmt.Fprintln(os.Stderr, "apdsctl:", err)
		os.Exit(1)
	}
}

// parseCommand reads a subcommand and its flags; flags follow the subcommand name
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}

	cmd := command{name: args[0]}
	fs := flag.NewFlagSet("apdsctl "+cmd.name, flag.ContinueOnError)

	maxArgs := 0
	switch cmd.name {
	case "status", "stop":
	case "latest":
		maxArgs = 1
	case "history":
		fs.DurationVar(&cmd.since, "since", time.Hour, "history window")
		maxArgs = 1
	default:
		return command{}, fmt.Errorf("unknown command %q: %w", cmd.name, errUsage)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return command{}, err
	}
	if fs.NArg() > maxArgs {
		return command{}, fmt.Errorf("%s: unexpected arguments %v: %w", cmd.name, fs.Args()[maxArgs:], errUsage)
	}
	if fs.NArg() == 1 {
		cmd.mode = fs.Arg(0)
	}
	if cmd.name == "history" && cmd.since <= 0 {
		return command{}, fmt.Errorf("history: -since must be positive, got %s", cmd.since)
	}
	return cmd, nil
}

func run(addr string, tlsFiles tlsconfig.Files, serverName string, timeout time.Duration, cmd command) error {
	creds := insecure.NewCredentials()
	if tlsFiles.Enabled() {
		tlsCfg, err := tlsconfig.LoadClientTLS(tlsFiles, serverName)
		if err != nil {
			return err
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := cmd.call(ctx, pb.NewSensorServiceClient(conn), time.Now())
	if err != nil {
		return err
	}

	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// call sends the command; history covers [now-since, now)
func (c command) call(ctx context.Context, client pb.SensorServiceClient, now time.Time) (proto.Message, error) {
	switch c.name {
	case "status":
		return client.GetStatus(ctx, &emptypb.Empty{})
	case "latest":
		return client.GetLatestReading(ctx, wrapperspb.String(c.mode))
	case "history":
		req, err := pb.NewHistoryRequest(c.mode, now.Add(-c.since), now)
		if err != nil {
			return nil, err
		}
		return client.GetHistory(ctx, req)
	case "stop":
		return client.StopSession(ctx, &emptypb.Empty{})
	default:
		return nil, fmt.Errorf("unknown command %q", c.name)
	}
}

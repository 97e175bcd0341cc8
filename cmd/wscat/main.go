// Command wscat is a line oriented WebSocket client.
//
// Every line read from stdin is sent as a text frame and every frame
// received is printed to stdout, binary frames in hex.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/streamwire/websocket"
	"github.com/streamwire/websocket/internal/config"
	"github.com/streamwire/websocket/wsmetrics"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wscat",
	Short: "Line oriented WebSocket client",
	Long: `wscat connects to a WebSocket server, sends each line read from stdin
as a text frame and prints every frame received.

Settings are read from the YAML file given with --config, then from
WSCAT_ environment variables (a .env file in the working directory is
loaded first), then from flags.`,
	SilenceUsage: true,
}

var connectCmd = &cobra.Command{
	Use:   "connect [url]",
	Short: "Connect to a ws:// or wss:// URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConnect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	addConnectFlags(connectCmd.Flags())

	rootCmd.AddCommand(connectCmd)
}

func addConnectFlags(f *pflag.FlagSet) {
	f.String("subprotocol", "", "Sec-WebSocket-Protocol to request")
	f.Duration("timeout", 0, "handshake timeout and per frame read timeout")
	f.Duration("poll-interval", 0, "how often to check for received data")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
	f.String("log-level", "", "debug, info, warn or error")
}

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(f *pflag.FlagSet, cfg *config.Config) error {
	var err error
	if f.Changed("subprotocol") {
		cfg.Subprotocol, err = f.GetString("subprotocol")
		if err != nil {
			return err
		}
	}
	if f.Changed("timeout") {
		cfg.Timeout, err = f.GetDuration("timeout")
		if err != nil {
			return err
		}
	}
	if f.Changed("poll-interval") {
		cfg.PollInterval, err = f.GetDuration("poll-interval")
		if err != nil {
			return err
		}
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr, err = f.GetString("metrics-addr")
		if err != nil {
			return err
		}
	}
	if f.Changed("log-level") {
		cfg.LogLevel, err = f.GetString("log-level")
		if err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("invalid log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	err = applyFlags(cmd.Flags(), &cfg)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.URL = args[0]
	}
	if cfg.URL == "" {
		return errors.New("no url given")
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	log = log.With(zap.String("session", uuid.New().String()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	c, err := websocket.Dial(ctx, cfg.URL, &websocket.DialOptions{
		ClientOptions: websocket.ClientOptions{
			Subprotocol:           cfg.Subprotocol,
			Logger:                log,
			Observer:              wsmetrics.New(reg, "wscat"),
			HandshakeTimeout:      cfg.Timeout,
			HandshakePollInterval: cfg.HandshakePollInterval,
			ReadPollInterval:      cfg.PollInterval,
			WriteBufferSize:       cfg.WriteBufferSize,
		},
	})
	if err != nil {
		log.Error("failed to connect", zap.String("url", cfg.URL), zap.Error(err))
		return err
	}
	defer c.Close()
	log.Info("connected", zap.String("url", cfg.URL))

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return xerrors.Errorf("metrics server failed: %w", err)
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	lines := make(chan string)
	// Reading stdin blocks until a line or EOF so it stays out of the group.
	go readLines(ctx, cmd.InOrStdin(), lines)

	g.Go(func() error {
		defer cancel()
		s := &session{
			c:            c,
			log:          log,
			out:          cmd.OutOrStdout(),
			pollInterval: cfg.PollInterval,
			readTimeout:  cfg.Timeout,
		}
		return s.run(ctx, lines)
	})

	err = g.Wait()
	if err != nil {
		log.Error("session failed", zap.Error(err))
		return err
	}
	log.Info("session ended")
	return nil
}

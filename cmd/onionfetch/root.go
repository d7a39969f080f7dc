package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/kevburnsjr/onionfetch"
	"github.com/kevburnsjr/onionfetch/internal/config"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitHTTPError   = 1
	ExitConfigError = 3
	ExitNetwork     = 4
)

type flags struct {
	method    string
	headers   []string
	params    []string
	data      string
	timeout   time.Duration
	prefix    string
	config    string
	envFile   string
	selector  string
	raw       bool
	cache     bool
	repeat    int
	requestID bool
	logLevel  string
	noColor   bool
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return ExitNetwork
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "onionfetch <url>",
		Short: "Fetch a URL through the onionfetch middleware pipeline",
		Long: `onionfetch issues a single HTTP request through the onionfetch client:
prefix/suffix interceptors, query and body encoding, the response cache,
timeout handling and response parsing.

Examples:
  onionfetch https://httpbin.org/get -p q=go
  onionfetch /anything --prefix https://httpbin.org -X post -d '{"a":1}'
  onionfetch https://httpbin.org/json -s slideshow.title
  onionfetch https://httpbin.org/get --cache --repeat 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.method, "method", "X", "get", "HTTP method")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, `Request header "Key: Value", repeatable`)
	fl.StringArrayVarP(&f.params, "param", "p", nil, `Query parameter "key=value", repeatable`)
	fl.StringVarP(&f.data, "data", "d", "", "Request body, sent as JSON when it parses as JSON")
	fl.DurationVarP(&f.timeout, "timeout", "t", 0, "Request timeout (overrides config)")
	fl.StringVar(&f.prefix, "prefix", "", "URL prefix (overrides config)")
	fl.StringVarP(&f.config, "config", "c", "", "Path to a YAML config file")
	fl.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file")
	fl.StringVarP(&f.selector, "select", "s", "", "gjson path selecting part of a JSON body")
	fl.BoolVar(&f.raw, "raw", false, "Print the body without status line")
	fl.BoolVar(&f.cache, "cache", false, "Enable the response cache (overrides config)")
	fl.IntVar(&f.repeat, "repeat", 1, "Number of times to issue the request")
	fl.BoolVar(&f.requestID, "request-id", false, "Tag requests with an X-Request-Id header")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fl.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func run(ctx context.Context, f *flags, target string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.noColor {
		color.NoColor = true
	}

	config.LoadEnvFiles(f.envFile)
	cfg, err := config.Load(f.config)
	if err != nil {
		return &exitError{ExitConfigError, err}
	}
	if f.prefix != "" {
		cfg.Prefix = f.prefix
	}
	if f.timeout > 0 {
		cfg.Timeout = config.Duration(f.timeout)
	}
	if f.cache {
		cfg.Cache.Enabled = true
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}

	logger, err := newLogger(cfg.Logging.Level, stderr)
	if err != nil {
		return &exitError{ExitConfigError, err}
	}
	defer logger.Sync()

	client := newClient(cfg, logger)
	if f.requestID {
		client.Use(onionfetch.RequestID(), onionfetch.UseOptions{})
	}

	opts, err := requestOptions(f)
	if err != nil {
		return &exitError{ExitConfigError, err}
	}

	repeat := f.repeat
	if repeat < 1 {
		repeat = 1
	}
	var res *onionfetch.Response
	for i := 0; i < repeat; i++ {
		start := time.Now()
		v, err := client.Request(ctx, target, opts...)
		if err != nil {
			return &exitError{ExitNetwork, err}
		}
		res = v.(*onionfetch.Response)
		if !f.raw {
			printStatus(stderr, res, time.Since(start))
		}
	}

	body := res.Body
	if f.selector != "" {
		r := gjson.GetBytes(body, f.selector)
		if !r.Exists() {
			return &exitError{ExitHTTPError, fmt.Errorf("select %q: no match", f.selector)}
		}
		body = []byte(r.String())
	}
	fmt.Fprintln(stdout, string(body))

	if !res.OK() {
		return &exitError{ExitHTTPError, fmt.Errorf("%d %s", res.Status, res.StatusText)}
	}
	return nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}

func newClient(cfg config.Config, logger *zap.Logger) *onionfetch.Client {
	var cache onionfetch.Cache
	switch strings.ToLower(cfg.Cache.Driver) {
	case "ristretto":
		cache = onionfetch.NewRistrettoCache(int64(cfg.Cache.MaxEntries), cfg.Cache.MaxBytes.Int64())
	default:
		cache = onionfetch.NewMapCache(cfg.Cache.MaxEntries)
	}
	var compressor onionfetch.Compressor
	switch strings.ToLower(cfg.Cache.Compressor) {
	case "gzip":
		compressor = onionfetch.CompressorGzip{}
	case "snappy":
		compressor = onionfetch.CompressorSnappy{}
	}

	client := onionfetch.New(onionfetch.Config{
		Options: onionfetch.Options{
			Prefix:      cfg.Prefix,
			Suffix:      cfg.Suffix,
			Headers:     cfg.Headers,
			Timeout:     cfg.Timeout.Duration(),
			UseCache:    cfg.Cache.Enabled,
			TTL:         cfg.Cache.TTL.Duration(),
			MaxCache:    cfg.Cache.MaxEntries,
			RawResponse: true,
		},
		Cache:      cache,
		Compressor: compressor,
		Logger:     logger,
		Registry:   onionfetch.NewRegistry(),
	})
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		client.Use(onionfetch.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)), onionfetch.UseOptions{})
	}
	return client
}

func requestOptions(f *flags) ([]onionfetch.RequestOption, error) {
	opts := []onionfetch.RequestOption{onionfetch.WithMethod(f.method)}
	for _, h := range f.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, want \"Key: Value\"", h)
		}
		opts = append(opts, onionfetch.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
	}
	if len(f.params) > 0 {
		params := url.Values{}
		for _, p := range f.params {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return nil, fmt.Errorf("invalid param %q, want key=value", p)
			}
			params.Add(k, v)
		}
		opts = append(opts, onionfetch.WithParams(params))
	}
	if f.data != "" {
		if gjson.Valid(f.data) {
			opts = append(opts,
				onionfetch.WithBody([]byte(f.data)),
				onionfetch.WithHeader("Content-Type", "application/json"))
		} else {
			opts = append(opts, onionfetch.WithData(f.data))
		}
	}
	return opts, nil
}

func printStatus(w io.Writer, res *onionfetch.Response, elapsed time.Duration) {
	status := color.New(color.FgRed, color.Bold).SprintfFunc()
	switch {
	case res.Status >= 200 && res.Status < 300:
		status = color.New(color.FgGreen, color.Bold).SprintfFunc()
	case res.Status >= 300 && res.Status < 400:
		status = color.New(color.FgYellow, color.Bold).SprintfFunc()
	}
	source := "network"
	if res.FromCache {
		source = color.CyanString("cache")
	}
	fmt.Fprintf(w, "%s %s  %s  %s  %s\n",
		status("%d", res.Status),
		res.StatusText,
		humanize.Bytes(uint64(len(res.Body))),
		elapsed.Round(time.Microsecond),
		source,
	)
}

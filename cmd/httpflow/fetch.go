package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/frankli0324/go-httpflow"
	"github.com/frankli0324/go-httpflow/internal/config"
)

type fetchOptions struct {
	method       string
	headers      []string
	data         string
	maxRedirects int
	noRedirect   bool
	raw          bool
	output       string
	include      bool
	jsonPath     string
	configPath   string
	proxy        string
	insecure     bool
	timeout      time.Duration
	fail         bool
	verbose      bool
	noColor      bool
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Send a request and stream the response",
		Long: `Send a single request and stream the final response to stdout or a file.

Examples:
  httpflow fetch https://example.com
  httpflow fetch https://api.example.com/items -H "Accept: application/json" --json-path items.0.name
  httpflow fetch https://example.com/upload -X PUT -d @big.bin
  httpflow fetch https://example.com/archive.tar.gz -o archive.tar.gz --max-redirects 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "X", "", "Request method (default GET, POST with --data)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `Request header "Name: value", repeatable`)
	f.StringVarP(&opts.data, "data", "d", "", "Request body, @file streams the file")
	f.IntVar(&opts.maxRedirects, "max-redirects", config.DefaultConfig().MaxRedirects, "Redirect budget")
	f.BoolVar(&opts.noRedirect, "no-redirect", false, "Deliver redirect responses as they are")
	f.BoolVar(&opts.raw, "raw", false, "Print chunked bodies as they appear on the wire, without decoding")
	f.StringVarP(&opts.output, "output", "o", "", "Write the body to a file while it arrives")
	f.BoolVarP(&opts.include, "include", "i", false, "Print the response head")
	f.StringVar(&opts.jsonPath, "json-path", "", "Print only the value at this gjson path of a JSON body")
	f.StringVar(&opts.configPath, "config", getEnvString("HTTPFLOW_CONFIG", ""), "Path to config file (env: HTTPFLOW_CONFIG)")
	f.StringVar(&opts.proxy, "proxy", getEnvString("HTTPFLOW_PROXY", ""), "Proxy URL for HTTP requests (env: HTTPFLOW_PROXY)")
	f.BoolVarP(&opts.insecure, "insecure", "k", getEnvBool("HTTPFLOW_INSECURE", false), "Disable SSL certificate validation (env: HTTPFLOW_INSECURE)")
	f.DurationVar(&opts.timeout, "timeout", time.Duration(getEnvInt("HTTPFLOW_TIMEOUT_MS", 0))*time.Millisecond, "Overall timeout, 0 for none")
	f.BoolVarP(&opts.fail, "fail", "f", false, "Exit with code 22 on a non-2xx final status")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log connection and redirect activity to stderr")
	f.BoolVar(&opts.noColor, "no-color", getEnvBool("HTTPFLOW_NO_COLOR", false), "Disable colored output (env: HTTPFLOW_NO_COLOR)")
	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions, rawURL string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return &exitError{ExitConfigError, err}
	}
	flags := cmd.Flags()
	if flags.Changed("max-redirects") {
		cfg.MaxRedirects = opts.maxRedirects
	}
	if opts.noRedirect {
		cfg.FollowRedirects = config.BoolPtr(false)
	}
	if opts.proxy != "" {
		cfg.Proxy = opts.proxy
	}
	if opts.insecure {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{ExitUsageError, err}
	}
	if opts.noColor {
		color.NoColor = true
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	req, err := buildRequest(opts, rawURL)
	if err != nil {
		return &exitError{ExitUsageError, err}
	}
	if c, ok := req.Body.(io.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	client := httpflow.NewClient(cfg.ClientOptions(logger)...)
	defer client.CloseIdle()

	out := cmd.OutOrStdout()
	status, err := httpflow.Do(ctx, client, req, func(status httpflow.Status, header httpflow.Header, body io.Reader) (httpflow.Status, error) {
		if opts.include {
			printHead(out, status, header)
		}
		return status, writeBody(out, opts, body)
	})
	if err != nil {
		return err
	}
	if opts.fail && !status.IsSuccess() {
		return &exitError{ExitHTTPError, fmt.Errorf("server returned %s", status)}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return cfg.Build()
}

func buildRequest(opts *fetchOptions, rawURL string) (*httpflow.Request, error) {
	method := strings.ToUpper(opts.method)
	if method == "" {
		method = "GET"
		if opts.data != "" {
			method = "POST"
		}
	}
	req, err := httpflow.NewRequest(method, rawURL)
	if err != nil {
		return nil, err
	}
	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("header %q is not in \"Name: value\" form", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	switch {
	case strings.HasPrefix(opts.data, "@"):
		f, err := os.Open(opts.data[1:])
		if err != nil {
			return nil, err
		}
		req.Body = f // *os.File has no Size, it is sent chunked
	case opts.data != "":
		req.Body = opts.data
	}
	req.RawBody = opts.raw
	return req, nil
}

func printHead(w io.Writer, status httpflow.Status, header httpflow.Header) {
	c := color.New(color.FgRed, color.Bold)
	switch {
	case status.IsSuccess():
		c = color.New(color.FgGreen, color.Bold)
	case status.IsRedirect():
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(w, "HTTP/1.1 %s\n", status)
	name := color.New(color.FgCyan)
	for _, f := range header {
		name.Fprint(w, f.Name)
		fmt.Fprintf(w, ": %s\n", f.Value)
	}
	fmt.Fprintln(w)
}

func writeBody(out io.Writer, opts *fetchOptions, body io.Reader) error {
	if opts.jsonPath != "" {
		b, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		if !gjson.ValidBytes(b) {
			return fmt.Errorf("response body is not valid JSON")
		}
		res := gjson.GetBytes(b, opts.jsonPath)
		if !res.Exists() {
			return fmt.Errorf("json path %q not found", opts.jsonPath)
		}
		_, err = fmt.Fprintln(out, res.String())
		return err
	}
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, body); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	_, err := io.Copy(out, body)
	return err
}

// Package main provides the CLI entry point for xlinvoice.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/config"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/repair"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/server"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
	"go.uber.org/zap"
)

var (
	configPath   string
	outputPath   string
	pretty       bool
	templateType string
	scaffoldDir  string
	listenAddr   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "xlinvoice",
		Short:         "Render invoice and packing-list workbooks from xlsx templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	renderCmd := &cobra.Command{
		Use:   "render [request.json]",
		Short: "Render a request into the selected template",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: derived from orderNo)")
	renderCmd.Flags().StringVarP(&templateType, "template", "t", "client", "Template type: client or hq")
	renderCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the JSON render report")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Report shared-string counters without modifying the file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	repairCmd := &cobra.Command{
		Use:   "repair [input.xlsx]",
		Short: "Recompute shared-string counters and strip phonetic annotations",
		Args:  cobra.ExactArgs(1),
		RunE:  runRepair,
	}
	repairCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: overwrite input)")

	scaffoldCmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Write sample client and hq templates",
		Args:  cobra.NoArgs,
		RunE:  runScaffold,
	}
	scaffoldCmd.Flags().StringVar(&scaffoldDir, "dir", "", "Target directory (default: templates.dir from config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default: server.addr from config)")

	rootCmd.AddCommand(renderCmd, inspectCmd, repairCmd, scaffoldCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req models.RenderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	src, closeSrc, err := newSource(cfg.Templates)
	if err != nil {
		return err
	}
	defer closeSrc()

	renderer := xlinvoice.NewRenderer(src, xlinvoice.WithLogger(logger))
	res, err := renderer.Render(cmd.Context(), templateType, &req)
	if err != nil {
		logger.Error("Render failed", zap.String("kind", xlinvoice.KindOf(err)), zap.Error(err))
		return err
	}

	out := outputPath
	if out == "" {
		out = res.Filename
	}
	if err := os.WriteFile(out, res.Bytes, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return printJSON(res)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("file not found: %s", args[0])
	}
	report, err := repair.Inspect(data)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}
	return printJSON(report)
}

func runRepair(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("file not found: %s", args[0])
	}
	out, report, err := repair.RepairBytes(data)
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	target := outputPath
	if target == "" {
		target = args[0]
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return printJSON(report)
}

func runScaffold(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dir := scaffoldDir
	if dir == "" {
		dir = cfg.Templates.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	src := template.NewDirSource(dir)
	for _, v := range template.Variants() {
		data, err := template.Scaffold(v)
		if err != nil {
			return fmt.Errorf("scaffold %s: %w", v, err)
		}
		if err := os.WriteFile(src.Path(v), data, 0644); err != nil {
			return err
		}
		fmt.Println(filepath.Clean(src.Path(v)))
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src, closeSrc, err := newSource(cfg.Templates)
	if err != nil {
		return err
	}
	defer closeSrc()

	addr := listenAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	renderer := xlinvoice.NewRenderer(src, xlinvoice.WithLogger(logger))
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(renderer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func printJSON(v interface{}) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

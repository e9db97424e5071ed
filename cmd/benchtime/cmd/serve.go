package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/harness"
	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/workload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Time the spin workload periodically and expose results over HTTP",
	Long: `Runs the spin workload every serve.interval and serves:

  GET /metrics       Prometheus metrics
  GET /results       latest results (JSON)
  GET /diagnostics   recent diagnostics (JSON)
  GET /health        liveness`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (default from config)")
	serveCmd.Flags().String("interval", "", "time between runs (default from config)")
	if err := viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("serve.interval", serveCmd.Flags().Lookup("interval")); err != nil {
		panic(err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := report.NewMetrics()
	runner, cleanup, err := buildRunner(ctx, cfg.Run.Label, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	latest := harness.NewLatest(50)
	srv := &http.Server{
		Addr:         cfg.Serve.Listen,
		Handler:      newServeRouter(metrics, latest, runner.Diagnostics()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", map[string]interface{}{"addr": cfg.Serve.Listen})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	go func() {
		if err, ok := <-serveErr; ok && err != nil {
			logger.Error("HTTP server failed: " + err.Error())
			cancelLoop()
		}
	}()

	next := func() workload.Workload { return workload.NewSpin(cfg.Run.Iterations) }
	loopErr := runner.Loop(loopCtx, cfg.ServeInterval(), next, latest)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown: " + err.Error())
	}

	if errors.Is(loopErr, context.Canceled) && ctx.Err() != nil {
		logger.Info("Shutting down")
		return nil
	}
	return loopErr
}

func newServeRouter(metrics *report.Metrics, latest *harness.Latest, diags *diag.Log) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, latest.Results())
	}).Methods(http.MethodGet)
	router.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, diags.Recent(0))
	}).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return router
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/batch"
	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/scheduler"
	"github.com/wonny/factorlab/internal/scheduler/jobs"
	"github.com/wonny/factorlab/pkg/redis"
)

// schedulerCmd manages the job scheduler
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run and inspect scheduled jobs",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
  factor_admission - nightly batch over all registered factors (7 PM weekdays)

Example:
  go run ./cmd/factorlab scheduler start
  go run ./cmd/factorlab scheduler run factor_admission`,
}

var schedulerLookback int

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().IntVar(&schedulerLookback, "lookback", 730,
		"calendar days of panel history for the admission batch")
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, log, err := initRuntime()
	if err != nil {
		return nil, nil, err
	}
	rc, err := loadRunConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	loader, cleanupPanel, err := openPanelSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, cleanupStore, err := openCatalogStore(cfg, log)
	if err != nil {
		cleanupPanel()
		return nil, nil, err
	}
	cleanup := func() {
		cleanupStore()
		cleanupPanel()
	}

	svc, err := catalog.NewService(store, rc.Admission, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "factorlab")

	processor := batch.NewProcessor(rc, factors.Builtins(), evaluation.NewEngine(log), svc, cache, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewAdmissionJob(loader, processor, schedulerLookback, log)); err != nil {
		cleanup()
		return nil, nil, err
	}
	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	if err := sched.RunJob(args[0]); err != nil {
		return err
	}

	// RunJob is asynchronous; wait for the history entry
	fmt.Printf("Job %s triggered\n", args[0])
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	return nil
}

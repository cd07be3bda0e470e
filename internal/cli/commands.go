package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/app"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/constraint"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/stage"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/supplier"
)

// RuntimeFunc лениво создаёт Runtime.
type RuntimeFunc func(ctx context.Context) (*app.Runtime, error)

// NewPartitionsCmd создаёт команду вывода партиций.
func NewPartitionsCmd(runtimeFn RuntimeFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "partitions",
		Short: "List partitions and their last publication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFn(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Monitor == nil {
				return app.ErrDisabled
			}
			out := outputFn()

			type partitionView struct {
				Name        string `json:"name"`
				Key         string `json:"key"`
				LastPublish int64  `json:"lastPublish"`
			}

			names := rt.Monitor.Partitions()
			views := make([]partitionView, 0, len(names))
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				last, err := rt.Cache.LastPublish(cmd.Context(), name)
				if err != nil {
					return err
				}
				views = append(views, partitionView{Name: name, Key: rt.Cache.Key(name), LastPublish: last})
				rows = append(rows, []string{name, rt.Cache.Key(name), formatMillis(last)})
			}

			out.Print([]string{"NAME", "KEY", "LAST_PUBLISH"}, rows, views)
			return nil
		},
	}
}

// NewPollCmd создаёт команду одного тика.
func NewPollCmd(runtimeFn RuntimeFunc, outputFn func() *Output) *cobra.Command {
	var sendEvents bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle (dry run unless --send-events)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFn(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Poller == nil {
				return app.ErrDisabled
			}
			out := outputFn()

			res := rt.Poller.Poll(cmd.Context(), sendEvents)
			out.Cycle(res)

			if failed := res.Failed(); failed > 0 {
				return fmt.Errorf("%d partition(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sendEvents, "send-events", false, "Emit events and record publications")

	return cmd
}

// NewStateCmd создаёт группу команд для timestamp публикаций.
func NewStateCmd(runtimeFn RuntimeFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or override stored publication timestamps",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get PARTITION",
			Short: "Show last publication timestamp (ms)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := runtimeFn(cmd.Context())
				if err != nil {
					return err
				}
				out := outputFn()

				value, err := rt.Cache.GetCacheValue(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out.Print([]string{"PARTITION", "KEY", "VALUE"},
					[][]string{{args[0], rt.Cache.Key(args[0]), value}},
					map[string]string{"partition": args[0], "key": rt.Cache.Key(args[0]), "value": value})
				return nil
			},
		},
		&cobra.Command{
			Use:   "set PARTITION TIMESTAMP_MS",
			Short: "Override last publication timestamp (ms)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("timestamp must be an integer (ms): %q", args[1])
				}

				rt, err := runtimeFn(cmd.Context())
				if err != nil {
					return err
				}

				if err := rt.Cache.SetCacheValue(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}

				outputFn().Success(fmt.Sprintf("Set %s = %s", rt.Cache.Key(args[0]), args[1]))
				return nil
			},
		},
	)

	return cmd
}

// NewWaitCmd создаёт команду выполнения wait-задачи.
func NewWaitCmd(runtimeFn RuntimeFunc, outputFn func() *Output, sleep stage.SleepFunc) *cobra.Command {
	var waitTime string

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Run the wait task until it succeeds or times out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, err := stage.ParseDuration(waitTime)
			if err != nil {
				return err
			}
			if wait < 0 {
				return fmt.Errorf("duration must not be negative: %s", waitTime)
			}

			rt, err := runtimeFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			exec := &stage.StageExecution{Context: stage.Context{WaitTime: wait}}
			runner := stage.NewRunner(rt.WaitTask(), rt.Clock, sleep, rt.Logger)

			status, err := runner.Run(cmd.Context(), exec)
			out.Print([]string{"TASK", "STATUS", "WAIT"},
				[][]string{{stage.TaskName, string(status), wait.String()}},
				map[string]string{"task": stage.TaskName, "status": string(status), "waitTime": wait.String()})
			return err
		},
	}

	cmd.Flags().StringVar(&waitTime, "duration", "", "Wait time (Go duration or ISO-8601, e.g. 30s, PT1M)")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

// NewVersionsCmd создаёт команду вывода версий артефакта.
func NewVersionsCmd(runtimeFn RuntimeFunc, outputFn func() *Output) *cobra.Command {
	var limit int
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "versions NAME",
		Short: "List latest artifact versions derived from the publish interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			now := rt.Clock.Now()
			s, err := supplier.NewWithBase(rt.Config.Artifact.Igor.PublishInterval.Std(), now.Add(-since), rt.Clock)
			if err != nil {
				return err
			}

			versions := s.LatestArtifacts(args[0], limit)
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.Name, v.Version, v.Git.Commit}
			}
			out.Print([]string{"NAME", "VERSION", "COMMIT"}, rows, versions)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of versions")
	cmd.Flags().DurationVar(&since, "since", time.Hour, "How far back the first version lies")

	return cmd
}

// NewConstraintCmd создаёт команду оценки dry-run ограничения.
//
// Первый вызов для версии создаёт PENDING-состояние, последующие
// переоценивают его от исходного момента создания.
func NewConstraintCmd(runtimeFn RuntimeFunc, outputFn func() *Output) *cobra.Command {
	var (
		reference         string
		waitTime          string
		alternateInterval string
		fail              bool
		alternate         bool
	)

	cmd := &cobra.Command{
		Use:   "constraint DELIVERY_CONFIG ENVIRONMENT VERSION",
		Short: "Evaluate the dry-run promotion constraint for a version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := constraint.Constraint{Fail: fail, Alternate: alternate}

			var err error
			if c.WaitTime, err = stage.ParseDuration(waitTime); err != nil {
				return fmt.Errorf("--wait: %w", err)
			}
			if alternateInterval != "" {
				if c.AlternateInterval, err = stage.ParseDuration(alternateInterval); err != nil {
					return fmt.Errorf("--alternate-interval: %w", err)
				}
			}
			if c.WaitTime < 0 || c.AlternateInterval < 0 {
				return fmt.Errorf("durations must not be negative")
			}

			rt, err := runtimeFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			ref := reference
			if ref == "" {
				ref = rt.Config.Artifact.Igor.ArtifactPrefix
			}

			state, err := rt.ConstraintStates.GetOrCreate(cmd.Context(),
				constraint.NewState(args[0], args[1], ref, args[2], rt.Clock.Now()))
			if err != nil {
				return err
			}

			promote, judged, err := rt.Constraints.CanPromote(cmd.Context(), c, state)
			if err != nil {
				return err
			}

			out.Print([]string{"ENVIRONMENT", "VERSION", "STATUS", "CREATED_AT", "PROMOTE"},
				[][]string{{judged.Environment, judged.ArtifactVersion, string(judged.Status),
					judged.CreatedAt.Format(time.RFC3339), strconv.FormatBool(promote)}},
				judged)
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Artifact reference (default: artifact prefix)")
	cmd.Flags().StringVar(&waitTime, "wait", "", "Time to stay PENDING (Go duration or ISO-8601)")
	cmd.Flags().BoolVar(&fail, "fail", false, "Resolve to FAIL instead of PASS")
	cmd.Flags().BoolVar(&alternate, "alternate", false, "Alternate between PASS and FAIL after the wait")
	cmd.Flags().StringVar(&alternateInterval, "alternate-interval", "", "Alternation period (default: wait)")
	_ = cmd.MarkFlagRequired("wait")

	return cmd
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

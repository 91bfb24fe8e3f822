package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/alloctrack/acct"
	"github.com/sarchlab/alloctrack/flow"
	"github.com/sarchlab/alloctrack/session"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a demo accounting session.",
	Long: "`demo` runs a workload of nested and forked scopes on a worker " +
		"pool, records every flush into an SQLite database, and prints the " +
		"byte attribution of each scope.",
	Run: func(cmd *cobra.Command, _ []string) {
		workers, _ := cmd.Flags().GetInt("workers")
		monitorOn, _ := cmd.Flags().GetBool("monitor")
		port, _ := cmd.Flags().GetInt("port")
		output, _ := cmd.Flags().GetString("output")

		runDemo(workers, monitorOn, port, output)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int("workers", 0,
		"number of workers in the pool, 0 for one per CPU")
	demoCmd.Flags().Bool("monitor", false,
		"start the monitoring server")
	demoCmd.Flags().Int("port", 0,
		"port for the monitoring server")
	demoCmd.Flags().String("output", "",
		"output file name for the recorded data")
}

func runDemo(workers int, monitorOn bool, port int, output string) {
	builder := session.MakeBuilder().
		WithWorkers(workers).
		WithOutputFileName(output)

	if monitorOn {
		if port > 0 {
			builder = builder.WithMonitorPort(port)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	s := builder.Build()

	var outer, inner, forkA, forkB *acct.Tracker

	s.Pool().Go(func(f *flow.Flow) {
		outer = acct.Start(f)
		f.Record(100000)

		inner = acct.Start(f)
		f.Yield()
		f.Record(1000000)

		f.Fork(func(child *flow.Flow) {
			forkA = acct.Start(child)
			child.Record(300)
		})
		f.Fork(func(child *flow.Flow) {
			forkB = acct.Start(child)
			child.Record(500)
		})
	})

	s.Terminate()

	fmt.Printf("outer:  %d bytes\n", outer.FlushedBytes())
	fmt.Printf("inner:  %d bytes\n", inner.FlushedBytes())
	fmt.Printf("fork A: %d bytes\n", forkA.FlushedBytes())
	fmt.Printf("fork B: %d bytes\n", forkB.FlushedBytes())
}

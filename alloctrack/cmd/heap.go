package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/pprof/profile"
	"github.com/spf13/cobra"
)

var heapCmd = &cobra.Command{
	Use:   "heap [profile]",
	Short: "Summarize allocated bytes in a heap profile.",
	Long: "`heap [profile]` parses a pprof heap profile and reports the " +
		"total allocated bytes per function.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		return summarizeHeapProfile(args[0], top)
	},
}

func init() {
	rootCmd.AddCommand(heapCmd)

	heapCmd.Flags().Int("top", 10, "number of functions to report")
}

func summarizeHeapProfile(path string, top int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	prof, err := profile.Parse(f)
	if err != nil {
		return err
	}

	valueIndex, err := allocSpaceIndex(prof)
	if err != nil {
		return err
	}

	byFunction := make(map[string]int64)
	var total int64

	for _, sample := range prof.Sample {
		value := sample.Value[valueIndex]
		total += value
		byFunction[sampleFunction(sample)] += value
	}

	names := make([]string, 0, len(byFunction))
	for name := range byFunction {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return byFunction[names[i]] > byFunction[names[j]]
	})

	if top > len(names) {
		top = len(names)
	}

	fmt.Printf("total: %d bytes\n", total)
	for _, name := range names[:top] {
		fmt.Printf("%12d  %s\n", byFunction[name], name)
	}

	return nil
}

func allocSpaceIndex(prof *profile.Profile) (int, error) {
	for i, st := range prof.SampleType {
		if st.Type == "alloc_space" {
			return i, nil
		}
	}

	return 0, fmt.Errorf("profile has no alloc_space sample type")
}

func sampleFunction(sample *profile.Sample) string {
	if len(sample.Location) == 0 {
		return "(unknown)"
	}

	lines := sample.Location[0].Line
	if len(lines) == 0 || lines[0].Function == nil {
		return "(unknown)"
	}

	return lines[0].Function.Name
}

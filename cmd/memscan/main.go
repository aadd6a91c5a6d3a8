// memscan attaches to a running process and interactively narrows down the
// addresses holding a value: run a first scan, change the value in the
// target, scan again with a delta constraint, repeat until few survivors
// remain.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"memscan/hexdump"
	"memscan/scan"

	"github.com/spf13/cobra"
)

var (
	flagPID       int
	flagName      string
	flagType      string
	flagWorkers   int
	flagAllMemory bool
)

func main() {
	root := &cobra.Command{
		Use:   "memscan",
		Short: "Interactive process memory value scanner",
		RunE:  runScan,
	}
	root.Flags().IntVar(&flagPID, "pid", 0, "process ID to attach to")
	root.Flags().StringVar(&flagName, "name", "", "process name to attach to (exact comm match)")
	root.Flags().StringVar(&flagType, "type", "int32", "element type (int8..int64, uint8..uint64, float32, float64)")
	root.Flags().IntVar(&flagWorkers, "workers", 0, "parallel scan workers (default: number of CPUs)")
	root.Flags().BoolVar(&flagAllMemory, "all-memory", false, "scan read-only regions too, not just writable memory")

	inspect := &cobra.Command{
		Use:   "inspect <snapshot-file>",
		Short: "Print a summary of a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspect.Flags().StringVar(&flagType, "type", "int32", "element type to decode values as")
	root.AddCommand(inspect)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	elemType, err := scan.ParseElementType(flagType)
	if err != nil {
		return err
	}

	proc, err := attach(flagPID, flagName)
	if err != nil {
		return err
	}
	defer proc.Close()

	var scannerOpts []scan.ScannerOption
	if flagWorkers > 0 {
		scannerOpts = append(scannerOpts, scan.WithWorkers(flagWorkers))
	}
	session := scan.NewSession(proc, elemType,
		scan.WithSessionCollector(scan.NewCollector(proc, scan.WithWritableOnly(!flagAllMemory))),
		scan.WithSessionScanner(scan.NewScanner(scannerOpts...)),
	)

	fmt.Printf("Attached to PID %d, element type %s. Type 'help' for commands.\n", proc.GetPID(), elemType)

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !reader.Scan() {
			return reader.Err()
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "q" {
			return nil
		}
		if err := dispatch(context.Background(), session, line); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("cancelled; baseline unchanged")
				continue
			}
			fmt.Println("error:", err)
		}
	}
}

func dispatch(ctx context.Context, session *scan.Session, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	elemType := session.Constraints().ElementType()

	switch cmd {
	case "help", "?":
		printHelp()
		return nil

	case "type":
		if len(args) != 1 {
			return fmt.Errorf("usage: type <element-type>")
		}
		t, err := scan.ParseElementType(args[0])
		if err != nil {
			return err
		}
		session.Constraints().SetElementType(t)
		fmt.Println("element type set to", t, "(takes effect next pass)")
		return nil

	case "list":
		max := 20
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("usage: list [count]")
			}
			max = n
		}
		return listSurvivors(session, max)

	case "hex":
		return dumpRegions(session, 4)

	case "save":
		if len(args) != 1 {
			return fmt.Errorf("usage: save <file>")
		}
		current := session.Current()
		if current == nil {
			return fmt.Errorf("nothing to save: no pass has run")
		}
		if err := current.WriteFile(args[0]); err != nil {
			return err
		}
		fmt.Println("saved", current.RegionCount(), "regions to", args[0])
		return nil

	case "reset":
		session.Reset()
		fmt.Println("baseline discarded; next pass scans from scratch")
		return nil
	}

	constraint, err := parseConstraint(cmd, args, elemType)
	if err != nil {
		return err
	}
	return runPass(ctx, session, constraint)
}

// parseConstraint maps a command line like "= 42" or "inc 5" to a constraint
func parseConstraint(cmd string, args []string, t scan.ElementType) (scan.Constraint, error) {
	needValue := func() (scan.Scalar, error) {
		if len(args) != 1 {
			return scan.Scalar{}, fmt.Errorf("%s needs a value", cmd)
		}
		return scan.ParseScalar(args[0], t)
	}

	switch cmd {
	case "=", "==", "eq":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.Equal(v), nil
	case "!=", "ne":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.NotEqual(v), nil
	case ">", "gt":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.GreaterThan(v), nil
	case ">=", "ge":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.GreaterThanOrEqual(v), nil
	case "<", "lt":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.LessThan(v), nil
	case "<=", "le":
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.LessThanOrEqual(v), nil
	case "changed":
		return scan.Changed(), nil
	case "unchanged":
		return scan.Unchanged(), nil
	case "inc", "increased":
		if len(args) == 0 {
			return scan.Increased(), nil
		}
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.IncreasedBy(v), nil
	case "dec", "decreased":
		if len(args) == 0 {
			return scan.Decreased(), nil
		}
		v, err := needValue()
		if err != nil {
			return scan.Constraint{}, err
		}
		return scan.DecreasedBy(v), nil
	}

	return scan.Constraint{}, fmt.Errorf("unknown command %q (try 'help')", cmd)
}

// runPass starts an async pass with the given constraint merged in, shows
// progress while it runs, and prints the survivor count
func runPass(ctx context.Context, session *scan.Session, constraint scan.Constraint) error {
	// Ctrl-C cancels the running pass instead of killing the program
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := session.StartPass(ctx, constraint)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-task.Done():
			fmt.Print("\r\033[K")
			snapshot, err := task.Result()
			if err != nil {
				return err
			}
			elemType := session.Constraints().ElementType()
			fmt.Printf("pass %d [%s]: %d candidates in %d regions\n",
				session.Passes(), constraint, snapshot.ElementCount(elemType), snapshot.RegionCount())
			return nil
		case <-ticker.C:
			fmt.Printf("\rscanning... %3.0f%%", task.Progress()*100)
		}
	}
}

func listSurvivors(session *scan.Session, max int) error {
	current := session.Current()
	if current == nil {
		return fmt.Errorf("no pass has run yet")
	}
	elemType := session.Constraints().ElementType()
	results := current.Results(elemType, max)
	for _, element := range results {
		fmt.Printf("%s  %s\n", element.Address.ToString(), element.Value)
	}
	total := current.ElementCount(elemType)
	if total > len(results) {
		fmt.Printf("... %d more\n", total-len(results))
	}
	return nil
}

func dumpRegions(session *scan.Session, max int) error {
	current := session.Current()
	if current == nil {
		return fmt.Errorf("no pass has run yet")
	}
	for i := range current.Regions {
		if i == max {
			fmt.Printf("... %d more regions\n", len(current.Regions)-max)
			break
		}
		region := &current.Regions[i]
		options := hexdump.DefaultOptions()
		options.BaseAddress = uint64(region.Address)
		fmt.Print(hexdump.Dump(region.Current, options))
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	elemType, err := scan.ParseElementType(flagType)
	if err != nil {
		return err
	}

	snapshot, err := scan.ReadSnapshotFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d regions, %d bytes, %d %s elements, prior values: %v\n",
		args[0], snapshot.RegionCount(), snapshot.ByteSize(),
		snapshot.ElementCount(elemType), elemType, snapshot.HasPrior())

	for _, element := range snapshot.Results(elemType, 20) {
		fmt.Printf("%s  %s\n", element.Address.ToString(), element.Value)
	}
	return nil
}

func printHelp() {
	fmt.Print(`commands:
  = v | != v | > v | >= v | < v | <= v   scan pass comparing against a value
  changed | unchanged                    pass keeping (un)changed values
  inc [v] | dec [v]                      pass keeping in/decreased values,
                                         optionally by exactly v
  list [n]      show surviving addresses and values
  hex           hex dump the first surviving regions
  type <t>      switch element type for future passes
  save <file>   write the current snapshot to a compressed file
  reset         drop the baseline and start over
  quit          exit
`)
}

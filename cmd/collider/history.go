package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/storage"
)

var (
	flagLimit int
	flagRuns  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [a b]",
	Short: "Show recorded contacts",
	Long: `Display contacts recorded by 'collider run' and 'collider watch'.

Without arguments, shows the most recent contact transitions and how often
each pair has touched. With two body names, shows the history of that pair.

Examples:
  collider history
  collider history left right
  collider history --runs`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or two body names, got %d", len(args))
		}
		return nil
	},
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of rows to show")
	historyCmd.Flags().BoolVar(&flagRuns, "runs", false, "List recorded runs instead of contacts")
}

func runHistory(_ *cobra.Command, args []string) {
	// An explicit --db turns storage on; otherwise history needs it enabled
	if !cfg.Storage.Enabled {
		fmt.Fprintln(os.Stderr, "Error: storage is disabled in the config")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening contact database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagRuns:
		err = printRuns(store)
	case len(args) == 2:
		err = printPairHistory(store, args[0], args[1])
	default:
		err = printRecent(store)
	}
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving history: %v\n", err)
		os.Exit(1)
	}
}

func printRuns(store *storage.Store) error {
	runs, err := store.Runs(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Runs")
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("  %-5s  %-24s  %-8s  %-16s  %-16s  %s\n", "ID", "Scene", "Mode", "Started", "Ended", "Events")
	fmt.Printf("  %-5s  %-24s  %-8s  %-16s  %-16s  %s\n", "--", "-----", "----", "-------", "-----", "------")
	for _, r := range runs {
		mode := "sync"
		if r.Threaded {
			mode = "threaded"
		}
		ended := "running"
		if !r.EndedAt.IsZero() {
			ended = r.EndedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("  %-5d  %-24s  %-8s  %-16s  %-16s  %d\n",
			r.ID, r.Scene, mode, r.StartedAt.Local().Format("2006-01-02 15:04"), ended, r.Events)
	}
	return nil
}

func printPairHistory(store *storage.Store, a, b string) error {
	records, err := store.PairHistory(a, b, flagLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Contacts - %s / %s\n", a, b)
	fmt.Println()
	if len(records) == 0 {
		fmt.Println("These bodies have never touched.")
		return nil
	}

	printRecords(records)
	return nil
}

func printRecent(store *storage.Store) error {
	records, err := store.RecentEvents(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Recent contacts")
	fmt.Println()
	if len(records) == 0 {
		fmt.Println("No contacts recorded yet.")
		fmt.Println()
		fmt.Println("Run 'collider run <scene>' to record some.")
		return nil
	}
	printRecords(records)

	counts, err := store.ContactCounts()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Most frequent pairs")
	fmt.Println()
	fmt.Printf("  %-32s  %-8s  %s\n", "Pair", "Contacts", "Last seen")
	fmt.Printf("  %-32s  %-8s  %s\n", "----", "--------", "---------")
	for i, c := range counts {
		if i == flagLimit {
			break
		}
		fmt.Printf("  %-32s  %-8d  %s\n",
			c.BodyA+" / "+c.BodyB, c.Contacts, c.LastSeen.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printRecords(records []storage.ContactRecord) {
	fmt.Printf("  %-4s  %-8s  %-32s  %-5s  %s\n", "Run", "Cycle", "Pair", "Kind", "Time")
	fmt.Printf("  %-4s  %-8s  %-32s  %-5s  %s\n", "---", "-----", "----", "----", "----")
	for _, r := range records {
		fmt.Printf("  %-4d  %-8d  %-32s  %-5s  %s\n",
			r.RunID, r.Cycle, r.BodyA+" / "+r.BodyB, r.Kind, r.At.Local().Format("2006-01-02 15:04:05.000"))
	}
}

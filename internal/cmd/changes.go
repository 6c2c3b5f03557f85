// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lirios/ugit/internal/diff"
	"github.com/lirios/ugit/internal/history"
	"github.com/lirios/ugit/internal/logger"
)

// Add command
func addCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage files and directories in the index",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if err := history.Add(r, args); err != nil {
				logger.Fatalf("Failed to stage: %v", err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Commit command
func commitCmd() *cobra.Command {
	var (
		message string
		verbose bool
	)

	var cmd = &cobra.Command{
		Use:   "commit",
		Short: "Record the working tree as a new commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			// Validate arguments
			if len(message) == 0 {
				logger.Fatal("Commit message is mandatory")
				return
			}

			r := openRepo()

			oid, err := history.WriteCommit(r, message)
			if err != nil {
				logger.Fatalf("Failed to commit: %v", err)
				return
			}

			fmt.Println(oid)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "the commit message")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Diff command
func diffCmd() *cobra.Command {
	var (
		cached  bool
		verbose bool
	)

	var cmd = &cobra.Command{
		Use:   "diff [--cached] [<commit>]",
		Short: "Show changes between a commit and the working tree or the index",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			name := "@"
			if len(args) > 0 {
				name = args[0]
			}

			commit, err := history.GetCommit(r, resolveName(r, name))
			if err != nil {
				logger.Fatalf("Failed to read commit: %v", err)
				return
			}

			tree, err := history.GetTree(r, commit.Tree, "")
			if err != nil {
				logger.Fatalf("Failed to read tree: %v", err)
				return
			}

			var to map[string]string
			if cached {
				to, err = r.ReadIndex()
				if err != nil {
					logger.Fatalf("Failed to read index: %v", err)
					return
				}
			} else {
				to, err = history.SnapshotWorkingTree(r)
				if err != nil {
					logger.Fatalf("Failed to snapshot working tree: %v", err)
					return
				}
			}

			output, err := diff.Trees(r, tree, to)
			if err != nil {
				logger.Fatalf("Failed to diff trees: %v", err)
				return
			}

			os.Stdout.Write(output)
		},
	}

	cmd.Flags().BoolVarP(&cached, "cached", "", false, "compare against the index instead of the working tree")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Merge command
func mergeCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "merge <name>",
		Short: "Merge another commit into HEAD",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			result, err := history.Merge(r, resolveName(r, args[0]))
			if err != nil {
				logger.Fatalf("Failed to merge: %v", err)
				return
			}

			if result.FastForward {
				logger.Info("Fast-forward merge, no need to commit")
				return
			}

			for _, path := range result.Conflicts {
				logger.Infof("Conflict in %s", path)
			}
			logger.Info("Merged in working tree, please commit")
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Merge base command
func mergeBaseCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "merge-base <a> <b>",
		Short: "Find a common ancestor of two commits",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			base, err := history.MergeBase(r, resolveName(r, args[0]), resolveName(r, args[1]))
			if err != nil {
				logger.Fatalf("Failed to find merge base: %v", err)
				return
			}
			if base == "" {
				logger.Fatal("No common ancestor")
				return
			}

			fmt.Println(base)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lirios/ugit/internal/diff"
	"github.com/lirios/ugit/internal/history"
	"github.com/lirios/ugit/internal/logger"
)

func printCommit(oid string, commit history.Commit, refs []string) {
	decoration := ""
	if len(refs) > 0 {
		decoration = color.YellowString(" (%s)", strings.Join(refs, ", "))
	}

	fmt.Printf("commit %s%s\n\n", oid, decoration)
	for _, line := range strings.Split(commit.Message, "\n") {
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()
}

// Log command
func logCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "log [<name>]",
		Short: "Display commit logs",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			name := "@"
			if len(args) > 0 {
				name = args[0]
			}

			// Decorate commits with the refs pointing at them
			refs, err := r.ListRefs("", true)
			if err != nil {
				logger.Fatalf("Failed to list refs: %v", err)
				return
			}
			decorations := map[string][]string{}
			for _, ref := range refs {
				decorations[ref.Ref.Value] = append(decorations[ref.Ref.Value], ref.Name)
			}

			commits, err := history.CommitsAndParents(r, []string{resolveName(r, name)})
			if err != nil {
				logger.Fatalf("Failed to walk history: %v", err)
				return
			}

			for _, oid := range commits {
				commit, err := history.GetCommit(r, oid)
				if err != nil {
					logger.Fatalf("Failed to read commit %s: %v", oid, err)
					return
				}
				printCommit(oid, commit, decorations[oid])
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Checkout command
func checkoutCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "checkout <name>",
		Short: "Restore the working tree from a commit and move HEAD to it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if err := history.Checkout(r, args[0]); err != nil {
				logger.Fatalf("Failed to checkout %s: %v", args[0], err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Tag command
func tagCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "tag <name> [<oid>]",
		Short: "Create a tag pointing at a commit",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			name := "@"
			if len(args) > 1 {
				name = args[1]
			}

			if err := history.CreateTag(r, args[0], resolveName(r, name)); err != nil {
				logger.Fatalf("Failed to create tag: %v", err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Branch command
func branchCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "branch [<name> [<start>]]",
		Short: "List branches or create a new one",
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if len(args) == 0 {
				current, err := history.CurrentBranch(r)
				if err != nil {
					logger.Fatalf("Failed to read HEAD: %v", err)
					return
				}

				names, err := history.BranchNames(r)
				if err != nil {
					logger.Fatalf("Failed to list branches: %v", err)
					return
				}

				for _, name := range names {
					if name == current {
						fmt.Printf("* %s\n", color.GreenString(name))
					} else {
						fmt.Printf("  %s\n", name)
					}
				}
				return
			}

			start := "@"
			if len(args) > 1 {
				start = args[1]
			}

			oid := resolveName(r, start)
			if err := history.CreateBranch(r, args[0], oid); err != nil {
				logger.Fatalf("Failed to create branch: %v", err)
				return
			}

			logger.Infof("Branch %s created at %s", args[0], oid[:10])
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Status command
func statusCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			branch, err := history.CurrentBranch(r)
			if err != nil {
				logger.Fatalf("Failed to read HEAD: %v", err)
				return
			}

			head, err := r.GetRef("HEAD", true)
			if err != nil {
				logger.Fatalf("Failed to read HEAD: %v", err)
				return
			}

			if branch != "" {
				fmt.Printf("On branch %s\n", color.GreenString(branch))
			} else {
				fmt.Printf("HEAD detached at %s\n", head.Value)
			}

			mergeHead, err := r.GetRef("MERGE_HEAD", true)
			if err != nil {
				logger.Fatalf("Failed to read MERGE_HEAD: %v", err)
				return
			}
			if mergeHead.Value != "" {
				fmt.Printf("Merging with %s\n", mergeHead.Value[:10])
			}

			headTree := map[string]string{}
			if head.Value != "" {
				commit, err := history.GetCommit(r, head.Value)
				if err != nil {
					logger.Fatalf("Failed to read commit: %v", err)
					return
				}
				headTree, err = history.GetTree(r, commit.Tree, "")
				if err != nil {
					logger.Fatalf("Failed to read tree: %v", err)
					return
				}
			}

			workingTree, err := history.GetWorkingTree(r)
			if err != nil {
				logger.Fatalf("Failed to snapshot working tree: %v", err)
				return
			}

			fmt.Printf("\nChanges to be committed:\n\n")
			for _, change := range diff.ChangedFiles(headTree, workingTree) {
				fmt.Printf("%12s: %s\n", change.Action, change.Path)
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Reset command
func resetCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move HEAD to the given commit",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			oid := resolveName(r, args[0])
			if err := history.Reset(r, oid); err != nil {
				logger.Fatalf("Failed to reset: %v", err)
				return
			}

			logger.Infof("HEAD reset to %s", oid[:10])
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Show command
func showCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "show [<oid>]",
		Short: "Show a commit and the changes it introduced",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			name := "@"
			if len(args) > 0 {
				name = args[0]
			}

			oid := resolveName(r, name)
			commit, err := history.GetCommit(r, oid)
			if err != nil {
				logger.Fatalf("Failed to read commit: %v", err)
				return
			}

			printCommit(oid, commit, nil)

			parentTree := map[string]string{}
			if len(commit.Parents) > 0 {
				parent, err := history.GetCommit(r, commit.Parents[0])
				if err != nil {
					logger.Fatalf("Failed to read parent commit: %v", err)
					return
				}
				parentTree, err = history.GetTree(r, parent.Tree, "")
				if err != nil {
					logger.Fatalf("Failed to read tree: %v", err)
					return
				}
			}

			tree, err := history.GetTree(r, commit.Tree, "")
			if err != nil {
				logger.Fatalf("Failed to read tree: %v", err)
				return
			}

			output, err := diff.Trees(r, parentTree, tree)
			if err != nil {
				logger.Fatalf("Failed to diff trees: %v", err)
				return
			}

			os.Stdout.Write(output)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Graph command
func kCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "k",
		Short: "Print the ref and commit graph as Graphviz DOT",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			var dot strings.Builder
			dot.WriteString("digraph commits {\n")

			refs, err := r.ListRefs("", false)
			if err != nil {
				logger.Fatalf("Failed to list refs: %v", err)
				return
			}

			var seeds []string
			for _, ref := range refs {
				fmt.Fprintf(&dot, "\"%s\" [shape=box];\n", ref.Name)
				fmt.Fprintf(&dot, "\"%s\" -> \"%s\";\n", ref.Name, ref.Ref.Value)
				if !ref.Ref.Symbolic {
					seeds = append(seeds, ref.Ref.Value)
				}
			}

			commits, err := history.CommitsAndParents(r, seeds)
			if err != nil {
				logger.Fatalf("Failed to walk history: %v", err)
				return
			}

			for _, oid := range commits {
				commit, err := history.GetCommit(r, oid)
				if err != nil {
					logger.Fatalf("Failed to read commit %s: %v", oid, err)
					return
				}
				fmt.Fprintf(&dot, "\"%s\" [shape=oval style=filled label=\"%s\"];\n", oid, oid[:10])
				for _, parent := range commit.Parents {
					fmt.Fprintf(&dot, "\"%s\" -> \"%s\";\n", oid, parent)
				}
			}

			dot.WriteString("}\n")
			fmt.Print(dot.String())
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

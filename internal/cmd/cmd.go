// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lirios/ugit/internal/history"
	"github.com/lirios/ugit/internal/logger"
	"github.com/lirios/ugit/internal/repo"
)

// openRepo opens the repository in the current directory
func openRepo() *repo.Repo {
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("Cannot determine current directory: %v", err)
	}

	r, err := repo.Open(cwd)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	return r
}

// resolveName resolves a user-supplied name to an object ID
func resolveName(r *repo.Repo, name string) string {
	oid, err := history.ResolveName(r, name)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	return oid
}

// Init command
func initCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			cwd, err := os.Getwd()
			if err != nil {
				logger.Fatalf("Cannot determine current directory: %v", err)
				return
			}

			if _, err := history.Init(cwd); err != nil {
				logger.Fatalf("Failed to initialize repository: %v", err)
				return
			}

			logger.Infof("Initialized empty ugit repository in %s/%s", cwd, repo.DirName)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Hash object command
func hashObjectCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute object ID and create a blob from a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			data, err := os.ReadFile(args[0])
			if err != nil {
				logger.Fatalf("Cannot read file: %v", err)
				return
			}

			oid, err := r.HashObject(data, repo.KindBlob)
			if err != nil {
				logger.Fatalf("Failed to store object: %v", err)
				return
			}

			fmt.Println(oid)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Cat file command
func catFileCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Provide content of repository objects",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			payload, err := r.GetObject(resolveName(r, args[0]), "")
			if err != nil {
				logger.Fatalf("Failed to read object: %v", err)
				return
			}

			os.Stdout.Write(payload)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Write tree command
func writeTreeCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "write-tree",
		Short: "Write the working tree as a tree object",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			oid, err := history.WriteTree(r)
			if err != nil {
				logger.Fatalf("Failed to write tree: %v", err)
				return
			}

			fmt.Println(oid)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Read tree command
func readTreeCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "read-tree <tree>",
		Short: "Read a tree object into the working tree",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if err := history.ReadTree(r, resolveName(r, args[0])); err != nil {
				logger.Fatalf("Failed to read tree: %v", err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Execute executes the root command.
func Execute() error {
	// Root command
	var rootCmd = &cobra.Command{
		Use:   "ugit",
		Short: "A minimal content-addressed version control system",
	}

	rootCmd.AddCommand(
		initCmd(),
		hashObjectCmd(),
		catFileCmd(),
		writeTreeCmd(),
		readTreeCmd(),
		addCmd(),
		commitCmd(),
		logCmd(),
		checkoutCmd(),
		tagCmd(),
		branchCmd(),
		statusCmd(),
		resetCmd(),
		showCmd(),
		diffCmd(),
		mergeCmd(),
		mergeBaseCmd(),
		fetchCmd(),
		pushCmd(),
		kCmd(),
	)

	return rootCmd.Execute()
}

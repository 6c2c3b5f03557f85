// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lirios/ugit/internal/logger"
	"github.com/lirios/ugit/internal/remote"
)

// Fetch command
func fetchCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "fetch <path>",
		Short: "Fetch objects and branches from another repository",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if err := remote.Fetch(r, args[0]); err != nil {
				logger.Fatalf("Failed to fetch from %s: %v", args[0], err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

// Push command
func pushCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "push <path> <branch>",
		Short: "Push a branch to another repository",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			// Toggle debug output
			logger.SetVerbose(verbose)

			r := openRepo()

			if err := remote.Push(r, args[0], "refs/heads/"+args[1]); err != nil {
				logger.Fatalf("Failed to push to %s: %v", args[0], err)
				return
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "more messages during the operation")

	return cmd
}

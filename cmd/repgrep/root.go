// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newRootCmd builds the single repgrep command.
func newRootCmd(a *app) *cobra.Command {
	args := &Args{}

	cmd := &cobra.Command{
		Use:   "repgrep [flags] PATTERN [PATH...]",
		Short: "Interactively review ripgrep matches and replace them in place",
		Long: `repgrep runs ripgrep, lets you walk the matches and pick which ones to
replace, then rewrites the selected byte ranges in each file.

With no arguments it reads ripgrep --json output from stdin instead:

	rg --json foo | repgrep`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(args.Debug)
		},
		RunE: func(cmd *cobra.Command, positional []string) error {
			if err := args.Resolve(cmd.Flags(), positional); err != nil {
				return err
			}
			return a.run(cmd.Context(), args)
		},
	}

	args.addFlags(cmd.Flags())
	return cmd
}

// setupLogging configures zerolog based on flags. The review screen shares
// the terminal with stderr, so only warnings show without --debug.
func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func execute(ctx context.Context, a *app, argv []string) error {
	if argv == nil {
		argv = []string{}
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(argv)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd.ExecuteContext(ctx)
}

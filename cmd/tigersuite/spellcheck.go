// Copyright (c) 2024 TigerDB Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

// NewSpellcheckCommand 创建spellcheck命令
func NewSpellcheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "spellcheck <container> <text>...",
		Short:        "Classify query text against a container's index",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			cfg.Spellcheck.Enabled = true
			a, err := newApp(cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.engine.Spellcheck(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

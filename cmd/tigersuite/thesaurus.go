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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lscgzwd/tigersuite/thesaurus/store"
)

// NewThesaurusCommand 创建thesaurus命令组
func NewThesaurusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thesaurus",
		Short: "Manage the synonym dictionary",
	}
	cmd.AddCommand(newThesaurusImportCommand(rootOpts))
	return cmd
}

func newThesaurusImportCommand(rootOpts *RootOptions) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "import <thesaurus.yaml>...",
		Short: "Import synonym groups and expansions into the bbolt dictionary",
		Long: `Import YAML thesaurus files into the bbolt dictionary.

  synonyms:
    - store_id: 1
      terms: [tee, t-shirt]
  expansions:
    - store_id: 1
      reference: shoes
      terms: [sneakers, boots]`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				cfg, err := loadRawConfig(rootOpts)
				if err != nil {
					return err
				}
				if cfg.Thesaurus != nil {
					storePath = cfg.Thesaurus.StorePath
				}
			}
			if storePath == "" {
				return fmt.Errorf("no thesaurus store configured, use --store or thesaurus.store_path")
			}
			total, err := importThesaurus(storePath, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", total, storePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "bbolt dictionary path (overrides thesaurus.store_path)")
	return cmd
}

// importThesaurus 把文件依次导入bbolt词典，返回导入的条目总数
func importThesaurus(storePath string, files []string) (int, error) {
	db, err := store.OpenBolt(storePath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	total := 0
	for _, file := range files {
		f, err := store.LoadFile(file)
		if err != nil {
			return total, err
		}
		n, err := f.Apply(db)
		total += n
		if err != nil {
			return total, fmt.Errorf("%s: %w", file, err)
		}
	}
	return total, nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/romshark/todosim/domain"
	"github.com/romshark/todosim/storage"

	"github.com/spf13/cobra"
)

func dumpCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the persisted state as indented JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			blob, err := storage.OpenBolt(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := blob.Close(); err != nil {
					slog.Error("closing database", slog.Any("err", err))
				}
			}()

			data, err := blob.Load(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Println("[]")
				return nil
			}
			if err != nil {
				return err
			}

			var lists []domain.TodoList
			if err := json.Unmarshal(data, &lists); err != nil {
				return fmt.Errorf("persisted state malformed: %w", err)
			}
			out, err := json.MarshalIndent(lists, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "todosim.db",
		"path to the bbolt database file")
	return cmd
}

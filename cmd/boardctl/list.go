package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vectorboard/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the documents stored by the desktop app",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		db, err := storage.New(cfg.DBPath(), cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		docs, err := storage.NewDocumentStore(db).ListDocuments()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents.")
			return nil
		}
		for _, d := range docs {
			cyan.Printf("%s  ", d.ID)
			fmt.Printf("%-30s %s\n", d.Name, d.UpdatedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roadmapper/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and manage saved planning sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewSQLiteStore(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		ids, err := st.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}
		for _, id := range ids {
			s, err := st.Load(id)
			if err != nil {
				fmt.Printf("%s  (unreadable: %v)\n", id, err)
				continue
			}
			title := "untitled"
			if s.Roadmap != nil && s.Roadmap.Specification.Title != "" {
				title = s.Roadmap.Specification.Title
			}
			fmt.Printf("%s  phase=%s  messages=%d  %s\n", s.ID, s.Phase, len(s.Messages), title)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewSQLiteStore(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

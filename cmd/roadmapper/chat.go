package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"roadmapper/internal/agent"
	"roadmapper/internal/logging"
	"roadmapper/internal/provider"
	"roadmapper/internal/store"
	"roadmapper/internal/tools"
	"roadmapper/internal/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Start or resume an interactive planning conversation",
	Long: `Starts the interactive chat. With a session id argument, resumes that
session; otherwise a new session is created.

In-chat commands:
  /chat     switch to plain chat mode (default)
  /edit     switch to node editing mode
  /expand   switch to roadmap expansion mode
  /roadmap  print the current roadmap
  /quit     save and exit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return runChat(cmd.Context(), id)
	},
}

// buildEngine wires the provider client, tool catalog, and engine from
// the loaded config.
func buildEngine() (*agent.Engine, error) {
	client, err := provider.New(cfg.ProviderClientConfig())
	if err != nil {
		return nil, err
	}
	logging.Get(logging.CategoryCLI).Debugf("provider ready: %s (%s)", cfg.Provider.Provider, client.Model())
	return agent.New(client, tools.Catalog(), cfg.Conversation.WindowSize)
}

func runChat(ctx context.Context, sessionID string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	var session *types.Session
	if sessionID != "" {
		session, err = st.Load(sessionID)
		if err != nil {
			return err
		}
		fmt.Printf("Resumed session %s (%d messages)\n", session.ID, len(session.Messages))
	} else {
		session = types.NewSession(uuid.NewString())
		fmt.Printf("Started session %s\n", session.ID)
	}

	fmt.Println("Describe the project you want to plan. /quit to exit.")

	intent := types.IntentChat
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Printf("[%s] > ", intent)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, next := handleSlashCommand(line, intent, session)
			intent = next
			if done {
				break
			}
			continue
		}

		reply, hint, err := engine.HandleTurn(ctx, session, line, intent)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(reply)
		if hint != "" {
			fmt.Printf("\n(action available: %s)\n", hint)
		}
		fmt.Println()

		if err := st.Save(session); err != nil {
			return err
		}
	}

	return st.Save(session)
}

// handleSlashCommand processes an in-chat command. It returns whether
// the loop should exit and the intent for subsequent turns.
func handleSlashCommand(line string, intent types.Intent, session *types.Session) (bool, types.Intent) {
	switch line {
	case "/quit", "/exit":
		fmt.Println("Session saved. Bye.")
		return true, intent
	case "/chat":
		fmt.Println("Switched to chat mode.")
		return false, types.IntentChat
	case "/edit":
		fmt.Println("Switched to editing mode. Tell me which node to change.")
		return false, types.IntentEdit
	case "/expand":
		fmt.Println("Switched to expansion mode. Tell me what to add.")
		return false, types.IntentExpand
	case "/roadmap":
		printRoadmap(session)
		return false, intent
	default:
		fmt.Printf("Unknown command %s. Available: /chat /edit /expand /roadmap /quit\n", line)
		return false, intent
	}
}

func printRoadmap(session *types.Session) {
	r := session.Roadmap
	if r == nil {
		fmt.Println("No roadmap yet. Keep answering questions to build one.")
		return
	}

	fmt.Printf("\n%s - %.1f hours over %d weeks\n", r.Specification.Title, r.TotalHours, r.TotalWeeks)
	for i := range r.Milestones {
		m := &r.Milestones[i]
		fmt.Printf("\n[%s] %s (%.1fh, %s)\n", m.ID, m.Title, m.EstimatedHours, m.Status)
		if len(m.Dependencies) > 0 {
			fmt.Printf("  depends on: %s\n", strings.Join(m.Dependencies, ", "))
		}
		for _, st := range m.Subtasks {
			mark := " "
			if st.Completed {
				mark = "x"
			}
			fmt.Printf("  [%s] %s (%.1fh)\n", mark, st.Title, st.EstimatedHours)
		}
	}
	fmt.Println()
}

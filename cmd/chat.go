package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephgoksu/TaskTalk/internal/auth"
	"github.com/josephgoksu/TaskTalk/internal/chat"
	"github.com/josephgoksu/TaskTalk/internal/ui"
	"github.com/josephgoksu/TaskTalk/llm"
	"github.com/spf13/cobra"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant about your tasks",
	Long: `Chat opens an interactive conversation with the assistant. Describe what
you want in plain language ("add buy milk and call mom", "mark 5 done")
and the assistant updates your todo list as it replies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := GetConfig()
		logger := NewLogger()

		todoStore, err := GetStore(logger)
		if err != nil {
			return err
		}
		defer func() { _ = todoStore.Close() }()

		provider, err := llm.NewProvider(ctx, config.LLM)
		if err != nil {
			return fmt.Errorf("failed to create completion provider: %w", err)
		}

		identity := auth.NewStatic(config.Auth.UserID)
		userID, ok := identity.Current()
		if !ok {
			return fmt.Errorf("no user is signed in; set auth.userId in config")
		}

		session := chat.NewSession(userID, todoStore, provider, logger)
		session.SetTemplatesDir(filepath.Join(config.Project.RootDir, config.Project.TemplatesDir))

		unsubscribe := identity.OnChange(func(_ string, signedIn bool) {
			if !signedIn {
				session.SignOut()
			}
		})
		defer unsubscribe()

		if chatPlain {
			return runPlainChat(ctx, session)
		}

		p := tea.NewProgram(ui.NewChatModel(ctx, session), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

// runPlainChat is a line-oriented fallback for terminals where the full
// screen UI is unwanted, e.g. when piping a scripted conversation.
func runPlainChat(ctx context.Context, session *chat.Session) error {
	if err := session.Start(ctx); err != nil {
		fmt.Println(chat.FetchApologyText)
		return err
	}
	fmt.Println(chat.WelcomeText)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			break
		}
		if text == "/tasks" {
			for _, t := range session.Tasks() {
				status := "pending"
				if t.Completed {
					status = "completed"
				}
				fmt.Printf("  %s: %s (%s)\n", t.ID, t.Description, status)
			}
			continue
		}

		reply, err := session.Send(ctx, text)
		if err != nil {
			fmt.Println("!", err)
			continue
		}
		fmt.Println(reply.Content)
	}
	return scanner.Err()
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use a plain line-based prompt instead of the full-screen UI")
	rootCmd.AddCommand(chatCmd)
}

package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/greenroom-app/greenroom/internal/chat"
	"github.com/greenroom-app/greenroom/internal/chatui"
	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/db"
	"github.com/greenroom-app/greenroom/internal/logging"
	"github.com/greenroom-app/greenroom/internal/service"
	"github.com/greenroom-app/greenroom/internal/types"
)

// NewChatCmd opens a conversation view.
func NewChatCmd() *cobra.Command {
	var local bool
	var dataDir string

	cmd := &cobra.Command{
		Use:   "chat <conversation-id>",
		Short: "Open a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args[0], local, dataDir)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "use the local file backend instead of the hosted API")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override the local data directory")
	return cmd
}

func runChat(cmd *cobra.Command, conversationID string, local bool, dataDir string) error {
	config, err := core.ReadConfig()
	if err != nil {
		return err
	}
	if config == nil {
		return fmt.Errorf("no config found; run `%s init` first", AppName)
	}

	level := config.LogLevel
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}

	if dataDir == "" {
		dataDir = config.DataDir
	}
	if dataDir == "" {
		if dataDir, err = core.DefaultDataDir(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The console writer would scribble over the alt screen; log to a
	// file while the view is up.
	logFile, err := os.OpenFile(filepath.Join(dataDir, "greenroom.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Init(level, logFile)

	conn, err := db.Open(filepath.Join(dataDir, "greenroom.db"))
	if err != nil {
		return err
	}
	defer conn.Close()
	localStore := db.NewStore(conn)

	var svc service.Service
	if local {
		backend, err := service.NewLocal(filepath.Join(dataDir, "conversations"), config.UserID, config.DisplayName)
		if err != nil {
			return err
		}
		defer backend.Close()
		svc = backend
	} else {
		if config.BackendURL == "" {
			return fmt.Errorf("config has no backend url; pass --local or re-run `%s init --backend`", AppName)
		}
		client, err := service.NewClient(config.BackendURL, config.Token)
		if err != nil {
			return err
		}
		svc = client
	}

	active := chat.NewActiveConversation()
	session := chat.NewSession(svc, active, localStore, chat.SessionConfig{
		ConversationID: conversationID,
		SelfID:         config.UserID,
		SelfName:       config.DisplayName,
		Logger:         logging.Logger,
	})
	notifier := chat.NewNotifier(active, localStore, config.UserID)
	session.SetIncomingHandler(func(msg types.Message) {
		if _, err := notifier.HandleIncoming(msg); err != nil {
			logging.Logger.Debug().Err(err).Msg("notification failed")
		}
	})

	return chatui.Run(session, chatui.Config{
		ConversationID: conversationID,
		SelfID:         config.UserID,
	})
}

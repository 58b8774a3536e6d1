package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/telegram"
	"quantum-chat/internal/tui"
)

// execute runs the CLI and flushes the logger whether or not the command
// succeeded.
func execute(args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{}
	defer a.close()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "quantumchat",
		Short: "Quantum X Chat 🔬🧠",
		Long: `Quantum X Chat talks to the Quantum X service.

Run without arguments to start the interactive terminal interface.
Conversations are saved as JSON files in CONVERSATIONS_DIR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, a)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newBotCmd(a),
		newAskCmd(a),
		newExecCmd(a),
		newConversationsCmd(a),
		newShowCmd(a),
	)
	return root
}

func runInteractive(cmd *cobra.Command, a *app) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	return tui.Run(ctx, tui.Options{
		Remote:     a.remote(),
		Store:      store,
		State:      a.newSession(),
		Theme:      a.cfg.Theme,
		Logger:     a.log,
		InitialKey: a.cfg.APIKey,
	})
}

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Serve the chat over Telegram for the owner chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateBot(); err != nil {
				return err
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			bot, err := telegram.New(a.cfg.TelegramBotToken, a.remote(), store, a.newSession(), a.cfg.OwnerChatID, a.cfg.MessageParseMode, a.log.Named("telegram"))
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			bot.Start(ctx)
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	var key string
	var save bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			orc := chat.New(a.remote(), store, newPrinter(cmd.OutOrStdout()), a.log)
			st := a.keyedSession(orc, key)
			orc.Submit(cmd.Context(), st, strings.Join(args, " "))
			if save {
				_, err = orc.Save(st)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (defaults to QUANTUM_API_KEY)")
	cmd.Flags().BoolVar(&save, "save", false, "save the exchange as a conversation file")
	return cmd
}

func newExecCmd(a *app) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "exec [file|-]",
		Short: "Execute a quantum script and print the JSON result",
		Long:  "Reads the script from the given file, or from stdin when the argument is '-' or missing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := readScript(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			orc := chat.New(a.remote(), store, newPrinter(cmd.OutOrStdout()), a.log)
			if res := orc.Execute(cmd.Context(), a.keyedSession(orc, key), script); !res.OK() {
				return errors.New("script execution failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (defaults to QUANTUM_API_KEY)")
	return cmd
}

func readScript(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read script from stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

func newConversationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List saved conversation files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No saved conversations.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			orc := chat.New(nil, store, p, a.log)
			return orc.Load(a.newSession(), args[0])
		},
	}
}

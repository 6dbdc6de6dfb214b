package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"mealplan/config"
	"mealplan/model"
	"mealplan/storage"
)

const latestArg = "latest"

// newRootCmd builds the command tree. The returned func closes whatever
// the command opened and is safe to call when nothing was opened.
func newRootCmd() (*cobra.Command, func() error) {
	var a *app
	closeApp := func() error {
		if a == nil {
			return nil
		}
		return a.Close()
	}

	root := &cobra.Command{
		Use:   "mealplan",
		Short: "Plan meals with a tool-calling language model",
		Long: `mealplan asks a language model for a grocery list and three meal ideas.
The model can look at notes left on earlier plans and your recent requests
before answering. Every session is stored and can be rewound or annotated.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.OutOrStdout(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			a.model, err = cmd.Flags().GetString("model")
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// --rewind/--note/--final mirror the subcommands
			for _, mode := range []string{"rewind", "note", "final"} {
				if f := cmd.Flags().Lookup(mode); f != nil && f.Changed {
					idArg := f.Value.String()
					// "--rewind 5" leaves the id as a positional argument
					if idArg == latestArg && len(args) == 1 {
						idArg = args[0]
					}
					return runMode(cmd, a, mode, idArg)
				}
			}
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runSession(cmd, a, nil)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringP("model", "m", "", "model to use for this run instead of the configured one")

	for _, mode := range []struct{ name, short, usage string }{
		{"rewind", "r", "replay a conversation and continue it as a new one"},
		{"note", "n", "replay a conversation and attach a note to it"},
		{"final", "f", "print the final meal plan of a conversation"},
	} {
		root.Flags().StringP(mode.name, mode.short, "", mode.usage+" (id, default latest)")
		root.Flags().Lookup(mode.name).NoOptDefVal = latestArg
	}
	root.MarkFlagsMutuallyExclusive("rewind", "note", "final")
	root.Flags().Bool("copy", false, "with --final, copy the grocery list to the clipboard")

	appFn := func() *app { return a }
	root.AddCommand(
		newRewindCmd(appFn),
		newNoteCmd(appFn),
		newFinalCmd(appFn),
		newNotesCmd(appFn),
		newHistoryCmd(appFn),
		newSearchCmd(appFn),
		newExportCmd(appFn),
		newKitchenCmd(appFn),
	)

	return root, closeApp
}

func runMode(cmd *cobra.Command, a *app, mode, idArg string) error {
	id, err := parseID([]string{idArg})
	if err != nil {
		return err
	}
	switch mode {
	case "rewind":
		return runRewind(cmd, a, id)
	case "note":
		return runNote(cmd, a, id)
	default:
		copyList, _ := cmd.Flags().GetBool("copy")
		return runFinal(cmd, a, id, copyList)
	}
}

func runSession(cmd *cobra.Command, a *app, history []model.Message) error {
	s, err := a.newSession(cmd.Context(), history)
	if err != nil {
		return err
	}
	_, err = s.Run(cmd.Context())
	return err
}

// replay prints a stored conversation and returns its messages
func replay(cmd *cobra.Command, a *app, id int64) ([]model.Message, error) {
	messages, err := a.store.GetConversation(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	a.printer.Transcript(messages)
	return messages, nil
}

func runRewind(cmd *cobra.Command, a *app, id int64) error {
	messages, err := replay(cmd, a, id)
	if err != nil {
		return err
	}
	return runSession(cmd, a, messages)
}

func runNote(cmd *cobra.Command, a *app, id int64) error {
	if _, err := replay(cmd, a, id); err != nil {
		return err
	}

	note, err := a.ask("Note:")
	if err != nil {
		return err
	}
	likes, err := a.ask("Likes (comma separated):")
	if err != nil {
		return err
	}
	dislikes, err := a.ask("Dislikes (comma separated):")
	if err != nil {
		return err
	}

	annotation := storage.Annotation{
		Note:     note,
		Likes:    splitList(likes),
		Dislikes: splitList(dislikes),
	}
	if annotation.Note == "" && len(annotation.Likes) == 0 && len(annotation.Dislikes) == 0 {
		a.printer.Dim("nothing to save")
		return nil
	}

	if _, err := a.store.InsertAnnotation(cmd.Context(), id, annotation); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	a.printer.Dim("note saved")
	return nil
}

func runFinal(cmd *cobra.Command, a *app, id int64, copyList bool) error {
	msg, err := a.store.FinalMessage(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load final message: %w", err)
	}

	plan, err := model.ParseMealPlan(msg.Content)
	if err != nil {
		return fmt.Errorf("conversation does not end with a meal plan: %w", err)
	}
	a.printer.MealPlan(plan)

	if copyList {
		if err := clipboard.WriteAll(strings.Join(plan.GroceryList, "\n")); err != nil {
			return fmt.Errorf("failed to copy grocery list: %w", err)
		}
		a.printer.Dim("grocery list copied to clipboard")
	}
	return nil
}

func newRewindCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rewind [id]",
		Short: "Replay a conversation and continue it as a new one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			return runRewind(cmd, a(), id)
		},
	}
}

func newNoteCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "note [id]",
		Short: "Replay a conversation and attach a note with likes and dislikes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			return runNote(cmd, a(), id)
		},
	}
}

func newFinalCmd(a func() *app) *cobra.Command {
	var copyList bool
	cmd := &cobra.Command{
		Use:   "final [id]",
		Short: "Print the final meal plan of a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			return runFinal(cmd, a(), id, copyList)
		},
	}
	cmd.Flags().BoolVar(&copyList, "copy", false, "copy the grocery list to the clipboard")
	return cmd
}

func newNotesCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes [n]",
		Short: "Print a random sample of notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 3
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 0 {
					return fmt.Errorf("invalid sample size %q", args[0])
				}
				n = v
			}
			notes, err := a().store.SampleAnnotations(cmd.Context(), n)
			if err != nil {
				return err
			}
			a().printer.Annotations(notes)
			return nil
		},
	}
}

func newHistoryCmd(a func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored conversations, newest first (* = has a note)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a().store.ListConversations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a().printer.Conversations(list)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of conversations to list")
	return cmd
}

func newSearchCmd(a func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search user and assistant messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := a().store.SearchMessages(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			a().printer.Matches(matches)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of matches")
	return cmd
}

func newExportCmd(a func() *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a conversation to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			app := a()
			if id == storage.Latest {
				if id, err = app.store.LatestConversationID(cmd.Context()); err != nil {
					return err
				}
			}

			path := output
			if path == "" {
				path = storage.GenerateExportPath(app.cfg.DataDir(), id)
			}
			path = config.ExpandPath(path)

			n, err := app.store.ExportToJSON(cmd.Context(), id, path)
			if err != nil {
				return err
			}
			app.printer.Println(path)
			app.printer.Dim("exported conversation %d", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <data dir>/exports/...)")
	return cmd
}

func newKitchenCmd(a func() *app) *cobra.Command {
	var pantry, equipment []string
	cmd := &cobra.Command{
		Use:   "kitchen",
		Short: "Show or replace the pantry and equipment lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			pantryChanged := cmd.Flags().Changed("pantry")
			equipmentChanged := cmd.Flags().Changed("equipment")

			if pantryChanged || equipmentChanged {
				userCfg, err := config.LoadUserConfig(app.cfg.DataDir())
				if err != nil {
					return err
				}
				if pantryChanged {
					userCfg.Kitchen.Pantry = pantry
				}
				if equipmentChanged {
					userCfg.Kitchen.Equipment = equipment
				}
				if err := config.SaveUserConfig(userCfg, app.cfg.DataDir()); err != nil {
					return err
				}
				app.cfg.Kitchen = userCfg.Kitchen
			}

			app.printer.Printf("pantry: %s\n", strings.Join(app.cfg.Kitchen.Pantry, ", "))
			app.printer.Printf("equipment: %s\n", strings.Join(app.cfg.Kitchen.Equipment, ", "))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&pantry, "pantry", nil, "pantry items, comma separated")
	cmd.Flags().StringSliceVar(&equipment, "equipment", nil, "cooking equipment, comma separated")
	return cmd
}

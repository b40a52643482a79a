package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/folio/internal/app"
	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/session"
	"github.com/five82/folio/internal/state"
)

var errLoginRequired = errors.New("not logged in; run 'folio login' first")

// cli holds the global flags shared by every command.
type cli struct {
	configPath string
	debug      bool
}

func (c *cli) options() app.Options {
	return app.Options{ConfigPath: c.configPath, Debug: c.debug}
}

// setup builds the shared environment for a subcommand. Callers must Close it.
func (c *cli) setup() (*app.Env, error) {
	return app.Setup(c.options())
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Browse and manage a remote book catalog",
		Long: `folio is a terminal client for a book catalog service.

Run without a subcommand to open the interactive browser. The subcommands
perform single catalog operations and print the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), c.options())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/folio/config.toml)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newListCmd(c),
		newShowCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newDeleteCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newLogsCmd(c),
	)
	return root
}

func newListCmd(c *cli) *cobra.Command {
	var page int
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()

			query := catalog.ListQuery{}
			if mine {
				if !env.Session.Active() {
					return errLoginRequired
				}
				query.Owner = env.Session.User
			}

			records, err := env.Client.List(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("list books: %w", err)
			}

			list := state.NewList(env.Defaults)
			list.Load(records)
			entries, total := state.Slice(list.Entries(), page, env.Config.PageSize)
			env.Logger.Debug("listed books", zap.Int("books", list.Len()), zap.Int("page", page))

			out := cmd.OutOrStdout()
			if list.Len() == 0 {
				fmt.Fprintln(out, "No books yet")
				return nil
			}
			if len(entries) == 0 {
				return fmt.Errorf("page %d out of range (1-%d)", page, total)
			}
			fmt.Fprintln(out, renderBookTable(entries))
			fmt.Fprintf(out, "Page %d/%d  (%d books)\n", page, total, list.Len())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().BoolVar(&mine, "mine", false, "only books owned by the logged-in user")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.Client.Detail(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return fmt.Errorf("book %d not found", id)
				}
				return fmt.Errorf("show book %d: %w", id, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBook(state.Project(rec, env.Defaults)))
			return nil
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var draft catalog.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := draft.Validate(); err != nil {
				return err
			}
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()
			if !env.Session.Active() {
				return errLoginRequired
			}

			rec, err := env.Client.Create(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("create book: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created book #%d %q\n", rec.ID, state.Project(rec, env.Defaults).Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&draft.Author, "author", "", "author name")
	cmd.Flags().StringVar(&draft.Content, "content", "", "description or full text")
	cmd.Flags().StringVar(&draft.CoverImageURL, "cover", "", "cover image URL")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var title, author, content, cover string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a book; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}

			var fields catalog.Update
			flags := cmd.Flags()
			if flags.Changed("title") {
				fields.Title = catalog.String(title)
			}
			if flags.Changed("author") {
				fields.Author = catalog.String(author)
			}
			if flags.Changed("content") {
				fields.Content = catalog.String(content)
			}
			if flags.Changed("cover") {
				fields.CoverImageURL = catalog.String(cover)
			}
			if fields.Empty() {
				return errors.New("nothing to change; pass at least one of --title, --author, --content, --cover")
			}
			if err := fields.Validate(); err != nil {
				return err
			}

			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()
			if !env.Session.Active() {
				return errLoginRequired
			}

			if err := env.Client.Update(cmd.Context(), id, fields); err != nil {
				return fmt.Errorf("update book %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated book #%d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&cover, "cover", "", "new cover image URL")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()
			if !env.Session.Active() {
				return errLoginRequired
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Delete book #%d? This cannot be undone. [y/N] ", id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			if err := env.Client.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete book %d: %w", id, err)
			}
			fmt.Fprintf(out, "Deleted book #%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newLoginCmd(c *cli) *cobra.Command {
	var creds catalog.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and remember the login locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds.Email = strings.TrimSpace(creds.Email)
			if creds.Email == "" {
				return errors.New("--email is required")
			}
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Client.Login(cmd.Context(), creds); err != nil {
				return fmt.Errorf("login: %s", catalog.Message(err))
			}
			sess := session.Login(creds.Email, time.Now())
			if err := session.Save(env.Config.SessionPath, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			env.Logger.Info("logged in", zap.String("user", sess.User))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.User)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := session.Clear(env.Config.SessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newLogsCmd(c *cli) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the folio log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.setup()
			if err != nil {
				return err
			}
			defer env.Close()

			out := cmd.OutOrStdout()
			if env.Config.LogFile == "" {
				fmt.Fprintln(out, "Logging is disabled (log_file is empty)")
				return nil
			}
			tail, err := logging.Tail(env.Config.LogFile, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, renderLogLine(line))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines; 0 prints the whole file")
	return cmd
}

func parseBookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book id %q", raw)
	}
	return id, nil
}

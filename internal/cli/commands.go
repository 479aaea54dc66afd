// Package cli implements the terminal front end: each command loads the saved
// session, calls the API and renders the result as text.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookswap/internal/client"
	"github.com/mrlokans/bookswap/internal/entities"
)

const defaultServer = "http://localhost:8188"

// Command is one CLI subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
	SetOutput(w io.Writer)
}

// Options are shared by every command.
type Options struct {
	Server      string
	SessionPath string
	Out         io.Writer
}

// SetOutput redirects rendered output, which defaults to stdout.
func (o *Options) SetOutput(w io.Writer) {
	o.Out = w
}

func (o *Options) register(fs *flag.FlagSet) {
	server := os.Getenv("BOOKSWAP_SERVER")
	if server == "" {
		server = defaultServer
	}
	fs.StringVar(&o.Server, "server", server, "API base URL (env BOOKSWAP_SERVER)")
	fs.StringVar(&o.SessionPath, "session", client.DefaultSessionPath(), "Session file")
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

func (o *Options) load() (*client.Session, error) {
	return client.LoadSession(o.SessionPath, client.New(o.Server))
}

// loadSignedIn loads the session and refreshes the profile so renderers can
// tell the caller's own messages apart.
func (o *Options) loadSignedIn(ctx context.Context) (*client.Session, error) {
	s, err := o.load()
	if err != nil {
		return nil, err
	}
	if !s.LoggedIn() {
		return nil, fmt.Errorf("%w: run the login command first", client.ErrNotLoggedIn)
	}
	if err := s.RefreshProfile(ctx); err != nil {
		if client.IsUnauthorized(err) {
			return nil, fmt.Errorf("session expired, log in again: %w", err)
		}
		return nil, err
	}
	return s, nil
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s %s [options]\n\n%s\n\nOptions:\n", os.Args[0], name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// New returns the command registered under name.
func New(name string) (Command, bool) {
	switch name {
	case "login":
		return &LoginCommand{}, true
	case "logout":
		return &LogoutCommand{}, true
	case "books":
		return &BooksCommand{}, true
	case "conversations":
		return &ConversationsCommand{}, true
	case "thread":
		return &ThreadCommand{}, true
	case "send":
		return &SendCommand{}, true
	case "transactions":
		return &TransactionsCommand{}, true
	}
	return nil, false
}

type LoginCommand struct {
	Options
	Email    string
	Password string
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := newFlagSet("login", "Sign in and store the token in the session file.")
	cmd.register(fs)
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("BOOKSWAP_PASSWORD"), "Password (env BOOKSWAP_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return errors.New("email and password are required")
	}
	return nil
}

func (cmd *LoginCommand) Run(ctx context.Context) error {
	s, err := cmd.load()
	if err != nil {
		return err
	}
	if err := s.Login(ctx, cmd.Email, cmd.Password); err != nil {
		return err
	}
	if err := s.Save(cmd.SessionPath); err != nil {
		return err
	}
	p := s.Profile()
	_, err = fmt.Fprintf(cmd.Out, "Logged in as %s %s (%s)\n", p.FirstName, p.LastName, p.Email)
	return err
}

type LogoutCommand struct {
	Options
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := newFlagSet("logout", "Revoke the stored token and clear the session file.")
	cmd.register(fs)
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run(ctx context.Context) error {
	s, err := cmd.load()
	if err != nil {
		return err
	}
	if err := s.Logout(ctx); err != nil {
		return err
	}
	if err := s.Save(cmd.SessionPath); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Out, "Logged out")
	return err
}

type BooksCommand struct {
	Options
	filter entities.BookFilter
	reset  bool
	set    bool
}

func (cmd *BooksCommand) ParseFlags(args []string) error {
	fs := newFlagSet("books", "List books. Filters are remembered until changed or -reset is given.")
	cmd.register(fs)
	var condition, status string
	fs.StringVar(&cmd.filter.Title, "title", "", "Title contains")
	fs.StringVar(&cmd.filter.Author, "author", "", "Author contains")
	fs.StringVar(&cmd.filter.Subject, "subject", "", "Subject contains")
	fs.StringVar(&cmd.filter.Faculty, "faculty", "", "Seller faculty")
	fs.StringVar(&cmd.filter.Department, "department", "", "Seller department")
	fs.StringVar(&condition, "condition", "", "good, medium or poor")
	fs.StringVar(&status, "status", "", "available, reserved or sold")
	fs.IntVar(&cmd.filter.Limit, "limit", 0, "Maximum rows")
	fs.BoolVar(&cmd.reset, "reset", false, "Clear the remembered filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.filter.Condition = entities.BookCondition(condition)
	cmd.filter.Status = entities.BookStatus(status)
	cmd.set = fs.NFlag() > countSet(fs, "server", "session")
	return nil
}

// countSet counts how many of names were given on the command line.
func countSet(fs *flag.FlagSet, names ...string) int {
	n := 0
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				n++
			}
		}
	})
	return n
}

func (cmd *BooksCommand) Run(ctx context.Context) error {
	s, err := cmd.load()
	if err != nil {
		return err
	}
	filter := s.Filter()
	if cmd.set || cmd.reset {
		filter = cmd.filter
	}
	if err := s.SetFilter(ctx, filter); err != nil {
		return err
	}
	if err := s.Save(cmd.SessionPath); err != nil {
		return err
	}
	return RenderBooks(cmd.Out, s)
}

type ConversationsCommand struct {
	Options
}

func (cmd *ConversationsCommand) ParseFlags(args []string) error {
	fs := newFlagSet("conversations", "List your conversations, newest first.")
	cmd.register(fs)
	return fs.Parse(args)
}

func (cmd *ConversationsCommand) Run(ctx context.Context) error {
	s, err := cmd.loadSignedIn(ctx)
	if err != nil {
		return err
	}
	if err := s.RefreshConversations(ctx); err != nil {
		return err
	}
	return RenderConversations(cmd.Out, s)
}

type ThreadCommand struct {
	Options
	BookID string
	With   string
}

func (cmd *ThreadCommand) ParseFlags(args []string) error {
	fs := newFlagSet("thread", "Show the messages about a book. Without -book the last thread is reopened.")
	cmd.register(fs)
	fs.StringVar(&cmd.BookID, "book", "", "Book ID")
	fs.StringVar(&cmd.With, "with", "", "Only messages with this user ID")
	return fs.Parse(args)
}

func (cmd *ThreadCommand) Run(ctx context.Context) error {
	s, err := cmd.loadSignedIn(ctx)
	if err != nil {
		return err
	}
	if err := openThread(ctx, s, cmd.BookID, cmd.With); err != nil {
		return err
	}
	if err := s.Save(cmd.SessionPath); err != nil {
		return err
	}
	return RenderThread(cmd.Out, s)
}

// openThread opens bookID, or reopens the saved thread when bookID is empty.
func openThread(ctx context.Context, s *client.Session, bookID, with string) error {
	if bookID == "" {
		saved := s.Thread()
		if saved == nil {
			return client.ErrNoThread
		}
		bookID, with = saved.BookID, saved.OtherUserID
	}
	return s.OpenThread(ctx, bookID, with)
}

type SendCommand struct {
	Options
	BookID  string
	To      string
	Content string
}

func (cmd *SendCommand) ParseFlags(args []string) error {
	fs := newFlagSet("send", "Send a message. Without -book it replies in the last thread.")
	cmd.register(fs)
	fs.StringVar(&cmd.BookID, "book", "", "Book ID")
	fs.StringVar(&cmd.To, "to", "", "Receiver user ID")
	fs.StringVar(&cmd.Content, "m", "", "Message text; remaining arguments are appended")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Content = strings.TrimSpace(strings.Join(append([]string{cmd.Content}, fs.Args()...), " "))
	if cmd.Content == "" {
		fs.Usage()
		return errors.New("message text is required")
	}
	return nil
}

func (cmd *SendCommand) Run(ctx context.Context) error {
	s, err := cmd.loadSignedIn(ctx)
	if err != nil {
		return err
	}
	if err := openThread(ctx, s, cmd.BookID, cmd.To); err != nil {
		return err
	}
	if err := s.Reply(ctx, cmd.Content); err != nil {
		return err
	}
	if err := s.Save(cmd.SessionPath); err != nil {
		return err
	}
	return RenderThread(cmd.Out, s)
}

type TransactionsCommand struct {
	Options
}

func (cmd *TransactionsCommand) ParseFlags(args []string) error {
	fs := newFlagSet("transactions", "List your purchase and exchange requests.")
	cmd.register(fs)
	return fs.Parse(args)
}

func (cmd *TransactionsCommand) Run(ctx context.Context) error {
	s, err := cmd.loadSignedIn(ctx)
	if err != nil {
		return err
	}
	txs, err := s.Client().Transactions(ctx)
	if err != nil {
		return err
	}
	return RenderTransactions(cmd.Out, s.UserID(), txs)
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"lifeops/internal/client"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080"

// errNotSignedIn is returned by pages that need a stored session
var errNotSignedIn = errors.New("please sign in to continue: run `lifeops login`")

type cli struct {
	apiURL      string
	storagePath string

	api  *client.APIClient
	auth *client.AuthStore
	ui   *client.UIStore
	in   *bufio.Reader
	out  io.Writer

	unsubscribe func()
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "lifeops",
		Short:         "LifeOps terminal client",
		Long:          "Welcome to LifeOps\nYour personal life management companion",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	apiURL := os.Getenv("LIFEOPS_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", apiURL, "API base URL (env LIFEOPS_API_URL)")
	root.PersistentFlags().StringVar(&c.storagePath, "storage", "", "auth storage file (default <config dir>/lifeops/auth-storage.json)")

	root.AddCommand(
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.sessionsCmd(),
		c.activityCmd(),
		c.dashboardCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	path := c.storagePath
	if path == "" {
		var err error
		if path, err = client.DefaultStoragePath(); err != nil {
			return err
		}
	}

	c.api = client.NewAPIClient(c.apiURL)
	auth, err := client.NewAuthStore(c.api, path)
	if err != nil {
		return err
	}
	c.auth = auth
	c.out = cmd.OutOrStdout()
	c.in = bufio.NewReader(cmd.InOrStdin())
	c.ui = client.NewUIStore()
	c.unsubscribe = c.ui.Subscribe(newToastPrinter(c.out).render)
	return nil
}

func (c *cli) teardown() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.ui != nil {
		c.ui.ClearToasts()
	}
}

// prompt reads one line for an empty flag value
func (c *cli) prompt(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	fmt.Fprintf(c.out, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireSession loads the current session from the server
func (c *cli) requireSession(cmd *cobra.Command) (*client.SessionData, error) {
	if c.api.Token() == "" {
		return nil, errNotSignedIn
	}
	data, err := c.auth.FetchSession(cmd.Context())
	if err != nil {
		if client.IsStatus(err, fiber.StatusUnauthorized) {
			return nil, errNotSignedIn
		}
		return nil, err
	}
	if data == nil {
		return nil, errNotSignedIn
	}
	return data, nil
}

// apiMessage is the server's message for err, or fallback
func apiMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type toastPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	seen map[string]struct{}
}

func newToastPrinter(w io.Writer) *toastPrinter {
	return &toastPrinter{w: w, seen: make(map[string]struct{})}
}

// render prints toasts that were not visible in the previous state
func (p *toastPrinter) render(state client.UIState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[string]struct{}, len(state.Toasts))
	for _, t := range state.Toasts {
		next[t.ID] = struct{}{}
		if _, ok := p.seen[t.ID]; ok {
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", toastIcon(t.Type), t.Message)
	}
	p.seen = next
}

func toastIcon(t client.ToastType) string {
	switch t {
	case client.ToastSuccess:
		return "✔"
	case client.ToastError:
		return "✖"
	case client.ToastWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

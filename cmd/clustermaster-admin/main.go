package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/clustermaster/clustermaster-ui/config"
	"github.com/clustermaster/clustermaster-ui/internal/bootstrap"
	"github.com/clustermaster/clustermaster-ui/internal/domain/model"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	// Out receives command output; nil means os.Stdout.
	Out io.Writer
	// In is read for confirmations; nil means os.Stdin.
	In io.Reader
}

func (c *commandContext) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *commandContext) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

const timeLayout = "2006-01-02 15:04:05"

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, Config: cfg}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		if errors.Is(runErr, flag.ErrHelp) {
			return
		}
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"clusters": {
			name:        "clusters",
			description: "List clusters and their status as reported by the backend",
			run:         runClusters,
		},
		"activity": {
			name:        "activity",
			description: "Show the most recent cluster operations",
			run:         runActivity,
		},
		"notifications": {
			name:        "notifications",
			description: "Show the notification history",
			run:         runNotifications,
		},
		"health": {
			name:        "health",
			description: "Query the backend health endpoint",
			run:         runHealth,
		},
		"session": {
			name:        "session",
			description: "Inspect the stored operator session in Redis",
			run:         runSession,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored operator session from Redis",
			run:         runLogout,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: clustermaster-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-24s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type listOptions struct {
	Limit   int
	RawJSON bool
}

func parseListFlags(name string, args []string, defaultLimit int) (listOptions, error) {
	opts := listOptions{Limit: defaultLimit}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if defaultLimit > 0 {
		fs.IntVar(&opts.Limit, "limit", defaultLimit, "Maximum number of entries to fetch")
	}
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the raw JSON response")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if defaultLimit > 0 && opts.Limit <= 0 {
		return opts, fmt.Errorf("-limit must be positive, got %d", opts.Limit)
	}
	return opts, nil
}

func runClusters(ctx *commandContext, args []string) error {
	opts, err := parseListFlags("clusters", args, 0)
	if err != nil {
		return err
	}
	api, err := newBackendClient(ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	clusters, err := api.ListClusters(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("list clusters: %w", err)
	}
	if opts.RawJSON {
		return writeJSON(ctx.out(), clusters)
	}
	return printClusters(ctx.out(), clusters)
}

func printClusters(w io.Writer, clusters []model.ClusterInfo) error {
	if len(clusters) == 0 {
		return writef(w, "No clusters found.\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "NAME\tSTATUS\tNODES\n"); err != nil {
		return err
	}
	for _, c := range clusters {
		if err := writef(tw, "%s\t%s\t%s\n", c.Name, c.Status, valueOrDash(c.Nodes)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runActivity(ctx *commandContext, args []string) error {
	opts, err := parseListFlags("activity", args, ctx.Config.Stores.ActivityLimit)
	if err != nil {
		return err
	}
	api, err := newBackendClient(ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	resp, err := api.RecentActivity(ctx.Ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("fetch activity: %w", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return fmt.Errorf("fetch activity: %s", msg)
	}
	if opts.RawJSON {
		return writeJSON(ctx.out(), resp.Logs)
	}
	return printActivity(ctx.out(), resp.Logs)
}

func printActivity(w io.Writer, logs []model.ActivityLog) error {
	if len(logs) == 0 {
		return writef(w, "No recent activity.\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "TIME\tOPERATION\tCLUSTER\tSTATUS\tDETAILS\n"); err != nil {
		return err
	}
	for _, l := range logs {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			formatTime(l.Timestamp), l.OperationType, valueOrDash(l.ClusterName), l.Status, valueOrDash(l.Details),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runNotifications(ctx *commandContext, args []string) error {
	opts, err := parseListFlags("notifications", args, ctx.Config.Backend.HistoryLimit)
	if err != nil {
		return err
	}
	api, err := newBackendClient(ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	hist, err := api.NotificationHistory(ctx.Ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("fetch notification history: %w", err)
	}
	if !hist.Success {
		return errors.New("fetch notification history: backend reported failure")
	}
	if opts.RawJSON {
		return writeJSON(ctx.out(), hist.Notifications)
	}
	return printNotifications(ctx.out(), hist.Notifications)
}

func printNotifications(w io.Writer, list []model.Notification) error {
	if len(list) == 0 {
		return writef(w, "No notifications.\n")
	}
	unread := 0
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "TIME\tSEVERITY\tCLUSTER\tREAD\tTITLE\n"); err != nil {
		return err
	}
	for _, n := range list {
		if !n.Read {
			unread++
		}
		if err := writef(tw, "%s\t%s\t%s\t%t\t%s\n",
			formatTime(n.Timestamp), n.Severity, valueOrDash(n.Cluster()), n.Read, n.Title,
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d notification(s), %d unread\n", len(list), unread)
}

func runHealth(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	component := fs.String("component", "", "Fetch diagnostics for a component (docker or kind) instead of health")
	if err := fs.Parse(args); err != nil {
		return err
	}
	api, err := newBackendClient(ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	return printHealth(ctx, api, *component)
}

func printHealth(ctx *commandContext, api ports.HealthAPI, component string) error {
	var (
		body map[string]any
		err  error
	)
	if component != "" {
		body, err = api.Debug(ctx.Ctx, component)
	} else {
		body, err = api.Health(ctx.Ctx)
	}
	if err != nil {
		return fmt.Errorf("query backend: %w", err)
	}
	return writeJSON(ctx.out(), body)
}

func runSession(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	rawJSON := fs.Bool("json", false, "Print the session as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessions, closeFn, err := connectSessionStore(ctx.Ctx, ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	defer closeWithLog(ctx.Logger, closeFn)
	return printSession(ctx, sessions, *rawJSON)
}

func printSession(ctx *commandContext, sessions ports.SessionStore, rawJSON bool) error {
	sess, err := sessions.Current(ctx.Ctx)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return writef(ctx.out(), "No active session.\n")
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if rawJSON {
		return writeJSON(ctx.out(), sess)
	}
	tw := tabwriter.NewWriter(ctx.out(), 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", sess.ID},
		{"User", sess.UserID},
		{"Email", valueOrDash(sess.Email)},
		{"Name", valueOrDash(sess.Name)},
		{"Created", formatTime(sess.CreatedAt)},
		{"Expires", formatTime(sess.ExpiresAt)},
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type logoutOptions struct {
	Yes bool
}

func runLogout(ctx *commandContext, args []string) error {
	var opts logoutOptions
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessions, closeFn, err := connectSessionStore(ctx.Ctx, ctx.Logger, &ctx.Config)
	if err != nil {
		return err
	}
	defer closeWithLog(ctx.Logger, closeFn)
	return clearSession(ctx, sessions, opts)
}

func clearSession(ctx *commandContext, sessions ports.SessionStore, opts logoutOptions) error {
	sess, err := sessions.Current(ctx.Ctx)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return writef(ctx.out(), "No active session.\n")
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !opts.Yes {
		ok, confirmErr := confirm(ctx.in(), ctx.out(), fmt.Sprintf("Sign out %s?", sess.UserID))
		if confirmErr != nil {
			return confirmErr
		}
		if !ok {
			return writef(ctx.out(), "Aborted.\n")
		}
	}
	if err := sessions.Clear(ctx.Ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	ctx.Logger.InfoContext(ctx.Ctx, "session cleared", "user_id", sess.UserID)
	return writef(ctx.out(), "Session for %s cleared.\n", sess.UserID)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

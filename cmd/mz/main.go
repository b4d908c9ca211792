package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mzstay/internal/app"
	"mzstay/internal/camera"
	"mzstay/internal/config"
	"mzstay/internal/contacts"
	"mzstay/internal/domain"
	"mzstay/internal/profile"
	"mzstay/internal/server"
	"mzstay/internal/storage"
	"mzstay/internal/store"
	"mzstay/internal/validate"
)

var rootCmd = &cobra.Command{
	Use:   "mz",
	Short: "MZStay staff CLI",
	Long: `MZStay is the staff-side toolkit for short-term rental housekeeping.
- Tasks: one cleaning job per property per day. Duplicate rows for the same
  property and date are merged into a single task; take the key photo first,
  then clean, then complete with supplies and a note.
- Notices: company announcements with unread tracking, pull-down refresh and
  load-more of older history.
- Repairs: file maintenance tickets against a property, graded by urgency.
- Auth: offline demo sign-in out of the box; point api.base_url at a backend
  for real accounts.
All state lives in the .mzstay workspace database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := storage.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("MZSTAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(noticeCmd())
	rootCmd.AddCommand(repairCmd())
	rootCmd.AddCommand(contactsCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(resetCmd())
}

// --- auth ---

func authCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and out",
		Long:  "Credentials persist in the workspace, so every other command picks up the signed-in identity. With no backend configured the demo account from mzstay.yml is the way in.",
	}
	auth.AddCommand(authLoginCmd())
	auth.AddCommand(authLogoutCmd())
	auth.AddCommand(authWhoamiCmd())
	auth.AddCommand(authForgotCmd())
	return auth
}

func authLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, p, errs := validate.LoginForm(username, password)
			if len(errs) > 0 {
				for field, msg := range errs {
					fmt.Printf("%s: %s\n", field, msg)
				}
				return fmt.Errorf("invalid login form")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.SignIn(ctx, u, p); err != nil {
					return err
				}
				snap := a.Session.Snapshot()
				return printJSONOrTable(map[string]any{
					"status":   snap.Status,
					"username": snap.User.Username,
					"role":     snap.User.Role,
				})
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.SignOut(ctx); err != nil {
					return err
				}
				fmt.Println("signed out")
				return nil
			})
		},
	}
	return cmd
}

func authWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.Bootstrap(ctx); err != nil {
					return err
				}
				snap := a.Session.Snapshot()
				out := map[string]any{"status": snap.Status}
				if snap.User != nil {
					out["username"] = snap.User.Username
					out["role"] = snap.User.Role
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func authForgotCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, errs := validate.Email(email)
			if len(errs) > 0 {
				return fmt.Errorf("email format invalid")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.RequestPasswordReset(ctx, e); err != nil {
					return err
				}
				fmt.Println("reset requested; check the inbox for", e)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// --- task ---

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage cleaning tasks",
		Long:  "Tasks flow pending_key_photo -> cleaning -> completed. Attach the key handover photo to start cleaning; complete records supplies, a note and who finished.",
	}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskPhotoCmd())
	task.AddCommand(taskCompleteCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var status, date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Tasks.Init(ctx); err != nil {
					return err
				}
				items := a.Tasks.Snapshot().Items
				filtered := items[:0:0]
				for _, t := range items {
					if status != "" && string(t.Status) != status {
						continue
					}
					if date != "" && t.Date != date {
						continue
					}
					filtered = append(filtered, t)
				}
				if viper.GetBool("json") {
					return printJSON(filtered)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Date", "Property", "Region", "Status", "Checkout", "Next check-in"})
				for _, t := range filtered {
					tw.AppendRow(table.Row{t.ID, t.Date, t.Title, t.Region, t.Status, t.CheckoutTime, t.NextCheckinTime})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&date, "date", "", "date filter (YYYY-MM-DD)")
	return cmd
}

func taskShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Tasks.Init(ctx); err != nil {
					return err
				}
				for _, t := range a.Tasks.Snapshot().Items {
					if t.ID == args[0] {
						return printJSONOrTable(t)
					}
				}
				return fmt.Errorf("task %s not found", args[0])
			})
		},
	}
	return cmd
}

func taskPhotoCmd() *cobra.Command {
	var file, uri string
	cmd := &cobra.Command{
		Use:   "photo <id>",
		Short: "Attach the key handover photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && uri == "" {
				return fmt.Errorf("--file or --uri required")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Tasks.Init(ctx); err != nil {
					return err
				}
				target := uri
				if file != "" {
					picker := camera.FilePicker{
						SourcePath: file,
						Dir:        filepath.Join(a.Workspace, ".mzstay", "photos"),
					}
					picked, err := picker.Pick(ctx, camera.SourceLibrary)
					if err != nil {
						return err
					}
					target = picked
				}
				if err := a.Tasks.SetKeyPhoto(ctx, args[0], target); err != nil {
					return err
				}
				fmt.Println("key photo attached:", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "photo file to import into the workspace")
	cmd.Flags().StringVar(&uri, "uri", "", "photo URI to record as-is")
	return cmd
}

func taskCompleteCmd() *cobra.Command {
	var note string
	var supplies []string
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validate.CompletionNote(note) {
				return fmt.Errorf("note exceeds %d characters", validate.CompletionNoteMax)
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.Bootstrap(ctx); err != nil {
					return err
				}
				by := a.Config.LocalLogin.Username
				if u := a.Session.Snapshot().User; u != nil {
					by = u.Username
				}
				if err := a.Tasks.Init(ctx); err != nil {
					return err
				}
				err := a.Tasks.Complete(ctx, store.CompleteParams{
					TaskID:      args[0],
					Supplies:    supplies,
					Note:        note,
					CompletedAt: time.Now().UTC().Format(time.RFC3339),
					CompletedBy: by,
				})
				if err != nil {
					return err
				}
				fmt.Println("task completed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "completion note")
	cmd.Flags().StringArrayVar(&supplies, "supply", []string{}, "consumed supply (repeatable)")
	return cmd
}

// --- notice ---

func noticeCmd() *cobra.Command {
	notice := &cobra.Command{
		Use:   "notice",
		Short: "Company notices",
		Long:  "Notices track what HQ pushed out. New ones arrive unread; read receipts persist in the workspace.",
	}
	notice.AddCommand(noticeListCmd())
	notice.AddCommand(noticeReadCmd())
	notice.AddCommand(noticeRefreshCmd())
	notice.AddCommand(noticeMoreCmd())
	return notice
}

func noticeListCmd() *cobra.Command {
	var unreadOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Notices.Init(ctx); err != nil {
					return err
				}
				snap := a.Notices.Snapshot()
				if viper.GetBool("json") {
					return printJSON(snap)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"", "ID", "Type", "Title", "Created"})
				for _, n := range snap.Items {
					if unreadOnly && !snap.UnreadIDs[n.ID] {
						continue
					}
					marker := ""
					if snap.UnreadIDs[n.ID] {
						marker = "*"
					}
					tw.AppendRow(table.Row{marker, n.ID, n.Type, n.Title, n.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notices")
	return cmd
}

func noticeReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Show a notice and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Notices.Init(ctx); err != nil {
					return err
				}
				var found *domain.Notice
				for _, n := range a.Notices.Snapshot().Items {
					if n.ID == args[0] {
						found = &n
						break
					}
				}
				if found == nil {
					return fmt.Errorf("notice %s not found", args[0])
				}
				if err := a.Notices.MarkRead(ctx, args[0]); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(found)
				}
				fmt.Printf("%s (%s)\n%s\n\n%s\n", found.Title, found.CreatedAt, found.Summary, found.Content)
				return nil
			})
		},
	}
	return cmd
}

func noticeRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Pull for new notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				before := len(a.Notices.Snapshot().Items)
				if err := a.Notices.Refresh(ctx); err != nil {
					return err
				}
				after := len(a.Notices.Snapshot().Items)
				fmt.Printf("refreshed: %d new\n", after-before)
				return nil
			})
		},
	}
	return cmd
}

func noticeMoreCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "more",
		Short: "Load older notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Notices.LoadMore(ctx, count); err != nil {
					return err
				}
				fmt.Printf("loaded, total %d notices\n", len(a.Notices.Snapshot().Items))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "how many to load")
	return cmd
}

// --- repair ---

func repairCmd() *cobra.Command {
	repair := &cobra.Command{
		Use:   "repair",
		Short: "Maintenance tickets",
	}
	repair.AddCommand(repairListCmd())
	repair.AddCommand(repairCreateCmd())
	return repair
}

func repairListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repair tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Repairs.Init(ctx); err != nil {
					return err
				}
				items := a.Repairs.Snapshot().Items
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Property", "Type", "Urgency", "Created", "By"})
				for _, r := range items {
					tw.AppendRow(table.Row{r.ID, r.PropertyTitle, r.Type, r.Urgency, r.CreatedAt, r.CreatedBy})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func repairCreateCmd() *cobra.Command {
	var p store.CreateTicketParams
	var urgency string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a repair ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.PropertyTitle == "" || p.Description == "" {
				return fmt.Errorf("--property and --description required")
			}
			switch domain.RepairUrgency(urgency) {
			case domain.RepairLow, domain.RepairMedium, domain.RepairHigh:
				p.Urgency = domain.RepairUrgency(urgency)
			default:
				return fmt.Errorf("urgency must be low, medium or high")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.Bootstrap(ctx); err != nil {
					return err
				}
				if u := a.Session.Snapshot().User; u != nil {
					p.CreatedBy = u.Username
				}
				if err := a.Repairs.Init(ctx); err != nil {
					return err
				}
				ticket, err := a.Repairs.CreateTicket(ctx, p)
				if err != nil {
					return err
				}
				return printJSONOrTable(ticket)
			})
		},
	}
	cmd.Flags().StringVar(&p.TaskID, "task", "", "task id the issue was found on")
	cmd.Flags().StringVar(&p.PropertyTitle, "property", "", "property title")
	cmd.Flags().StringVar(&p.Address, "address", "", "property address")
	cmd.Flags().StringVar(&p.Type, "type", "other", "issue type (plumbing, electrical, appliance, furniture, other)")
	cmd.Flags().StringVar(&p.Description, "description", "", "what is broken")
	cmd.Flags().StringVar(&urgency, "urgency", "medium", "low, medium or high")
	cmd.Flags().StringVar(&p.Contact, "contact", "", "callback contact")
	return cmd
}

// --- contacts ---

func contactsCmd() *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Internal contact directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := contacts.All()
			if department != "" {
				items = contacts.ByDepartment(department)
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Mobile", "Department", "Title"})
			for _, c := range items {
				tw.AppendRow(table.Row{c.ID, c.Name, c.MobileAU, c.Department, c.Title})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "department filter")
	return cmd
}

// --- profile ---

func profileCmd() *cobra.Command {
	prof := &cobra.Command{
		Use:   "profile",
		Short: "Staff profile card",
	}
	prof.AddCommand(profileShowCmd())
	prof.AddCommand(profileSetCmd())
	return prof
}

func profileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, ok, err := profile.Get(ctx, a.KV)
				if err != nil {
					return err
				}
				if !ok {
					if err := a.Session.Bootstrap(ctx); err != nil {
						return err
					}
					p = profile.DefaultFromUser(a.Session.Snapshot().User)
				}
				return printJSONOrTable(p)
			})
		},
	}
	return cmd
}

func profileSetCmd() *cobra.Command {
	var p domain.Profile
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				current, ok, err := profile.Get(ctx, a.KV)
				if err != nil {
					return err
				}
				if !ok {
					if err := a.Session.Bootstrap(ctx); err != nil {
						return err
					}
					current = profile.DefaultFromUser(a.Session.Snapshot().User)
				}
				if cmd.Flags().Changed("name") {
					current.Name = p.Name
				}
				if cmd.Flags().Changed("mobile") {
					current.MobileAU = validate.NormalizeAUMobile(p.MobileAU)
				}
				if cmd.Flags().Changed("department") {
					current.Department = p.Department
				}
				if cmd.Flags().Changed("title") {
					current.Title = p.Title
				}
				if cmd.Flags().Changed("avatar") {
					current.AvatarURI = p.AvatarURI
				}
				if err := profile.Set(ctx, a.KV, current); err != nil {
					return err
				}
				return printJSONOrTable(current)
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "display name")
	cmd.Flags().StringVar(&p.MobileAU, "mobile", "", "AU mobile number")
	cmd.Flags().StringVar(&p.Department, "department", "", "department")
	cmd.Flags().StringVar(&p.Title, "title", "", "job title")
	cmd.Flags().StringVar(&p.AvatarURI, "avatar", "", "avatar URI")
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Workspace configuration",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default mzstay.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Server.JWTSecret != "" {
				shown.Server.JWTSecret = "(set)"
			}
			if shown.LocalLogin.Password != "" {
				shown.LocalLogin.Password = "(set)"
			}
			return printJSONOrTable(shown)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate mzstay.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

// --- serve ---

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the staff HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if secret := os.Getenv("MZSTAY_JWT_SECRET"); secret != "" {
					a.Config.Server.JWTSecret = secret
				}
				if a.Config.Server.JWTSecret == "" {
					return fmt.Errorf("server.jwt_secret (or MZSTAY_JWT_SECRET) is required for bearer auth")
				}
				if addr == "" {
					addr = a.Config.Server.Addr
				}
				handler, err := server.New(server.Config{
					Tasks:    a.Tasks,
					Notices:  a.Notices,
					Repairs:  a.Repairs,
					KV:       a.KV,
					App:      a.Config,
					BasePath: basePath,
					Log:      a.Log,
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving MZStay staff API on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}

// --- reset ---

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all app data in this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("pass --yes to confirm wiping %s", storage.Path(viper.GetString("workspace")))
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Session.SignOut(ctx); err != nil {
					return err
				}
				if err := storage.ClearAppData(ctx, a.KV); err != nil {
					return err
				}
				fmt.Println("workspace data cleared; seed data returns on next use")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

// --- helpers ---

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	a, err := app.Open(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

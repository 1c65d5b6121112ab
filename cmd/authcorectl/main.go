// authcorectl is the operator CLI: schema migrations and direct user
// administration against the configured store.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/domain"
	storepg "github.com/dropDatabas3/authcore/internal/store/pg"
	"github.com/dropDatabas3/authcore/internal/users"
	migrations "github.com/dropDatabas3/authcore/migrations/postgres"
)

const opTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "authcorectl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "authcorectl",
		Short:         "Operator CLI for authcore",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newUserCmd(&configPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.DSN == "" {
		return nil, fmt.Errorf("storage DSN is required (config storage.dsn or STORAGE_DSN)")
	}
	return cfg, nil
}

// ─── migrate ───

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			if action != "up" && action != "down" {
				return fmt.Errorf("unknown action %q", action)
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			files, err := migrationFiles(action)
			if err != nil {
				return err
			}
			for _, name := range files {
				sql, err := fs.ReadFile(migrations.FS, name)
				if err != nil {
					return err
				}
				if _, err := pool.Exec(ctx, string(sql)); err != nil {
					return fmt.Errorf("apply %s: %w", name, err)
				}
				fmt.Println("applied", name)
			}
			return nil
		},
	}
	return cmd
}

// migrationFiles returns the *_up.sql files ascending, or the *_down.sql
// files descending.
func migrationFiles(action string) ([]string, error) {
	entries, err := fs.Glob(migrations.FS, "*_"+action+".sql")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no *_%s.sql migrations embedded", action)
	}
	sort.Strings(entries)
	if action == "down" {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

// ─── user ───

func newUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts directly in the store",
	}
	cmd.AddCommand(newUserAddCmd(configPath))
	cmd.AddCommand(newUserListCmd(configPath))
	cmd.AddCommand(newUserRmCmd(configPath))
	return cmd
}

func openDirectory(ctx context.Context, configPath string) (*users.Directory, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	st, err := storepg.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return users.NewDirectory(st), func() { _ = st.Close() }, nil
}

func newUserAddCmd(configPath *string) *cobra.Command {
	var (
		email    string
		password string
		name     string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			dir, cleanup, err := openDirectory(ctx, *configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			roles := []domain.Role{domain.RoleUser}
			if admin {
				roles = append(roles, domain.RoleAdmin)
			}

			u, err := dir.Create(ctx, users.CreateInput{
				Email:    email,
				Password: password,
				Name:     name,
				Roles:    roles,
			})
			if err != nil {
				return err
			}
			fmt.Println("created", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the ADMIN role")
	return cmd
}

func newUserListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			dir, cleanup, err := openDirectory(ctx, *configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			all, err := dir.List(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLES\tCREATED")
			for _, u := range all {
				roles := make([]string, 0, len(u.Roles))
				for _, r := range u.Roles {
					roles = append(roles, string(r))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Email, u.Name, strings.Join(roles, ","),
					u.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newUserRmCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id-or-email>",
		Short: "Delete a user account and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			dir, cleanup, err := openDirectory(ctx, *configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := dir.Find(ctx, args[0], true)
			if err != nil {
				return err
			}
			if err := dir.Delete(ctx, u.ID); err != nil {
				return err
			}
			fmt.Println("deleted", u.ID, u.Email)
			return nil
		},
	}
}

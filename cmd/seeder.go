package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/project"
	"github.com/frahmantamala/expense-bot/pkg/logger"
)

var seedDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed default categories and the owner account",
	Long:  `Seed the default expense categories, the bootstrap owner from security.bootstrap_owner_id and, with --demo, a sample project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		deps, err := initializeDependencies(ctx, cfg, logger.LoggerWrapper())
		if err != nil {
			return err
		}
		defer deps.Close()

		added, err := deps.Categories.EnsureDefaults(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		fmt.Println("Seeded categories:", added)

		if err := seedOwner(ctx, deps); err != nil {
			return err
		}
		if seedDemo {
			return seedProject(ctx, deps)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also create a demo project")
}

func seedOwner(ctx context.Context, deps *Dependencies) error {
	sec := deps.Config.Security
	if sec.BootstrapOwnerID == 0 {
		fmt.Println("security.bootstrap_owner_id not set; skipping owner")
		return nil
	}

	first, last, _ := strings.Cut(sec.BootstrapOwnerName, " ")
	if first == "" {
		first = "Owner"
	}
	_, err := deps.Employees.Add(ctx, employee.AddEmployeeDTO{
		ID:        sec.BootstrapOwnerID,
		FirstName: first,
		LastName:  last,
		Role:      employee.RoleOwner,
	})
	if internal.HasCode(err, internal.ErrCodeEmployeeExists) {
		fmt.Println("owner already exists:", sec.BootstrapOwnerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed owner: %w", err)
	}
	fmt.Println("Seeded owner:", sec.BootstrapOwnerID)
	return nil
}

func seedProject(ctx context.Context, deps *Dependencies) error {
	existing, err := deps.Projects.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("projects already present; skipping demo project")
		return nil
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 3, 0)
	p, err := deps.Projects.Add(ctx, project.AddProjectDTO{
		Name:      "Demo site",
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo project: %w", err)
	}
	fmt.Println("Seeded demo project:", p.ID)
	return nil
}
